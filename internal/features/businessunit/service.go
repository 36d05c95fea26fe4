package businessunit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-procure/internal/features/workflow"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrBusinessUnitNotFound = errors.New("business unit not found")

type BusinessUnitService interface {
	Create(ctx context.Context, unit BusinessUnit) (*BusinessUnit, error)
	GetByCode(ctx context.Context, code string) (*BusinessUnit, error)
	List(ctx context.Context) ([]BusinessUnit, error)
	Update(ctx context.Context, id string, unit BusinessUnit) error
	Delete(ctx context.Context, id string) error

	// AssignedWorkflowID resolves which workflow definition governs new
	// documents of a type within a unit.
	AssignedWorkflowID(ctx context.Context, code string, docType workflow.DocumentType) (string, error)
	// NextReference builds a document reference number from the unit's
	// prefix for the type, e.g. "PR-GH-20260828-3f2a".
	NextReference(ctx context.Context, code string, docType workflow.DocumentType) (string, error)
}

type BusinessUnitServiceImpl struct {
	Repo BusinessUnitRepository
}

func NewBusinessUnitService(repo BusinessUnitRepository) BusinessUnitService {
	return &BusinessUnitServiceImpl{Repo: repo}
}

func (s *BusinessUnitServiceImpl) Create(ctx context.Context, unit BusinessUnit) (*BusinessUnit, error) {
	if unit.Code == "" {
		return nil, errors.New("business unit code is required")
	}
	existing, err := s.Repo.GetByCode(ctx, unit.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("business unit %q already exists", unit.Code)
	}

	if unit.ID.IsZero() {
		unit.ID = primitive.NewObjectID()
	}
	unit.CreatedAt = time.Now()
	unit.UpdatedAt = time.Now()

	if err := s.Repo.Create(ctx, unit); err != nil {
		return nil, err
	}
	return &unit, nil
}

func (s *BusinessUnitServiceImpl) GetByCode(ctx context.Context, code string) (*BusinessUnit, error) {
	return s.Repo.GetByCode(ctx, code)
}

func (s *BusinessUnitServiceImpl) List(ctx context.Context) ([]BusinessUnit, error) {
	return s.Repo.List(ctx)
}

func (s *BusinessUnitServiceImpl) Update(ctx context.Context, id string, unit BusinessUnit) error {
	return s.Repo.Update(ctx, id, unit)
}

func (s *BusinessUnitServiceImpl) Delete(ctx context.Context, id string) error {
	return s.Repo.Delete(ctx, id)
}

func (s *BusinessUnitServiceImpl) AssignedWorkflowID(ctx context.Context, code string, docType workflow.DocumentType) (string, error) {
	unit, err := s.Repo.GetByCode(ctx, code)
	if err != nil {
		return "", err
	}
	if unit == nil {
		return "", ErrBusinessUnitNotFound
	}
	workflowID, ok := unit.WorkflowAssignments[docType]
	if !ok || workflowID == "" {
		return "", fmt.Errorf("no workflow assigned for %s in business unit %q", docType, code)
	}
	return workflowID, nil
}

func (s *BusinessUnitServiceImpl) NextReference(ctx context.Context, code string, docType workflow.DocumentType) (string, error) {
	unit, err := s.Repo.GetByCode(ctx, code)
	if err != nil {
		return "", err
	}
	if unit == nil {
		return "", ErrBusinessUnitNotFound
	}

	prefix := unit.ReferencePrefixes[docType]
	if prefix == "" {
		prefix = strings.ToUpper(string(docType[0:2])) + "-" + unit.Code
	}
	suffix := uuid.NewString()[:4]
	return fmt.Sprintf("%s-%s-%s", prefix, time.Now().Format("20060102"), suffix), nil
}
