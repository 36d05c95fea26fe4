package workflow

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrWorkflowNotFound = errors.New("workflow definition not found")

type WorkflowService interface {
	CreateDefinition(ctx context.Context, def WorkflowData) (*WorkflowData, error)
	UpdateDefinition(ctx context.Context, id string, def WorkflowData) error
	DeleteDefinition(ctx context.Context, id string) error
	GetDefinition(ctx context.Context, id string) (*WorkflowData, error)
	ListDefinitions(ctx context.Context) ([]WorkflowData, error)

	// NavigatorFor loads a definition and binds a navigator to the document's
	// current stage, reusing cached adjacency indices.
	NavigatorFor(ctx context.Context, workflowID string, currentStage string) (*Navigator, error)
	// ActiveDefinitionFor resolves the active definition governing a document type.
	ActiveDefinitionFor(ctx context.Context, docType DocumentType) (*WorkflowData, error)
	// StageNamesAcrossWorkflows aggregates the ordered stage names of many
	// definitions, deduplicated, for cross-workflow views.
	StageNamesAcrossWorkflows(ctx context.Context, ids []string) ([]string, error)
	// PreviousStages answers "where can this document be sent back to".
	PreviousStages(ctx context.Context, workflowID string, currentStage string) ([]string, error)
}

type WorkflowServiceImpl struct {
	Repo  WorkflowRepository
	Cache *IndexCache
}

func NewWorkflowService(repo WorkflowRepository) WorkflowService {
	return &WorkflowServiceImpl{
		Repo:  repo,
		Cache: NewIndexCache(),
	}
}

// prepareDefinition fills generated fields and runs full structural
// validation before anything touches storage. Invalid definitions are
// rejected here, never at navigation time.
func (s *WorkflowServiceImpl) prepareDefinition(def *WorkflowData) error {
	for i := range def.RoutingRules {
		if def.RoutingRules[i].ID == "" {
			def.RoutingRules[i].ID = uuid.NewString()
		}
	}
	if len(def.Stages) == 0 {
		return &DefinitionError{Kind: DefinitionUnknownStage, Stage: ""}
	}
	_, err := buildIndex(def)
	return err
}

func (s *WorkflowServiceImpl) CreateDefinition(ctx context.Context, def WorkflowData) (*WorkflowData, error) {
	if err := s.prepareDefinition(&def); err != nil {
		return nil, err
	}
	if def.ID.IsZero() {
		def.ID = primitive.NewObjectID()
	}
	def.CreatedAt = time.Now()
	def.UpdatedAt = time.Now()

	if err := s.Repo.Create(ctx, def); err != nil {
		return nil, err
	}
	return &def, nil
}

func (s *WorkflowServiceImpl) UpdateDefinition(ctx context.Context, id string, def WorkflowData) error {
	if err := s.prepareDefinition(&def); err != nil {
		return err
	}
	def.UpdatedAt = time.Now()
	return s.Repo.Update(ctx, id, def)
}

func (s *WorkflowServiceImpl) DeleteDefinition(ctx context.Context, id string) error {
	return s.Repo.Delete(ctx, id)
}

func (s *WorkflowServiceImpl) GetDefinition(ctx context.Context, id string) (*WorkflowData, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s *WorkflowServiceImpl) ListDefinitions(ctx context.Context) ([]WorkflowData, error) {
	return s.Repo.List(ctx)
}

func (s *WorkflowServiceImpl) NavigatorFor(ctx context.Context, workflowID string, currentStage string) (*Navigator, error) {
	def, err := s.Repo.GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	if def == nil {
		return nil, ErrWorkflowNotFound
	}
	return s.Cache.NavigatorFor(def, currentStage)
}

func (s *WorkflowServiceImpl) ActiveDefinitionFor(ctx context.Context, docType DocumentType) (*WorkflowData, error) {
	defs, err := s.Repo.ListByDocumentType(ctx, docType)
	if err != nil {
		return nil, err
	}
	if len(defs) == 0 {
		return nil, ErrWorkflowNotFound
	}
	return &defs[0], nil
}

func (s *WorkflowServiceImpl) StageNamesAcrossWorkflows(ctx context.Context, ids []string) ([]string, error) {
	defs, err := s.Repo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var names []string
	for _, def := range defs {
		for _, st := range def.Stages {
			if !seen[st.Name] {
				seen[st.Name] = true
				names = append(names, st.Name)
			}
		}
	}
	return names, nil
}

func (s *WorkflowServiceImpl) PreviousStages(ctx context.Context, workflowID string, currentStage string) ([]string, error) {
	nav, err := s.NavigatorFor(ctx, workflowID, currentStage)
	if err != nil {
		return nil, err
	}
	return nav.PreviousStageNamesByStructure(currentStage), nil
}
