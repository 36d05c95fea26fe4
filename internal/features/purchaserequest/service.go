package purchaserequest

import (
	"context"
	"errors"
	"time"

	"go-procure/internal/common/models"
	"go-procure/internal/features/businessunit"
	"go-procure/internal/features/notification"
	"go-procure/internal/features/workflow"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var ErrPurchaseRequestNotFound = errors.New("purchase request not found")

type PurchaseRequestService interface {
	Create(ctx context.Context, input CreatePurchaseRequestInput, requestorID string) (*PurchaseRequest, error)
	Get(ctx context.Context, id string) (*PurchaseRequest, error)
	List(ctx context.Context, businessUnitCode string, status models.DocumentStatus) ([]PurchaseRequest, error)
	// Navigate moves the document forward for an action; the workflow engine
	// decides the target, this service persists and notifies.
	Navigate(ctx context.Context, id string, input NavigateInput, actorUserID string) (*NavigateResult, error)
	// ReturnToStage sends the document back to a direct predecessor stage.
	ReturnToStage(ctx context.Context, id string, input ReturnInput, actorUserID string) (*NavigateResult, error)
	// PreviousStages lists where the document can currently be sent back to.
	PreviousStages(ctx context.Context, id string) ([]string, error)
}

type PurchaseRequestServiceImpl struct {
	Repo          PurchaseRequestRepository
	Workflows     workflow.WorkflowService
	BusinessUnits businessunit.BusinessUnitService
	Notifications notification.NotificationService
	Logger        *zap.Logger
}

func NewPurchaseRequestService(
	repo PurchaseRequestRepository,
	workflows workflow.WorkflowService,
	businessUnits businessunit.BusinessUnitService,
	notifications notification.NotificationService,
	logger *zap.Logger,
) PurchaseRequestService {
	return &PurchaseRequestServiceImpl{
		Repo:          repo,
		Workflows:     workflows,
		BusinessUnits: businessUnits,
		Notifications: notifications,
		Logger:        logger,
	}
}

// Create binds the document to the workflow its business unit assigns for
// purchase requests and parks it at the first stage.
func (s *PurchaseRequestServiceImpl) Create(ctx context.Context, input CreatePurchaseRequestInput, requestorID string) (*PurchaseRequest, error) {
	workflowID, err := s.BusinessUnits.AssignedWorkflowID(ctx, input.BusinessUnitCode, workflow.DocumentTypePurchaseRequest)
	if err != nil {
		return nil, err
	}
	def, err := s.Workflows.GetDefinition(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	if def == nil {
		return nil, workflow.ErrWorkflowNotFound
	}

	refNo, err := s.BusinessUnits.NextReference(ctx, input.BusinessUnitCode, workflow.DocumentTypePurchaseRequest)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	pr := PurchaseRequest{
		ID:               primitive.NewObjectID(),
		RefNo:            refNo,
		BusinessUnitCode: input.BusinessUnitCode,
		RequestorID:      requestorID,
		WorkflowID:       workflowID,
		CurrentStage:     def.Stages[0].Name,
		Status:           models.DocumentStatusDraft,
		Description:      input.Description,
		Data:             input.Data,
		History:          []workflow.HistoryEntry{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if pr.Data == nil {
		pr.Data = map[string]interface{}{}
	}

	if err := s.Repo.Create(ctx, pr); err != nil {
		return nil, err
	}

	s.Logger.Info("purchase request created",
		zap.String("ref_no", pr.RefNo),
		zap.String("workflow_id", workflowID),
		zap.String("stage", pr.CurrentStage),
	)
	return &pr, nil
}

func (s *PurchaseRequestServiceImpl) Get(ctx context.Context, id string) (*PurchaseRequest, error) {
	pr, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if pr == nil {
		return nil, ErrPurchaseRequestNotFound
	}
	return pr, nil
}

func (s *PurchaseRequestServiceImpl) List(ctx context.Context, businessUnitCode string, status models.DocumentStatus) ([]PurchaseRequest, error) {
	return s.Repo.List(ctx, businessUnitCode, status)
}

func (s *PurchaseRequestServiceImpl) Navigate(ctx context.Context, id string, input NavigateInput, actorUserID string) (*NavigateResult, error) {
	pr, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	nav, err := s.Workflows.NavigatorFor(ctx, pr.WorkflowID, pr.CurrentStage)
	if err != nil {
		return nil, err
	}

	payload := pr.Data
	if input.Data != nil {
		payload = input.Data
		if err := s.Repo.UpdateData(ctx, id, input.Data); err != nil {
			return nil, err
		}
	}

	res, err := nav.NavigateForward(input.Action, payload, actorUserID)
	if err != nil {
		return nil, err
	}

	status := s.statusAfterMove(nav, res.NextStage)
	if err := s.Repo.UpdatePosition(ctx, id, res.NextStage, status, res.HistoryEntry); err != nil {
		return nil, err
	}

	fromStage := pr.CurrentStage
	pr.CurrentStage = res.NextStage
	pr.Status = status
	pr.Data = payload
	pr.History = append(pr.History, res.HistoryEntry)
	pr.UpdatedAt = time.Now()

	if err := s.Notifications.NotifyTransition(ctx, notification.Transition{
		DocumentType: workflow.DocumentTypePurchaseRequest,
		ReferenceNo:  pr.RefNo,
		FromStage:    fromStage,
		ToStage:      res.NextStage,
		Action:       input.Action,
		Info:         res.NavigationInfo,
		RequestorID:  pr.RequestorID,
		ActorID:      actorUserID,
	}); err != nil {
		// The move is already durable; a notification failure must not undo it.
		s.Logger.Warn("transition notification failed",
			zap.String("ref_no", pr.RefNo),
			zap.Error(err),
		)
	}

	return &NavigateResult{Document: pr, Info: res.NavigationInfo}, nil
}

func (s *PurchaseRequestServiceImpl) ReturnToStage(ctx context.Context, id string, input ReturnInput, actorUserID string) (*NavigateResult, error) {
	pr, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	nav, err := s.Workflows.NavigatorFor(ctx, pr.WorkflowID, pr.CurrentStage)
	if err != nil {
		return nil, err
	}

	res, err := nav.NavigateBackToStage(input.TargetStage, input.Action, actorUserID)
	if err != nil {
		return nil, err
	}

	if err := s.Repo.UpdatePosition(ctx, id, res.TargetStage, models.DocumentStatusInProgress, res.HistoryEntry); err != nil {
		return nil, err
	}

	fromStage := pr.CurrentStage
	pr.CurrentStage = res.TargetStage
	pr.Status = models.DocumentStatusInProgress
	pr.History = append(pr.History, res.HistoryEntry)
	pr.UpdatedAt = time.Now()

	if err := s.Notifications.NotifyTransition(ctx, notification.Transition{
		DocumentType: workflow.DocumentTypePurchaseRequest,
		ReferenceNo:  pr.RefNo,
		FromStage:    fromStage,
		ToStage:      res.TargetStage,
		Action:       res.HistoryEntry.Action,
		Info:         res.NavigationInfo,
		RequestorID:  pr.RequestorID,
		ActorID:      actorUserID,
	}); err != nil {
		s.Logger.Warn("sendback notification failed",
			zap.String("ref_no", pr.RefNo),
			zap.Error(err),
		)
	}

	return &NavigateResult{Document: pr, Info: res.NavigationInfo}, nil
}

func (s *PurchaseRequestServiceImpl) PreviousStages(ctx context.Context, id string) ([]string, error) {
	pr, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Workflows.PreviousStages(ctx, pr.WorkflowID, pr.CurrentStage)
}

// statusAfterMove folds the resolved stage into a document status: the
// Cancelled pseudo-stage means cancelled, a terminal stage means completed,
// everything else keeps the document in flight.
func (s *PurchaseRequestServiceImpl) statusAfterMove(nav *workflow.Navigator, nextStage string) models.DocumentStatus {
	if nextStage == workflow.StageCancelled {
		return models.DocumentStatusCancelled
	}
	if detail := nav.StageDetail(nextStage); detail != nil && detail.IsTerminal() {
		return models.DocumentStatusCompleted
	}
	return models.DocumentStatusInProgress
}
