package goodreceivednote

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

var ErrGRNNotFound = errors.New("good received note not found")

type GRNService interface {
	Create(ctx context.Context, input CreateGRNInput, receiverID string) (*GoodReceivedNote, error)
	Get(ctx context.Context, id string) (*GoodReceivedNote, error)
	List(ctx context.Context, businessUnitCode string, status models.DocumentStatus) ([]GoodReceivedNote, error)
	Navigate(ctx context.Context, id string, input NavigateInput, actorUserID string) (*NavigateResult, error)
	ReturnToStage(ctx context.Context, id string, input ReturnInput, actorUserID string) (*NavigateResult, error)
}

type GRNServiceImpl struct {
	Repo          GRNRepository
	Workflows     workflow.WorkflowService
	BusinessUnits businessunit.BusinessUnitService
	Notifications notification.NotificationService
	Logger        *zap.Logger
}

func NewGRNService(
	repo GRNRepository,
	workflows workflow.WorkflowService,
	businessUnits businessunit.BusinessUnitService,
	notifications notification.NotificationService,
	logger *zap.Logger,
) GRNService {
	return &GRNServiceImpl{
		Repo:          repo,
		Workflows:     workflows,
		BusinessUnits: businessUnits,
		Notifications: notifications,
		Logger:        logger,
	}
}

func (s *GRNServiceImpl) Create(ctx context.Context, input CreateGRNInput, receiverID string) (*GoodReceivedNote, error) {
	workflowID, err := s.BusinessUnits.AssignedWorkflowID(ctx, input.BusinessUnitCode, workflow.DocumentTypeGoodReceivedNote)
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

	refNo, err := s.BusinessUnits.NextReference(ctx, input.BusinessUnitCode, workflow.DocumentTypeGoodReceivedNote)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	grn := GoodReceivedNote{
		ID:               primitive.NewObjectID(),
		RefNo:            refNo,
		BusinessUnitCode: input.BusinessUnitCode,
		ReceiverID:       receiverID,
		VendorName:       input.VendorName,
		PONumber:         input.PONumber,
		Items:            input.Items,
		WorkflowID:       workflowID,
		CurrentStage:     def.Stages[0].Name,
		Status:           models.DocumentStatusDraft,
		Data:             input.Data,
		History:          []workflow.HistoryEntry{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if grn.Data == nil {
		grn.Data = map[string]interface{}{}
	}
	// Routing conditions see the line total without clients computing it.
	grn.Data["total_value"] = grn.TotalValue()

	if err := s.Repo.Create(ctx, grn); err != nil {
		return nil, err
	}

	s.Logger.Info("good received note created",
		zap.String("ref_no", grn.RefNo),
		zap.String("vendor", grn.VendorName),
		zap.Float64("total_value", grn.TotalValue()),
	)
	return &grn, nil
}

func (s *GRNServiceImpl) Get(ctx context.Context, id string) (*GoodReceivedNote, error) {
	grn, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if grn == nil {
		return nil, ErrGRNNotFound
	}
	return grn, nil
}

func (s *GRNServiceImpl) List(ctx context.Context, businessUnitCode string, status models.DocumentStatus) ([]GoodReceivedNote, error) {
	return s.Repo.List(ctx, businessUnitCode, status)
}

func (s *GRNServiceImpl) Navigate(ctx context.Context, id string, input NavigateInput, actorUserID string) (*NavigateResult, error) {
	grn, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	nav, err := s.Workflows.NavigatorFor(ctx, grn.WorkflowID, grn.CurrentStage)
	if err != nil {
		return nil, err
	}

	res, err := nav.NavigateForward(input.Action, grn.Data, actorUserID)
	if err != nil {
		return nil, err
	}

	status := models.DocumentStatusInProgress
	if res.NextStage == workflow.StageCancelled {
		status = models.DocumentStatusCancelled
	} else if detail := nav.StageDetail(res.NextStage); detail != nil && detail.IsTerminal() {
		status = models.DocumentStatusCompleted
	}

	if err := s.Repo.UpdatePosition(ctx, id, res.NextStage, status, res.HistoryEntry); err != nil {
		return nil, err
	}

	fromStage := grn.CurrentStage
	grn.CurrentStage = res.NextStage
	grn.Status = status
	grn.History = append(grn.History, res.HistoryEntry)
	grn.UpdatedAt = time.Now()

	if err := s.Notifications.NotifyTransition(ctx, notification.Transition{
		DocumentType: workflow.DocumentTypeGoodReceivedNote,
		ReferenceNo:  grn.RefNo,
		FromStage:    fromStage,
		ToStage:      res.NextStage,
		Action:       input.Action,
		Info:         res.NavigationInfo,
		RequestorID:  grn.ReceiverID,
		ActorID:      actorUserID,
	}); err != nil {
		s.Logger.Warn("transition notification failed",
			zap.String("ref_no", grn.RefNo),
			zap.Error(err),
		)
	}

	return &NavigateResult{Document: grn, Info: res.NavigationInfo}, nil
}

func (s *GRNServiceImpl) ReturnToStage(ctx context.Context, id string, input ReturnInput, actorUserID string) (*NavigateResult, error) {
	grn, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	nav, err := s.Workflows.NavigatorFor(ctx, grn.WorkflowID, grn.CurrentStage)
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

	fromStage := grn.CurrentStage
	grn.CurrentStage = res.TargetStage
	grn.Status = models.DocumentStatusInProgress
	grn.History = append(grn.History, res.HistoryEntry)
	grn.UpdatedAt = time.Now()

	if err := s.Notifications.NotifyTransition(ctx, notification.Transition{
		DocumentType: workflow.DocumentTypeGoodReceivedNote,
		ReferenceNo:  grn.RefNo,
		FromStage:    fromStage,
		ToStage:      res.TargetStage,
		Action:       res.HistoryEntry.Action,
		Info:         res.NavigationInfo,
		RequestorID:  grn.ReceiverID,
		ActorID:      actorUserID,
	}); err != nil {
		s.Logger.Warn("sendback notification failed",
			zap.String("ref_no", grn.RefNo),
			zap.Error(err),
		)
	}

	return &NavigateResult{Document: grn, Info: res.NavigationInfo}, nil
}
