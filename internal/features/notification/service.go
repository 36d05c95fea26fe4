package notification

import (
	"context"
	"fmt"
	"time"

	"go-procure/internal/features/workflow"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Transition is the fact a document service hands over after the Navigator
// has decided a move; this service only fans it out.
type Transition struct {
	DocumentType workflow.DocumentType
	ReferenceNo  string
	FromStage    string
	ToStage      string
	Action       workflow.Action
	Info         workflow.NavigationInfo
	RequestorID  string
	ActorID      string
}

type NotificationService interface {
	NotifyTransition(ctx context.Context, t Transition) error
	NotifySLAWarning(ctx context.Context, docType workflow.DocumentType, refNo string, stage workflow.Stage, userIDs []string) error
	ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]Notification, error)
	MarkRead(ctx context.Context, id string, userID string) error
}

type NotificationServiceImpl struct {
	Repo   NotificationRepository
	Hub    *Hub
	Logger *zap.Logger
}

func NewNotificationService(repo NotificationRepository, hub *Hub, logger *zap.Logger) NotificationService {
	return &NotificationServiceImpl{
		Repo:   repo,
		Hub:    hub,
		Logger: logger,
	}
}

// NotifyTransition maps the resolved recipient flags onto concrete users:
// next_step fans out to the assignees of the resolved stage, requestor to the
// document creator, current_approve back to the actor.
func (s *NotificationServiceImpl) NotifyTransition(ctx context.Context, t Transition) error {
	targets := make(map[string]bool)
	if t.Info.Recipients.NextStep {
		for _, u := range t.Info.AssignedUsers {
			targets[u.UserID] = true
		}
	}
	if t.Info.Recipients.Requestor && t.RequestorID != "" {
		targets[t.RequestorID] = true
	}
	if t.Info.Recipients.CurrentApprove && t.ActorID != "" {
		targets[t.ActorID] = true
	}
	if len(targets) == 0 {
		return nil
	}

	kind := NotificationTypeTransition
	if t.Action == workflow.ActionSendBack {
		kind = NotificationTypeSendBack
	}

	now := time.Now()
	var batch []Notification
	for userID := range targets {
		batch = append(batch, Notification{
			ID:           primitive.NewObjectID(),
			UserID:       userID,
			Title:        fmt.Sprintf("%s %s", t.DocumentType, t.Action),
			Message:      fmt.Sprintf("%s moved from %q to %q", t.ReferenceNo, t.FromStage, t.ToStage),
			Type:         kind,
			DocumentType: string(t.DocumentType),
			ReferenceNo:  t.ReferenceNo,
			CreatedAt:    now,
		})
	}

	if err := s.Repo.CreateMany(ctx, batch); err != nil {
		return err
	}

	for _, n := range batch {
		s.Hub.Push(n)
	}

	s.Logger.Info("notified transition",
		zap.String("reference_no", t.ReferenceNo),
		zap.String("to_stage", t.ToStage),
		zap.Int("recipients", len(batch)),
	)
	return nil
}

func (s *NotificationServiceImpl) NotifySLAWarning(ctx context.Context, docType workflow.DocumentType, refNo string, stage workflow.Stage, userIDs []string) error {
	now := time.Now()
	var batch []Notification
	for _, userID := range userIDs {
		batch = append(batch, Notification{
			ID:           primitive.NewObjectID(),
			UserID:       userID,
			Title:        "SLA warning",
			Message:      fmt.Sprintf("%s has exceeded the %g %s SLA at stage %q", refNo, stage.SLA, stage.SLAUnit, stage.Name),
			Type:         NotificationTypeSLAWarning,
			DocumentType: string(docType),
			ReferenceNo:  refNo,
			CreatedAt:    now,
		})
	}

	if err := s.Repo.CreateMany(ctx, batch); err != nil {
		return err
	}
	for _, n := range batch {
		s.Hub.Push(n)
	}
	return nil
}

func (s *NotificationServiceImpl) ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]Notification, error) {
	return s.Repo.ListByUser(ctx, userID, unreadOnly)
}

func (s *NotificationServiceImpl) MarkRead(ctx context.Context, id string, userID string) error {
	return s.Repo.MarkRead(ctx, id, userID)
}
