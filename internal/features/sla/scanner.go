package sla

import (
	"context"
	"time"

	"go-procure/internal/config"
	"go-procure/internal/features/goodreceivednote"
	"go-procure/internal/features/notification"
	"go-procure/internal/features/purchaserequest"
	"go-procure/internal/features/workflow"

	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Scanner periodically walks in-flight documents and raises SLA warnings for
// any that have sat at their current stage longer than the stage allows.
// Warnings are advisory; the scanner never moves a document.
type Scanner struct {
	PurchaseRequests purchaserequest.PurchaseRequestRepository
	GRNs             goodreceivednote.GRNRepository
	Workflows        workflow.WorkflowService
	Notifications    notification.NotificationService
	Logger           *zap.Logger

	cron *cron.Cron
}

func NewScanner(
	prRepo purchaserequest.PurchaseRequestRepository,
	grnRepo goodreceivednote.GRNRepository,
	workflows workflow.WorkflowService,
	notifications notification.NotificationService,
	logger *zap.Logger,
) *Scanner {
	return &Scanner{
		PurchaseRequests: prRepo,
		GRNs:             grnRepo,
		Workflows:        workflows,
		Notifications:    notifications,
		Logger:           logger,
		cron:             cron.New(),
	}
}

// RegisterScanner schedules the scan on the configured cron spec and ties the
// scheduler to the application lifecycle.
func RegisterScanner(lc fx.Lifecycle, s *Scanner, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if _, err := s.cron.AddFunc(cfg.SLAScanSpec, s.Scan); err != nil {
				return err
			}
			s.cron.Start()
			s.Logger.Info("sla scanner started", zap.String("spec", cfg.SLAScanSpec))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			stopCtx := s.cron.Stop()
			select {
			case <-stopCtx.Done():
			case <-ctx.Done():
			}
			return nil
		},
	})
}

// Scan runs one pass over all in-progress documents.
func (s *Scanner) Scan() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	now := time.Now()
	warned := 0

	prs, err := s.PurchaseRequests.ListInProgress(ctx)
	if err != nil {
		s.Logger.Error("sla scan: list purchase requests", zap.Error(err))
	} else {
		for _, pr := range prs {
			if s.checkDocument(ctx, workflow.DocumentTypePurchaseRequest, pr.RefNo, pr.WorkflowID, pr.CurrentStage, pr.RequestorID, pr.History, pr.CreatedAt, now) {
				warned++
			}
		}
	}

	grns, err := s.GRNs.ListInProgress(ctx)
	if err != nil {
		s.Logger.Error("sla scan: list good received notes", zap.Error(err))
	} else {
		for _, grn := range grns {
			if s.checkDocument(ctx, workflow.DocumentTypeGoodReceivedNote, grn.RefNo, grn.WorkflowID, grn.CurrentStage, grn.ReceiverID, grn.History, grn.CreatedAt, now) {
				warned++
			}
		}
	}

	if warned > 0 {
		s.Logger.Info("sla scan finished", zap.Int("warnings", warned))
	}
}

func (s *Scanner) checkDocument(
	ctx context.Context,
	docType workflow.DocumentType,
	refNo string,
	workflowID string,
	currentStage string,
	requestorID string,
	history []workflow.HistoryEntry,
	createdAt time.Time,
	now time.Time,
) bool {
	nav, err := s.Workflows.NavigatorFor(ctx, workflowID, currentStage)
	if err != nil {
		s.Logger.Warn("sla scan: navigator",
			zap.String("ref_no", refNo),
			zap.Error(err),
		)
		return false
	}

	stage := nav.CurrentStageDetail()
	if stage == nil || stage.SLAWarning == nil {
		return false
	}
	if !StageOverdue(*stage, EnteredStageAt(history, createdAt), now) {
		return false
	}

	userIDs := WarningRecipients(*stage, requestorID)
	if len(userIDs) == 0 {
		return false
	}

	if err := s.Notifications.NotifySLAWarning(ctx, docType, refNo, *stage, userIDs); err != nil {
		s.Logger.Warn("sla scan: notify",
			zap.String("ref_no", refNo),
			zap.Error(err),
		)
		return false
	}
	return true
}

// EnteredStageAt returns when the document arrived at its current stage: the
// timestamp of the last transition, or creation time for untouched documents.
func EnteredStageAt(history []workflow.HistoryEntry, createdAt time.Time) time.Time {
	if len(history) == 0 {
		return createdAt
	}
	return history[len(history)-1].Timestamp
}

// StageOverdue reports whether the dwell time at the stage exceeds its SLA.
// Stages without a positive SLA never go overdue.
func StageOverdue(stage workflow.Stage, enteredAt time.Time, now time.Time) bool {
	if stage.SLA <= 0 {
		return false
	}
	var limit time.Duration
	switch stage.SLAUnit {
	case workflow.SLAUnitDays:
		limit = time.Duration(stage.SLA * 24 * float64(time.Hour))
	default:
		limit = time.Duration(stage.SLA * float64(time.Hour))
	}
	return now.Sub(enteredAt) > limit
}

// WarningRecipients expands the stage's SLA recipient flags into user IDs:
// next_step and current_approve both resolve to the stage's assignees, the
// requestor flag adds the document creator.
func WarningRecipients(stage workflow.Stage, requestorID string) []string {
	seen := make(map[string]bool)
	var userIDs []string
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			userIDs = append(userIDs, id)
		}
	}

	w := stage.SLAWarning
	if w == nil {
		return nil
	}
	if w.NextStep || w.CurrentApprove {
		for _, u := range stage.AssignedUsers {
			add(u.UserID)
		}
	}
	if w.Requestor {
		add(requestorID)
	}
	return userIDs
}
