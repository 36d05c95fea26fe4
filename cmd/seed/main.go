package main

import (
	"context"
	"time"

	"go-procure/internal/config"
	"go-procure/internal/database"
	"go-procure/internal/features/businessunit"
	"go-procure/internal/features/user"
	"go-procure/internal/features/workflow"
	"go-procure/internal/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func demoUsers() []user.User {
	hash := func(pw string) string {
		b, _ := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
		return string(b)
	}
	now := time.Now()
	return []user.User{
		{
			ID:        primitive.NewObjectID(),
			Username:  "requestor",
			Password:  hash("requestor123"),
			Email:     "requestor@example.com",
			Firstname: "Rita",
			Lastname:  "Requestor",
			Role:      "create",
			Status:    "active",
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:         primitive.NewObjectID(),
			Username:   "hod",
			Password:   hash("hod123"),
			Email:      "hod@example.com",
			Firstname:  "Henry",
			Lastname:   "Odum",
			Department: "F&B",
			Role:       "approve",
			Status:     "active",
			CreatedAt:  now,
			UpdatedAt:  now,
		},
		{
			ID:        primitive.NewObjectID(),
			Username:  "buyer",
			Password:  hash("buyer123"),
			Email:     "buyer@example.com",
			Firstname: "Bella",
			Lastname:  "Buyer",
			Role:      "purchase",
			Status:    "active",
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

func purchaseRequestWorkflow(users []user.User) workflow.WorkflowData {
	assigned := func(u user.User) workflow.AssignedUser {
		return workflow.AssignedUser{
			UserID:     u.ID.Hex(),
			Email:      u.Email,
			Firstname:  u.Firstname,
			Lastname:   u.Lastname,
			Department: u.Department,
		}
	}
	notifyForward := workflow.Recipients{NextStep: true, Requestor: true}

	return workflow.WorkflowData{
		Name:         "Standard PR Approval",
		DocumentType: workflow.DocumentTypePurchaseRequest,
		Active:       true,
		Stages: []workflow.Stage{
			{
				Name:          "Create Request",
				Role:          "create",
				SLA:           24,
				SLAUnit:       workflow.SLAUnitHours,
				AssignedUsers: []workflow.AssignedUser{assigned(users[0])},
				CreatorAccess: workflow.CreatorAccessEdit,
				AvailableActions: map[workflow.Action]workflow.ActionConfig{
					workflow.ActionSubmit: {IsActive: true, Recipients: notifyForward},
				},
			},
			{
				Name:          "HOD Approval",
				Role:          "approve",
				SLA:           2,
				SLAUnit:       workflow.SLAUnitDays,
				IsHOD:         true,
				AssignedUsers: []workflow.AssignedUser{assigned(users[1])},
				CreatorAccess: workflow.CreatorAccessView,
				AvailableActions: map[workflow.Action]workflow.ActionConfig{
					workflow.ActionApprove:  {IsActive: true, Recipients: notifyForward},
					workflow.ActionReject:   {IsActive: true, Recipients: workflow.Recipients{Requestor: true}},
					workflow.ActionSendBack: {IsActive: true, Recipients: workflow.Recipients{Requestor: true}},
				},
				SLAWarning: &workflow.Recipients{NextStep: true, Requestor: true},
			},
			{
				Name:          "Purchase",
				Role:          "purchase",
				SLA:           3,
				SLAUnit:       workflow.SLAUnitDays,
				AssignedUsers: []workflow.AssignedUser{assigned(users[2])},
				HideFields:    map[string]bool{"budget_remarks": true},
				AvailableActions: map[workflow.Action]workflow.ActionConfig{
					workflow.ActionApprove:  {IsActive: true, Recipients: notifyForward},
					workflow.ActionReject:   {IsActive: true, Recipients: workflow.Recipients{Requestor: true}},
					workflow.ActionSendBack: {IsActive: true, Recipients: workflow.Recipients{Requestor: true}},
				},
			},
			{
				Name:             "Completed",
				Role:             "complete",
				AssignedUsers:    []workflow.AssignedUser{},
				AvailableActions: map[workflow.Action]workflow.ActionConfig{},
			},
		},
		RoutingRules: []workflow.RoutingRule{
			{
				FromStage: "Create Request",
				Action:    workflow.ActionSubmit,
				Conditions: []workflow.ConditionConfig{
					{Field: "amount", Operator: workflow.OpLt, Value: 100},
				},
				// Small purchases skip HOD review
				TargetStage: "Purchase",
			},
			{
				FromStage: "HOD Approval",
				Action:    workflow.ActionReject,
				Conditions: []workflow.ConditionConfig{
					{Field: "amount", Operator: workflow.OpLt, Value: 1000},
				},
				// Small rejected requests return for rework; larger ones cancel
				TargetStage: "Create Request",
			},
		},
	}
}

func grnWorkflow(users []user.User) workflow.WorkflowData {
	assigned := func(u user.User) workflow.AssignedUser {
		return workflow.AssignedUser{UserID: u.ID.Hex(), Email: u.Email, Firstname: u.Firstname, Lastname: u.Lastname}
	}
	notifyForward := workflow.Recipients{NextStep: true, Requestor: true}

	return workflow.WorkflowData{
		Name:         "GRN Verification",
		DocumentType: workflow.DocumentTypeGoodReceivedNote,
		Active:       true,
		Stages: []workflow.Stage{
			{
				Name:          "Receive Goods",
				Role:          "create",
				AssignedUsers: []workflow.AssignedUser{assigned(users[2])},
				AvailableActions: map[workflow.Action]workflow.ActionConfig{
					workflow.ActionSubmit: {IsActive: true, Recipients: notifyForward},
				},
			},
			{
				Name:          "Verify",
				Role:          "approve",
				SLA:           1,
				SLAUnit:       workflow.SLAUnitDays,
				AssignedUsers: []workflow.AssignedUser{assigned(users[1])},
				AvailableActions: map[workflow.Action]workflow.ActionConfig{
					workflow.ActionApprove:  {IsActive: true, Recipients: notifyForward},
					workflow.ActionReject:   {IsActive: true, Recipients: workflow.Recipients{Requestor: true}},
					workflow.ActionSendBack: {IsActive: true, Recipients: workflow.Recipients{Requestor: true}},
				},
				SLAWarning: &workflow.Recipients{CurrentApprove: true},
			},
			{
				Name:             "Posted",
				Role:             "complete",
				AssignedUsers:    []workflow.AssignedUser{},
				AvailableActions: map[workflow.Action]workflow.ActionConfig{},
			},
		},
	}
}

// Seed inserts demo users, workflow definitions and a business unit, then
// shuts the app down.
func Seed(
	lc fx.Lifecycle,
	userRepo user.UserRepository,
	workflows workflow.WorkflowService,
	businessUnits businessunit.BusinessUnitService,
	logger *zap.Logger,
	shutdowner fx.Shutdowner,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer func() {
					if err := shutdowner.Shutdown(); err != nil {
						logger.Error("Failed to shutdown", zap.Error(err))
					}
				}()

				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				logger.Info("Seeding demo data...")

				users := demoUsers()
				for i := range users {
					existing, err := userRepo.FindByUsername(ctx, users[i].Username)
					if err != nil {
						logger.Error("Failed to check user", zap.Error(err))
						return
					}
					if existing != nil {
						logger.Info("User exists, skipping", zap.String("username", users[i].Username))
						users[i] = *existing
						continue
					}
					if err := userRepo.Create(ctx, &users[i]); err != nil {
						logger.Error("Failed to seed user", zap.Error(err))
						return
					}
				}

				prDef, err := workflows.CreateDefinition(ctx, purchaseRequestWorkflow(users))
				if err != nil {
					logger.Error("Failed to seed PR workflow", zap.Error(err))
					return
				}
				grnDef, err := workflows.CreateDefinition(ctx, grnWorkflow(users))
				if err != nil {
					logger.Error("Failed to seed GRN workflow", zap.Error(err))
					return
				}

				if _, err := businessUnits.Create(ctx, businessunit.BusinessUnit{
					Code:     "GH",
					Name:     "Grand Hotel",
					Currency: "USD",
					Active:   true,
					WorkflowAssignments: map[workflow.DocumentType]string{
						workflow.DocumentTypePurchaseRequest:  prDef.ID.Hex(),
						workflow.DocumentTypeGoodReceivedNote: grnDef.ID.Hex(),
					},
					ReferencePrefixes: map[workflow.DocumentType]string{
						workflow.DocumentTypePurchaseRequest:  "PR-GH",
						workflow.DocumentTypeGoodReceivedNote: "GRN-GH",
					},
				}); err != nil {
					logger.Warn("Business unit seed skipped", zap.Error(err))
				}

				logger.Info("Seeding finished",
					zap.String("pr_workflow", prDef.ID.Hex()),
					zap.String("grn_workflow", grnDef.ID.Hex()),
				)
			}()
			return nil
		},
	})
}

func main() {
	fx.New(
		fx.Provide(
			config.LoadConfig,
			database.NewDatabase,
			logger.NewLogger,
			user.NewUserRepository,
			workflow.NewWorkflowRepository,
			businessunit.NewBusinessUnitRepository,
			workflow.NewWorkflowService,
			businessunit.NewBusinessUnitService,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(Seed),
	).Run()
}
