package main

import (
	"context"
	"fmt"
	common_api "go-procure/internal/common/api"
	"go-procure/internal/config"
	"go-procure/internal/database"
	"go-procure/internal/features/auth"
	"go-procure/internal/features/businessunit"
	"go-procure/internal/features/goodreceivednote"
	"go-procure/internal/features/notification"
	"go-procure/internal/features/purchaserequest"
	"go-procure/internal/features/report"
	"go-procure/internal/features/sla"
	"go-procure/internal/features/user"
	"go-procure/internal/features/workflow"
	"go-procure/internal/logger"
	"go-procure/internal/middleware"
	"go-procure/pkg/utils"
	"log"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(middleware.CORSMiddleware())

	// Extract X-Business-Unit header into the request context
	app.Use(middleware.BusinessUnitMiddleware())

	return app
}

// AsRoute is a helper function to reduce boilerplate.
// It tags the constructor so Fx knows to add it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),
		fx.ResultTags(`group:"routes"`),
	)
}

// RegisterAllRoutes takes the group "routes" (slice of interfaces)
// and calls Setup() on each one.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route) {
	log.Printf("Registering %d routes...\n", len(routes))
	for i, route := range routes {
		log.Printf("Setting up route %d: %T\n", i+1, route)
		route.Setup(app)
	}
	log.Println("All routes registered successfully")
}

// RegisterAllRoutesWithAnnotation wraps RegisterAllRoutes with fx annotations
var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`),
)

// StartServer creates a lifecycle hook to start Fiber in a goroutine
// and shut it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}

// @title           Procurement Workflow API
// @version         1.0
// @description     Approval workflow backend for hospitality procurement documents.

// @host            localhost:8080
// @BasePath        /
func main() {
	app := fx.New(
		fx.Provide(
			// Load Config
			config.LoadConfig,

			// Initialize Database
			database.NewDatabase,

			// Initialize Logger
			logger.NewLogger,

			// Initialize Fiber Server
			NewFiberServer,

			// Websocket hub for live notifications
			notification.NewHub,

			// Initialize Repository
			user.NewUserRepository,
			workflow.NewWorkflowRepository,
			businessunit.NewBusinessUnitRepository,
			notification.NewNotificationRepository,
			purchaserequest.NewPurchaseRequestRepository,
			goodreceivednote.NewGRNRepository,

			auth.NewAuthService,
			workflow.NewWorkflowService,
			businessunit.NewBusinessUnitService,
			notification.NewNotificationService,
			purchaserequest.NewPurchaseRequestService,
			goodreceivednote.NewGRNService,
			report.NewReportService,
			sla.NewScanner,

			// Initialize Controller
			auth.NewAuthController,
			user.NewUserController,
			workflow.NewWorkflowController,
			businessunit.NewBusinessUnitController,
			notification.NewNotificationController,
			purchaserequest.NewPurchaseRequestController,
			goodreceivednote.NewGRNController,
			report.NewReportController,

			// Initialize API Routes
			AsRoute(auth.NewAuthApi),
			AsRoute(user.NewUserApi),
			AsRoute(workflow.NewWorkflowApi),
			AsRoute(businessunit.NewBusinessUnitApi),
			AsRoute(notification.NewNotificationApi),
			AsRoute(purchaserequest.NewPurchaseRequestApi),
			AsRoute(goodreceivednote.NewGRNApi),
			AsRoute(report.NewReportApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			func(cfg *config.Config) { utils.SetSecret(cfg.JWTSecret) },

			// Register Routes & Start
			RegisterAllRoutesWithAnnotation,
			StartServer,
			sla.RegisterScanner,
		),
	)

	app.Run()
}
