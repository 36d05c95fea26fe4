package workflow

import (
	"go-procure/internal/config"
	"go-procure/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type WorkflowApi struct {
	controller *WorkflowController
	config     *config.Config
}

func NewWorkflowApi(controller *WorkflowController, config *config.Config) *WorkflowApi {
	return &WorkflowApi{
		controller: controller,
		config:     config,
	}
}

func (h *WorkflowApi) Setup(app *fiber.App) {
	workflows := app.Group("/api/workflows", middleware.AuthMiddleware(h.config.SkipAuth))

	workflows.Post("/stage-names", h.controller.AggregateStageNames)
	workflows.Post("/", h.controller.CreateDefinition)
	workflows.Get("/", h.controller.ListDefinitions)
	workflows.Get("/:id", h.controller.GetDefinition)
	workflows.Put("/:id", h.controller.UpdateDefinition)
	workflows.Delete("/:id", h.controller.DeleteDefinition)
	workflows.Get("/:id/stages", h.controller.GetStageNames)
	workflows.Get("/:id/stages/:stage/previous", h.controller.GetPreviousStages)
}
