package workflow

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

type WorkflowController struct {
	Service WorkflowService
}

func NewWorkflowController(service WorkflowService) *WorkflowController {
	return &WorkflowController{Service: service}
}

// StatusForNavigationError maps engine errors onto HTTP codes: definition
// problems and authoring gaps are server-side defects, everything else is a
// caller validation failure. Document controllers share this mapping.
func StatusForNavigationError(err error) int {
	var defErr *DefinitionError
	var noStage *NoResolvableStageError
	var notAllowed *ActionNotAllowedError
	var unreachable *UnreachableStageError
	var condErr *ConditionEvalError

	switch {
	case errors.As(err, &notAllowed), errors.As(err, &unreachable), errors.As(err, &condErr):
		return fiber.StatusUnprocessableEntity
	case errors.As(err, &defErr), errors.As(err, &noStage):
		return fiber.StatusInternalServerError
	case errors.Is(err, ErrWorkflowNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// CreateDefinition godoc
// @Summary Create a workflow definition
// @Description Validate and store a new approval workflow definition
// @Tags workflows
// @Accept json
// @Produce json
// @Param definition body WorkflowData true "Workflow Definition"
// @Success 201 {object} WorkflowData
// @Failure 400 {object} map[string]string "Invalid definition"
// @Router /api/workflows [post]
func (c *WorkflowController) CreateDefinition(ctx *fiber.Ctx) error {
	var input WorkflowData
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	created, err := c.Service.CreateDefinition(ctx.UserContext(), input)
	if err != nil {
		var defErr *DefinitionError
		if errors.As(err, &defErr) {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.Status(fiber.StatusCreated).JSON(created)
}

// UpdateDefinition godoc
// @Summary Update a workflow definition
// @Tags workflows
// @Accept json
// @Produce json
// @Param id path string true "Workflow ID"
// @Param definition body WorkflowData true "Workflow Definition"
// @Success 200 {object} map[string]string
// @Router /api/workflows/{id} [put]
func (c *WorkflowController) UpdateDefinition(ctx *fiber.Ctx) error {
	id := ctx.Params("id")
	var input WorkflowData
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := c.Service.UpdateDefinition(ctx.UserContext(), id, input); err != nil {
		var defErr *DefinitionError
		if errors.As(err, &defErr) {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.JSON(fiber.Map{"message": "Workflow definition updated successfully"})
}

// DeleteDefinition godoc
// @Summary Delete a workflow definition
// @Tags workflows
// @Param id path string true "Workflow ID"
// @Success 204 {object} nil
// @Router /api/workflows/{id} [delete]
func (c *WorkflowController) DeleteDefinition(ctx *fiber.Ctx) error {
	if err := c.Service.DeleteDefinition(ctx.UserContext(), ctx.Params("id")); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

// GetDefinition godoc
// @Summary Get a workflow definition
// @Tags workflows
// @Produce json
// @Param id path string true "Workflow ID"
// @Success 200 {object} WorkflowData
// @Failure 404 {object} map[string]string
// @Router /api/workflows/{id} [get]
func (c *WorkflowController) GetDefinition(ctx *fiber.Ctx) error {
	def, err := c.Service.GetDefinition(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if def == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Workflow definition not found"})
	}
	return ctx.JSON(def)
}

// ListDefinitions godoc
// @Summary List workflow definitions
// @Tags workflows
// @Produce json
// @Success 200 {array} WorkflowData
// @Router /api/workflows [get]
func (c *WorkflowController) ListDefinitions(ctx *fiber.Ctx) error {
	defs, err := c.Service.ListDefinitions(ctx.UserContext())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(defs)
}

// GetStageNames godoc
// @Summary List the ordered stage names of a workflow
// @Tags workflows
// @Produce json
// @Param id path string true "Workflow ID"
// @Success 200 {array} string
// @Router /api/workflows/{id}/stages [get]
func (c *WorkflowController) GetStageNames(ctx *fiber.Ctx) error {
	def, err := c.Service.GetDefinition(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if def == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Workflow definition not found"})
	}

	names := make([]string, len(def.Stages))
	for i, st := range def.Stages {
		names[i] = st.Name
	}
	return ctx.JSON(names)
}

// GetPreviousStages godoc
// @Summary List the stages a document at the given stage can be sent back to
// @Tags workflows
// @Produce json
// @Param id path string true "Workflow ID"
// @Param stage path string true "Current Stage Name"
// @Success 200 {array} string
// @Router /api/workflows/{id}/stages/{stage}/previous [get]
func (c *WorkflowController) GetPreviousStages(ctx *fiber.Ctx) error {
	names, err := c.Service.PreviousStages(ctx.UserContext(), ctx.Params("id"), ctx.Params("stage"))
	if err != nil {
		return ctx.Status(StatusForNavigationError(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(names)
}

// AggregateStageNames godoc
// @Summary Aggregate stage names across many workflow definitions
// @Tags workflows
// @Accept json
// @Produce json
// @Param body body map[string][]string true "Workflow IDs"
// @Success 200 {array} string
// @Router /api/workflows/stage-names [post]
func (c *WorkflowController) AggregateStageNames(ctx *fiber.Ctx) error {
	var body struct {
		WorkflowIDs []string `json:"workflow_ids"`
	}
	if err := ctx.BodyParser(&body); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	names, err := c.Service.StageNamesAcrossWorkflows(ctx.UserContext(), body.WorkflowIDs)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(names)
}
