package purchaserequest

import (
	"errors"

	"go-procure/internal/common/models"
	"go-procure/internal/features/workflow"
	"go-procure/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type PurchaseRequestController struct {
	Service PurchaseRequestService
}

func NewPurchaseRequestController(service PurchaseRequestService) *PurchaseRequestController {
	return &PurchaseRequestController{Service: service}
}

func statusForError(err error) int {
	if errors.Is(err, ErrPurchaseRequestNotFound) {
		return fiber.StatusNotFound
	}
	return workflow.StatusForNavigationError(err)
}

// Create godoc
// @Summary Create a purchase request
// @Description Create a purchase request bound to its business unit's workflow
// @Tags purchase-requests
// @Accept json
// @Produce json
// @Param request body CreatePurchaseRequestInput true "Purchase Request"
// @Success 201 {object} PurchaseRequest
// @Router /api/purchase-requests [post]
func (c *PurchaseRequestController) Create(ctx *fiber.Ctx) error {
	claims := ctx.Locals(utils.UserClaimsKey).(*utils.UserClaims)

	var input CreatePurchaseRequestInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if input.BusinessUnitCode == "" {
		if bu, ok := ctx.UserContext().Value(models.BusinessUnitKey).(string); ok {
			input.BusinessUnitCode = bu
		}
	}

	pr, err := c.Service.Create(ctx.UserContext(), input, claims.UserID)
	if err != nil {
		return ctx.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusCreated).JSON(pr)
}

// Get godoc
// @Summary Get a purchase request
// @Tags purchase-requests
// @Produce json
// @Param id path string true "Purchase Request ID"
// @Success 200 {object} PurchaseRequest
// @Failure 404 {object} map[string]string
// @Router /api/purchase-requests/{id} [get]
func (c *PurchaseRequestController) Get(ctx *fiber.Ctx) error {
	pr, err := c.Service.Get(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return ctx.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(pr)
}

// List godoc
// @Summary List purchase requests
// @Tags purchase-requests
// @Produce json
// @Param business_unit query string false "Business Unit Code"
// @Param status query string false "Document Status"
// @Success 200 {array} PurchaseRequest
// @Router /api/purchase-requests [get]
func (c *PurchaseRequestController) List(ctx *fiber.Ctx) error {
	prs, err := c.Service.List(ctx.UserContext(),
		ctx.Query("business_unit"),
		models.DocumentStatus(ctx.Query("status")),
	)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if prs == nil {
		prs = []PurchaseRequest{}
	}
	return ctx.JSON(prs)
}

// Navigate godoc
// @Summary Move a purchase request forward
// @Description Apply an action (submit, approve, reject) at the current stage
// @Tags purchase-requests
// @Accept json
// @Produce json
// @Param id path string true "Purchase Request ID"
// @Param move body NavigateInput true "Action"
// @Success 200 {object} NavigateResult
// @Failure 422 {object} map[string]string "Action not available or condition error"
// @Router /api/purchase-requests/{id}/navigate [post]
func (c *PurchaseRequestController) Navigate(ctx *fiber.Ctx) error {
	claims := ctx.Locals(utils.UserClaimsKey).(*utils.UserClaims)

	var input NavigateInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if input.Action == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "action is required"})
	}

	res, err := c.Service.Navigate(ctx.UserContext(), ctx.Params("id"), input, claims.UserID)
	if err != nil {
		return ctx.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(res)
}

// Return godoc
// @Summary Send a purchase request back to an earlier stage
// @Tags purchase-requests
// @Accept json
// @Produce json
// @Param id path string true "Purchase Request ID"
// @Param move body ReturnInput true "Target stage"
// @Success 200 {object} NavigateResult
// @Failure 422 {object} map[string]string "Target not reachable backward"
// @Router /api/purchase-requests/{id}/return [post]
func (c *PurchaseRequestController) Return(ctx *fiber.Ctx) error {
	claims := ctx.Locals(utils.UserClaimsKey).(*utils.UserClaims)

	var input ReturnInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if input.TargetStage == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "target_stage is required"})
	}

	res, err := c.Service.ReturnToStage(ctx.UserContext(), ctx.Params("id"), input, claims.UserID)
	if err != nil {
		return ctx.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(res)
}

// PreviousStages godoc
// @Summary List the stages a purchase request can be sent back to
// @Tags purchase-requests
// @Produce json
// @Param id path string true "Purchase Request ID"
// @Success 200 {array} string
// @Router /api/purchase-requests/{id}/previous-stages [get]
func (c *PurchaseRequestController) PreviousStages(ctx *fiber.Ctx) error {
	names, err := c.Service.PreviousStages(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return ctx.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}
	if names == nil {
		names = []string{}
	}
	return ctx.JSON(names)
}

// History godoc
// @Summary Get the navigation history of a purchase request
// @Tags purchase-requests
// @Produce json
// @Param id path string true "Purchase Request ID"
// @Success 200 {array} workflow.HistoryEntry
// @Router /api/purchase-requests/{id}/history [get]
func (c *PurchaseRequestController) History(ctx *fiber.Ctx) error {
	pr, err := c.Service.Get(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return ctx.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(pr.History)
}
