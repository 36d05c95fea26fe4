package goodreceivednote

import (
	"errors"

	"go-procure/internal/common/models"
	"go-procure/internal/features/workflow"
	"go-procure/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

type GRNController struct {
	Service GRNService
}

func NewGRNController(service GRNService) *GRNController {
	return &GRNController{Service: service}
}

func statusForError(err error) int {
	if errors.Is(err, ErrGRNNotFound) {
		return fiber.StatusNotFound
	}
	return workflow.StatusForNavigationError(err)
}

// Create godoc
// @Summary Create a good received note
// @Tags good-received-notes
// @Accept json
// @Produce json
// @Param grn body CreateGRNInput true "Good Received Note"
// @Success 201 {object} GoodReceivedNote
// @Router /api/good-received-notes [post]
func (c *GRNController) Create(ctx *fiber.Ctx) error {
	claims := ctx.Locals(utils.UserClaimsKey).(*utils.UserClaims)

	var input CreateGRNInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if input.BusinessUnitCode == "" {
		if bu, ok := ctx.UserContext().Value(models.BusinessUnitKey).(string); ok {
			input.BusinessUnitCode = bu
		}
	}

	grn, err := c.Service.Create(ctx.UserContext(), input, claims.UserID)
	if err != nil {
		return ctx.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusCreated).JSON(grn)
}

// Get godoc
// @Summary Get a good received note
// @Tags good-received-notes
// @Produce json
// @Param id path string true "GRN ID"
// @Success 200 {object} GoodReceivedNote
// @Router /api/good-received-notes/{id} [get]
func (c *GRNController) Get(ctx *fiber.Ctx) error {
	grn, err := c.Service.Get(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return ctx.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(grn)
}

// List godoc
// @Summary List good received notes
// @Tags good-received-notes
// @Produce json
// @Param business_unit query string false "Business Unit Code"
// @Param status query string false "Document Status"
// @Success 200 {array} GoodReceivedNote
// @Router /api/good-received-notes [get]
func (c *GRNController) List(ctx *fiber.Ctx) error {
	grns, err := c.Service.List(ctx.UserContext(),
		ctx.Query("business_unit"),
		models.DocumentStatus(ctx.Query("status")),
	)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if grns == nil {
		grns = []GoodReceivedNote{}
	}
	return ctx.JSON(grns)
}

// Navigate godoc
// @Summary Move a good received note forward
// @Tags good-received-notes
// @Accept json
// @Produce json
// @Param id path string true "GRN ID"
// @Param move body NavigateInput true "Action"
// @Success 200 {object} NavigateResult
// @Router /api/good-received-notes/{id}/navigate [post]
func (c *GRNController) Navigate(ctx *fiber.Ctx) error {
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
// @Summary Send a good received note back to an earlier stage
// @Tags good-received-notes
// @Accept json
// @Produce json
// @Param id path string true "GRN ID"
// @Param move body ReturnInput true "Target stage"
// @Success 200 {object} NavigateResult
// @Router /api/good-received-notes/{id}/return [post]
func (c *GRNController) Return(ctx *fiber.Ctx) error {
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
