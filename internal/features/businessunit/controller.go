package businessunit

import (
	"github.com/gofiber/fiber/v2"
)

type BusinessUnitController struct {
	Service BusinessUnitService
}

func NewBusinessUnitController(service BusinessUnitService) *BusinessUnitController {
	return &BusinessUnitController{Service: service}
}

// Create godoc
// @Summary Create a business unit
// @Tags business-units
// @Accept json
// @Produce json
// @Param unit body BusinessUnit true "Business Unit"
// @Success 201 {object} BusinessUnit
// @Router /api/business-units [post]
func (c *BusinessUnitController) Create(ctx *fiber.Ctx) error {
	var input BusinessUnit
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	unit, err := c.Service.Create(ctx.UserContext(), input)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusCreated).JSON(unit)
}

// Get godoc
// @Summary Get a business unit by code
// @Tags business-units
// @Produce json
// @Param code path string true "Unit Code"
// @Success 200 {object} BusinessUnit
// @Failure 404 {object} map[string]string
// @Router /api/business-units/{code} [get]
func (c *BusinessUnitController) Get(ctx *fiber.Ctx) error {
	unit, err := c.Service.GetByCode(ctx.UserContext(), ctx.Params("code"))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if unit == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Business unit not found"})
	}
	return ctx.JSON(unit)
}

// List godoc
// @Summary List business units
// @Tags business-units
// @Produce json
// @Success 200 {array} BusinessUnit
// @Router /api/business-units [get]
func (c *BusinessUnitController) List(ctx *fiber.Ctx) error {
	units, err := c.Service.List(ctx.UserContext())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(units)
}

// Update godoc
// @Summary Update a business unit
// @Tags business-units
// @Accept json
// @Param id path string true "Unit ID"
// @Success 200 {object} map[string]string
// @Router /api/business-units/{id} [put]
func (c *BusinessUnitController) Update(ctx *fiber.Ctx) error {
	var input BusinessUnit
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := c.Service.Update(ctx.UserContext(), ctx.Params("id"), input); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"message": "Business unit updated successfully"})
}

// Delete godoc
// @Summary Delete a business unit
// @Tags business-units
// @Param id path string true "Unit ID"
// @Success 204 {object} nil
// @Router /api/business-units/{id} [delete]
func (c *BusinessUnitController) Delete(ctx *fiber.Ctx) error {
	if err := c.Service.Delete(ctx.UserContext(), ctx.Params("id")); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}
