package businessunit

import (
	"go-procure/internal/config"
	"go-procure/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type BusinessUnitApi struct {
	controller *BusinessUnitController
	config     *config.Config
}

func NewBusinessUnitApi(controller *BusinessUnitController, config *config.Config) *BusinessUnitApi {
	return &BusinessUnitApi{
		controller: controller,
		config:     config,
	}
}

func (h *BusinessUnitApi) Setup(app *fiber.App) {
	units := app.Group("/api/business-units", middleware.AuthMiddleware(h.config.SkipAuth))

	units.Post("/", h.controller.Create)
	units.Get("/", h.controller.List)
	units.Get("/:code", h.controller.Get)
	units.Put("/:id", h.controller.Update)
	units.Delete("/:id", h.controller.Delete)
}
