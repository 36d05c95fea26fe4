package goodreceivednote

import (
	"go-procure/internal/config"
	"go-procure/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type GRNApi struct {
	controller *GRNController
	config     *config.Config
}

func NewGRNApi(controller *GRNController, config *config.Config) *GRNApi {
	return &GRNApi{
		controller: controller,
		config:     config,
	}
}

func (h *GRNApi) Setup(app *fiber.App) {
	grns := app.Group("/api/good-received-notes", middleware.AuthMiddleware(h.config.SkipAuth))

	grns.Post("/", h.controller.Create)
	grns.Get("/", h.controller.List)
	grns.Get("/:id", h.controller.Get)
	grns.Post("/:id/navigate", h.controller.Navigate)
	grns.Post("/:id/return", h.controller.Return)
}
