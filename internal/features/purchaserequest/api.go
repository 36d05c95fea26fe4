package purchaserequest

import (
	"go-procure/internal/config"
	"go-procure/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type PurchaseRequestApi struct {
	controller *PurchaseRequestController
	config     *config.Config
}

func NewPurchaseRequestApi(controller *PurchaseRequestController, config *config.Config) *PurchaseRequestApi {
	return &PurchaseRequestApi{
		controller: controller,
		config:     config,
	}
}

func (h *PurchaseRequestApi) Setup(app *fiber.App) {
	prs := app.Group("/api/purchase-requests", middleware.AuthMiddleware(h.config.SkipAuth))

	prs.Post("/", h.controller.Create)
	prs.Get("/", h.controller.List)
	prs.Get("/:id", h.controller.Get)
	prs.Post("/:id/navigate", h.controller.Navigate)
	prs.Post("/:id/return", h.controller.Return)
	prs.Get("/:id/previous-stages", h.controller.PreviousStages)
	prs.Get("/:id/history", h.controller.History)
}
