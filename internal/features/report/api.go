package report

import (
	"go-procure/internal/config"
	"go-procure/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ReportApi struct {
	controller *ReportController
	config     *config.Config
}

func NewReportApi(controller *ReportController, config *config.Config) *ReportApi {
	return &ReportApi{
		controller: controller,
		config:     config,
	}
}

func (h *ReportApi) Setup(app *fiber.App) {
	reports := app.Group("/api/reports", middleware.AuthMiddleware(h.config.SkipAuth))

	reports.Get("/stage-summary", h.controller.StageSummary)
	reports.Get("/stage-summary/export", h.controller.ExportStageSummary)
	reports.Get("/purchase-requests/:id/history", h.controller.ExportPurchaseRequestHistory)
}
