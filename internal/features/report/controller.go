package report

import (
	"errors"
	"fmt"

	"go-procure/internal/features/purchaserequest"
	"go-procure/internal/features/workflow"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

type ReportController struct {
	Service ReportService
}

func NewReportController(service ReportService) *ReportController {
	return &ReportController{Service: service}
}

func sendWorkbook(ctx *fiber.Ctx, f *excelize.File, filename string) error {
	ctx.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return f.Write(ctx.Response().BodyWriter())
}

// ExportPurchaseRequestHistory godoc
// @Summary Export a purchase request's navigation history as XLSX
// @Tags reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Purchase Request ID"
// @Success 200 {file} binary
// @Router /api/reports/purchase-requests/{id}/history [get]
func (c *ReportController) ExportPurchaseRequestHistory(ctx *fiber.Ctx) error {
	f, filename, err := c.Service.PurchaseRequestHistoryWorkbook(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		if errors.Is(err, purchaserequest.ErrPurchaseRequestNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return ctx.Status(workflow.StatusForNavigationError(err)).JSON(fiber.Map{"error": err.Error()})
	}
	defer f.Close()
	return sendWorkbook(ctx, f, filename)
}

// StageSummary godoc
// @Summary Count in-flight documents per stage
// @Tags reports
// @Produce json
// @Success 200 {array} StageCount
// @Router /api/reports/stage-summary [get]
func (c *ReportController) StageSummary(ctx *fiber.Ctx) error {
	summary, err := c.Service.StageSummary(ctx.UserContext())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(summary)
}

// ExportStageSummary godoc
// @Summary Export the stage summary as XLSX
// @Tags reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Router /api/reports/stage-summary/export [get]
func (c *ReportController) ExportStageSummary(ctx *fiber.Ctx) error {
	f, filename, err := c.Service.StageSummaryWorkbook(ctx.UserContext())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	defer f.Close()
	return sendWorkbook(ctx, f, filename)
}
