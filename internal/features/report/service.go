package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go-procure/internal/features/goodreceivednote"
	"go-procure/internal/features/purchaserequest"
	"go-procure/internal/features/workflow"
	"go-procure/pkg/utils"

	"github.com/xuri/excelize/v2"
)

const historySheet = "History"
const summarySheet = "Stage Summary"

// StageCount is one row of the cross-document stage summary.
type StageCount struct {
	DocumentType workflow.DocumentType `json:"document_type"`
	Stage        string                `json:"stage"`
	Count        int                   `json:"count"`
}

type ReportService interface {
	// PurchaseRequestHistoryWorkbook renders a document's full navigation
	// trail as a spreadsheet. Returns the workbook and a download filename.
	PurchaseRequestHistoryWorkbook(ctx context.Context, id string) (*excelize.File, string, error)
	// StageSummary counts in-flight documents per (document type, stage).
	StageSummary(ctx context.Context) ([]StageCount, error)
	// StageSummaryWorkbook renders the stage summary as a spreadsheet.
	StageSummaryWorkbook(ctx context.Context) (*excelize.File, string, error)
}

type ReportServiceImpl struct {
	PurchaseRequests purchaserequest.PurchaseRequestService
	PRRepo           purchaserequest.PurchaseRequestRepository
	GRNRepo          goodreceivednote.GRNRepository
}

func NewReportService(
	purchaseRequests purchaserequest.PurchaseRequestService,
	prRepo purchaserequest.PurchaseRequestRepository,
	grnRepo goodreceivednote.GRNRepository,
) ReportService {
	return &ReportServiceImpl{
		PurchaseRequests: purchaseRequests,
		PRRepo:           prRepo,
		GRNRepo:          grnRepo,
	}
}

func (s *ReportServiceImpl) PurchaseRequestHistoryWorkbook(ctx context.Context, id string) (*excelize.File, string, error) {
	pr, err := s.PurchaseRequests.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	f.SetSheetName(f.GetSheetName(0), historySheet)

	f.SetCellValue(historySheet, "A1", "Reference No")
	f.SetCellValue(historySheet, "B1", pr.RefNo)
	f.SetCellValue(historySheet, "A2", "Business Unit")
	f.SetCellValue(historySheet, "B2", pr.BusinessUnitCode)
	f.SetCellValue(historySheet, "A3", "Current Stage")
	f.SetCellValue(historySheet, "B3", pr.CurrentStage)
	f.SetCellValue(historySheet, "A4", "Status")
	f.SetCellValue(historySheet, "B4", string(pr.Status))

	headers := []string{"From Stage", "To Stage", "Action", "Actor", "Timestamp", "Matched Rule"}
	headerRow := 6
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, headerRow)
		f.SetCellValue(historySheet, cell, h)
	}

	for i, entry := range pr.History {
		row := headerRow + 1 + i
		ruleID := ""
		if entry.MatchedRuleID != nil {
			ruleID = *entry.MatchedRuleID
		}
		values := []interface{}{
			entry.FromStage,
			entry.ToStage,
			string(entry.Action),
			entry.ActorUserID,
			entry.Timestamp.Format(time.RFC3339),
			ruleID,
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, row)
			f.SetCellValue(historySheet, cell, v)
		}
	}

	filename := fmt.Sprintf("%s-history.xlsx", utils.Slugify(pr.RefNo))
	return f, filename, nil
}

func (s *ReportServiceImpl) StageSummary(ctx context.Context) ([]StageCount, error) {
	type key struct {
		docType workflow.DocumentType
		stage   string
	}
	counts := make(map[key]int)

	prs, err := s.PRRepo.ListInProgress(ctx)
	if err != nil {
		return nil, err
	}
	for _, pr := range prs {
		counts[key{workflow.DocumentTypePurchaseRequest, pr.CurrentStage}]++
	}

	grns, err := s.GRNRepo.ListInProgress(ctx)
	if err != nil {
		return nil, err
	}
	for _, grn := range grns {
		counts[key{workflow.DocumentTypeGoodReceivedNote, grn.CurrentStage}]++
	}

	out := make([]StageCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, StageCount{DocumentType: k.docType, Stage: k.stage, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DocumentType != out[j].DocumentType {
			return out[i].DocumentType < out[j].DocumentType
		}
		return out[i].Stage < out[j].Stage
	})
	return out, nil
}

func (s *ReportServiceImpl) StageSummaryWorkbook(ctx context.Context) (*excelize.File, string, error) {
	summary, err := s.StageSummary(ctx)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	f.SetSheetName(f.GetSheetName(0), summarySheet)

	headers := []string{"Document Type", "Stage", "In Progress"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(summarySheet, cell, h)
	}
	for i, row := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		f.SetCellValue(summarySheet, cell, string(row.DocumentType))
		cell, _ = excelize.CoordinatesToCellName(2, i+2)
		f.SetCellValue(summarySheet, cell, row.Stage)
		cell, _ = excelize.CoordinatesToCellName(3, i+2)
		f.SetCellValue(summarySheet, cell, row.Count)
	}

	filename := fmt.Sprintf("stage-summary-%s.xlsx", time.Now().Format("20060102"))
	return f, filename, nil
}
