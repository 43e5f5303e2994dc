package handlers

import (
	"encoding/csv"
	"log/slog"
	"net/http"
	"strings"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const formatCSV = "csv"

// reportingHandler handles HTTP requests related to ledger reports
type reportingHandler struct {
	reportingService portssvc.ReportingService
}

// newReportingHandler creates a new reportingHandler
func newReportingHandler(rs portssvc.ReportingService) *reportingHandler {
	return &reportingHandler{
		reportingService: rs,
	}
}

// registerReportingRoutes registers routes related to ledger reports
func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingService) {
	h := newReportingHandler(reportingService)

	reportingGroup := rg.Group("/reports")
	{
		reportingGroup.GET("/trial-balance", h.getTrialBalance)
		reportingGroup.GET("/general-ledger", h.getGeneralLedger)
	}
}

// getTrialBalance godoc
// @Summary Generate trial balance report
// @Description Lists every active account with its posted balance in the debit or credit column
// @Tags reports
// @Produce json
// @Produce text/csv
// @Param format query string false "Set to csv for a CSV export"
// @Success 200 {object} dto.TrialBalanceResponse
// @Failure 500 {object} map[string]string "Failed to generate report"
// @Router /reports/trial-balance [get]
func (h *reportingHandler) getTrialBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	logger.Info("Received request to generate trial balance report")

	tb, err := h.reportingService.TrialBalance(c.Request.Context())
	if err != nil {
		respondWithError(c, logger, err, "Failed to generate trial balance report")
		return
	}

	response := dto.ToTrialBalanceResponse(tb)
	logger.Info("Trial balance report generated successfully",
		slog.Int("row_count", len(response.Rows)),
		slog.Bool("balanced", response.Balanced))

	if wantsCSV(c) {
		records := [][]string{{"account_code", "account_name", "account_type", "debit", "credit"}}
		for _, row := range response.Rows {
			records = append(records, []string{
				row.AccountCode, row.AccountName, row.AccountType,
				csvAmount(row.Debit), csvAmount(row.Credit),
			})
		}
		records = append(records, []string{"", "TOTAL", "", csvAmount(response.Totals.Debit), csvAmount(response.Totals.Credit)})
		writeCSV(c, logger, "trial-balance.csv", records)
		return
	}
	c.JSON(http.StatusOK, response)
}

// getGeneralLedger godoc
// @Summary Generate general ledger report
// @Description Lists journal entries oldest first, optionally only those touching one account
// @Tags reports
// @Produce json
// @Produce text/csv
// @Param accountCode query string false "Restrict to entries of this account code"
// @Param format query string false "Set to csv for a CSV export"
// @Success 200 {object} dto.GeneralLedgerResponse
// @Failure 500 {object} map[string]string "Failed to generate report"
// @Router /reports/general-ledger [get]
func (h *reportingHandler) getGeneralLedger(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountCode := strings.TrimSpace(c.Query("accountCode"))
	logger = logger.With(slog.String("account_code", accountCode))
	logger.Info("Received request to generate general ledger report")

	rows, err := h.reportingService.GeneralLedger(c.Request.Context(), accountCode)
	if err != nil {
		respondWithError(c, logger, err, "Failed to generate general ledger report")
		return
	}

	response := dto.ToGeneralLedgerResponse(accountCode, rows)
	logger.Info("General ledger report generated successfully", slog.Int("entry_count", len(response.Entries)))

	if wantsCSV(c) {
		records := [][]string{{"date", "reference", "description", "status", "debit_account", "credit_account", "amount"}}
		for _, e := range response.Entries {
			records = append(records, []string{
				e.Date.Format(dto.DateLayout), e.Reference, e.Description, string(e.Status),
				summaryCode(e.DebitAccount), summaryCode(e.CreditAccount), csvAmount(e.Amount),
			})
		}
		writeCSV(c, logger, "general-ledger.csv", records)
		return
	}
	c.JSON(http.StatusOK, response)
}

// csvAmount renders an amount at full ledger precision.
func csvAmount(d decimal.Decimal) string {
	return d.StringFixed(domain.MoneyScale)
}

func wantsCSV(c *gin.Context) bool {
	return strings.EqualFold(c.Query("format"), formatCSV)
}

func summaryCode(s *dto.AccountSummaryResponse) string {
	if s == nil {
		return ""
	}
	return s.Code
}

// writeCSV streams records as an attachment.
func writeCSV(c *gin.Context, logger *slog.Logger, filename string, records [][]string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	if err := w.WriteAll(records); err != nil {
		logger.Error("Failed to write CSV report", slog.String("error", err.Error()))
	}
}
