package handlers

import (
	"net/http"
	"strconv"
	"time"

	"attendhq/internal/analytics"
	"attendhq/internal/common"
	"attendhq/internal/services"

	"github.com/labstack/echo/v4"
)

type AnalyticsHandlers struct {
	analyticsSvc *analytics.Service
	reportSvc    services.ReportService
}

func NewAnalyticsHandlers(analyticsSvc *analytics.Service, reportSvc services.ReportService) *AnalyticsHandlers {
	return &AnalyticsHandlers{
		analyticsSvc: analyticsSvc,
		reportSvc:    reportSvc,
	}
}

// GetMonthlyStats returns totals and average attendance for one month.
// Defaults to the current month when no parameters are given.
func (h *AnalyticsHandlers) GetMonthlyStats(c echo.Context) error {
	ctx := c.Request().Context()

	orgID, ok := common.GetOrganizationIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	now := time.Now()
	month, year, err := monthYearParams(c, int(now.Month()), now.Year())
	if err != nil {
		return respondError(c, err)
	}

	stats, err := h.analyticsSvc.MonthlyStats(ctx, orgID, month, year)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// GetYearlyTotals returns twelve monthly buckets for one year, zero-filled
// for months without records.
func (h *AnalyticsHandlers) GetYearlyTotals(c echo.Context) error {
	ctx := c.Request().Context()

	orgID, ok := common.GetOrganizationIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	year := time.Now().Year()
	if yearStr := c.QueryParam("year"); yearStr != "" {
		parsed, err := strconv.Atoi(yearStr)
		if err != nil {
			return common.SendValidationError(c, "year", "must be a number")
		}
		year = parsed
	}
	if err := common.ValidateYear(year); err != nil {
		return respondError(c, err)
	}

	totals, err := h.analyticsSvc.MonthlyTotalsByYear(ctx, orgID, year)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, totals)
}

// CompareYears returns month-by-month growth between two years. Defaults to
// the current year against the previous one.
func (h *AnalyticsHandlers) CompareYears(c echo.Context) error {
	ctx := c.Request().Context()

	orgID, ok := common.GetOrganizationIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	currentYear := time.Now().Year()
	if yearStr := c.QueryParam("year"); yearStr != "" {
		parsed, err := strconv.Atoi(yearStr)
		if err != nil {
			return common.SendValidationError(c, "year", "must be a number")
		}
		currentYear = parsed
	}
	previousYear := currentYear - 1
	if yearStr := c.QueryParam("previous_year"); yearStr != "" {
		parsed, err := strconv.Atoi(yearStr)
		if err != nil {
			return common.SendValidationError(c, "previous_year", "must be a number")
		}
		previousYear = parsed
	}
	if err := common.ValidateYear(currentYear); err != nil {
		return respondError(c, err)
	}
	if err := common.ValidateYear(previousYear); err != nil {
		return respondError(c, err)
	}

	comparison, err := h.analyticsSvc.CompareYears(ctx, orgID, currentYear, previousYear)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, comparison)
}

type exportReportResponse struct {
	URL string `json:"url"`
}

// ExportMonthlyReport builds the month's workbook, stores it and returns a
// time-limited download link.
func (h *AnalyticsHandlers) ExportMonthlyReport(c echo.Context) error {
	ctx := c.Request().Context()

	orgID, ok := common.GetOrganizationIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	now := time.Now()
	month, year, err := monthYearParams(c, int(now.Month()), now.Year())
	if err != nil {
		return respondError(c, err)
	}

	url, err := h.reportSvc.GenerateMonthlyReport(ctx, orgID, month, year)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, exportReportResponse{URL: url})
}

// monthYearParams reads optional month and year query parameters, falling
// back to the supplied defaults, and validates the result.
func monthYearParams(c echo.Context, defaultMonth, defaultYear int) (int, int, error) {
	month, year := defaultMonth, defaultYear
	if monthStr := c.QueryParam("month"); monthStr != "" {
		parsed, err := strconv.Atoi(monthStr)
		if err != nil {
			return 0, 0, common.NewValidationError("month", "must be a number between 1 and 12")
		}
		month = parsed
	}
	if yearStr := c.QueryParam("year"); yearStr != "" {
		parsed, err := strconv.Atoi(yearStr)
		if err != nil {
			return 0, 0, common.NewValidationError("year", "must be a number")
		}
		year = parsed
	}
	if err := common.ValidateMonth(month); err != nil {
		return 0, 0, err
	}
	if err := common.ValidateYear(year); err != nil {
		return 0, 0, err
	}
	return month, year, nil
}
