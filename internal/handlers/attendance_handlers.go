package handlers

import (
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"attendhq/internal/common"
	"attendhq/internal/ingest"
	"attendhq/internal/models"
	"attendhq/internal/services"

	"github.com/labstack/echo/v4"
)

type AttendanceHandlers struct {
	attendanceService services.AttendanceService
}

func NewAttendanceHandlers(attendanceService services.AttendanceService) *AttendanceHandlers {
	return &AttendanceHandlers{attendanceService: attendanceService}
}

type createAttendanceBody struct {
	ServiceDate     time.Time             `json:"service_date"`
	ServiceType     string                `json:"service_type"`
	TotalAttendance int                   `json:"total_attendance"`
	Visitors        []models.VisitorInput `json:"visitors"`
}

// CreateAttendance records one service for the organization in the route.
// One record per organization per calendar day; a second submission for the
// same day returns 409.
func (h *AttendanceHandlers) CreateAttendance(c echo.Context) error {
	ctx := c.Request().Context()

	orgID, ok := common.GetOrganizationIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var body createAttendanceBody
	if err := c.Bind(&body); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	service, err := h.attendanceService.Create(ctx, &services.CreateAttendanceRequest{
		OrganizationID:  orgID,
		ServiceDate:     body.ServiceDate,
		ServiceType:     body.ServiceType,
		TotalAttendance: body.TotalAttendance,
		Visitors:        body.Visitors,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, service)
}

// GetAttendanceByMonth lists the organization's records for one month,
// newest first.
func (h *AttendanceHandlers) GetAttendanceByMonth(c echo.Context) error {
	ctx := c.Request().Context()

	orgID, ok := common.GetOrganizationIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	month, err := strconv.Atoi(c.QueryParam("month"))
	if err != nil {
		return common.SendValidationError(c, "month", "must be a number between 1 and 12")
	}
	year, err := strconv.Atoi(c.QueryParam("year"))
	if err != nil {
		return common.SendValidationError(c, "year", "must be a number")
	}

	records, err := h.attendanceService.GetByMonth(ctx, orgID, month, year)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, records)
}

// GetRecentAttendance lists the organization's latest records.
func (h *AttendanceHandlers) GetRecentAttendance(c echo.Context) error {
	ctx := c.Request().Context()

	orgID, ok := common.GetOrganizationIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	count := 5
	if countStr := c.QueryParam("count"); countStr != "" {
		parsed, err := strconv.Atoi(countStr)
		if err != nil {
			return common.SendValidationError(c, "count", "must be a number")
		}
		count = parsed
	}

	records, err := h.attendanceService.GetRecent(ctx, orgID, count)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, records)
}

// GetVisitors lists the visitors attached to one attendance record. The
// record must belong to the organization in the route.
func (h *AttendanceHandlers) GetVisitors(c echo.Context) error {
	ctx := c.Request().Context()

	orgID, ok := common.GetOrganizationIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	serviceID, err := common.ValidateUUID(c.Param("serviceID"), "serviceID")
	if err != nil {
		return common.SendValidationError(c, "serviceID", "has invalid UUID format")
	}

	visitors, err := h.attendanceService.GetVisitors(ctx, orgID, serviceID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, visitors)
}

type importVisitorsResponse struct {
	Visitors []models.VisitorInput `json:"visitors"`
	Count    int                   `json:"count"`
}

// ImportVisitors parses an uploaded visitor spreadsheet and returns the
// normalized rows for the client to attach to a create request. Nothing is
// persisted here.
func (h *AttendanceHandlers) ImportVisitors(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return common.SendClientError(c, "A file upload named 'file' is required")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return common.SendServerError(c, "Failed to read uploaded file")
	}
	defer src.Close()

	var visitors []models.VisitorInput
	switch strings.ToLower(filepath.Ext(fileHeader.Filename)) {
	case ".xlsx":
		visitors, err = ingest.FromXLSX(src)
	case ".csv":
		visitors, err = ingest.FromCSV(src)
	default:
		return common.SendValidationError(c, "file", "must be a .xlsx or .csv file")
	}
	if err != nil {
		if err == ingest.ErrTooManyRows {
			return common.SendValidationError(c, "file", err.Error())
		}
		return common.SendClientError(c, "Failed to parse uploaded file: "+err.Error())
	}

	visitors = services.NormalizeVisitors(visitors)
	return c.JSON(http.StatusOK, importVisitorsResponse{Visitors: visitors, Count: len(visitors)})
}
