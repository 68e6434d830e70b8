package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"attendhq/internal/analytics"
	"attendhq/internal/repositories"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportService builds monthly attendance workbooks and stores them in
// object storage, returning a time-limited download link.
type ReportService interface {
	GenerateMonthlyReport(ctx context.Context, organizationID uuid.UUID, month, year int) (string, error)
}

type reportService struct {
	attendanceRepo repositories.AttendanceRepository
	analyticsSvc   *analytics.Service
	minioSvc       MinioService
	bucket         string
}

func NewReportService(attendanceRepo repositories.AttendanceRepository, analyticsSvc *analytics.Service, minioSvc MinioService, bucket string) ReportService {
	return &reportService{
		attendanceRepo: attendanceRepo,
		analyticsSvc:   analyticsSvc,
		minioSvc:       minioSvc,
		bucket:         bucket,
	}
}

func (s *reportService) GenerateMonthlyReport(ctx context.Context, organizationID uuid.UUID, month, year int) (string, error) {
	services, err := s.attendanceRepo.GetByMonth(ctx, organizationID, month, year)
	if err != nil {
		return "", err
	}
	stats, err := s.analyticsSvc.MonthlyStats(ctx, organizationID, month, year)
	if err != nil {
		return "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Attendance"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return "", err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Date", "Service Type", "Total Attendance", "Visitors"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, svc := range services {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), svc.ServiceDate.Format("2006-01-02"))
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), svc.ServiceType)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), svc.TotalAttendance)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), svc.VisitorCount)
		row++
	}

	// Summary block below the listing.
	row++
	f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Services")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", row), stats.TotalServices)
	row++
	f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Total attendance")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", row), stats.TotalAttendance)
	row++
	f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Total visitors")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", row), stats.TotalVisitors)
	row++
	f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Average attendance")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", row), stats.AvgAttendance)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return "", fmt.Errorf("failed to render report workbook: %w", err)
	}

	if err := s.minioSvc.EnsureBucketExists(ctx, s.bucket); err != nil {
		return "", fmt.Errorf("failed to ensure report bucket: %w", err)
	}

	objectName := fmt.Sprintf("%s/%d-%02d.xlsx", organizationID.String(), year, month)
	if err := s.minioSvc.UploadObject(ctx, s.bucket, objectName, &buf, int64(buf.Len()), xlsxContentType); err != nil {
		return "", fmt.Errorf("failed to upload report: %w", err)
	}

	return s.minioSvc.GetPresignedURL(ctx, s.bucket, objectName, 24*time.Hour)
}
