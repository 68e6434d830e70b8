package analytics

import (
	"context"
	"log"
	"math"
	"time"

	"attendhq/internal/caching"
	"attendhq/internal/models"
	"attendhq/internal/repositories"

	"github.com/google/uuid"
)

// cacheTTL bounds how stale a cached aggregate can get; writes also
// invalidate eagerly, so this is a backstop.
const cacheTTL = 10 * time.Minute

var monthNames = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// Service derives statistics from repository reads. Pure computation over
// retrieved records; nothing here persists anything except cache entries.
type Service struct {
	attendanceRepo repositories.AttendanceRepository
	cacheService   caching.CacheService
}

func NewService(attendanceRepo repositories.AttendanceRepository, cacheService caching.CacheService) *Service {
	return &Service{
		attendanceRepo: attendanceRepo,
		cacheService:   cacheService,
	}
}

// MonthlyStats computes totals and the rounded average for one month.
// Rounding uses math.Round (half away from zero); the average is a sum of
// positives so this matches round-half-up.
func (s *Service) MonthlyStats(ctx context.Context, organizationID uuid.UUID, month, year int) (*models.MonthlyStats, error) {
	if cached, err := s.cacheService.GetMonthlyStats(ctx, organizationID, month, year); err != nil {
		log.Printf("stats cache read failed for org %s: %v", organizationID.String(), err)
	} else if cached != nil {
		return cached, nil
	}

	services, err := s.attendanceRepo.GetByMonth(ctx, organizationID, month, year)
	if err != nil {
		return nil, err
	}

	stats := &models.MonthlyStats{TotalServices: len(services)}
	for _, svc := range services {
		stats.TotalAttendance += svc.TotalAttendance
		stats.TotalVisitors += svc.VisitorCount
	}
	if stats.TotalServices > 0 {
		stats.AvgAttendance = int(math.Round(float64(stats.TotalAttendance) / float64(stats.TotalServices)))
	}

	if err := s.cacheService.SetMonthlyStats(ctx, organizationID, month, year, stats, cacheTTL); err != nil {
		log.Printf("stats cache write failed for org %s: %v", organizationID.String(), err)
	}
	return stats, nil
}

// MonthlyTotalsByYear folds a full year of services into exactly 12 buckets,
// Jan..Dec, zero-filled for months without records.
func (s *Service) MonthlyTotalsByYear(ctx context.Context, organizationID uuid.UUID, year int) ([]models.MonthlyTotal, error) {
	services, err := s.attendanceRepo.GetByYear(ctx, organizationID, year)
	if err != nil {
		return nil, err
	}

	totals := make([]models.MonthlyTotal, 12)
	for i := range totals {
		totals[i] = models.MonthlyTotal{Month: i + 1, MonthName: monthNames[i]}
	}
	for _, svc := range services {
		idx := int(svc.ServiceDate.Month()) - 1
		totals[idx].TotalAttendance += svc.TotalAttendance
		totals[idx].ServiceCount++
	}
	return totals, nil
}

// CompareYears zips two years of monthly totals and computes per-month
// growth. A month that was zero and stayed zero is 0% growth; zero to any
// positive total is reported as +100%.
func (s *Service) CompareYears(ctx context.Context, organizationID uuid.UUID, currentYear, previousYear int) ([]models.YearComparison, error) {
	if cached, err := s.cacheService.GetYearComparison(ctx, organizationID, currentYear, previousYear); err != nil {
		log.Printf("comparison cache read failed for org %s: %v", organizationID.String(), err)
	} else if cached != nil {
		return cached, nil
	}

	current, err := s.MonthlyTotalsByYear(ctx, organizationID, currentYear)
	if err != nil {
		return nil, err
	}
	previous, err := s.MonthlyTotalsByYear(ctx, organizationID, previousYear)
	if err != nil {
		return nil, err
	}

	comparison := make([]models.YearComparison, 12)
	for i := range comparison {
		comparison[i] = models.YearComparison{
			Month:             current[i].MonthName,
			CurrentYearTotal:  current[i].TotalAttendance,
			PreviousYearTotal: previous[i].TotalAttendance,
			Growth:            growthPercent(current[i].TotalAttendance, previous[i].TotalAttendance),
		}
	}

	if err := s.cacheService.SetYearComparison(ctx, organizationID, currentYear, previousYear, comparison, cacheTTL); err != nil {
		log.Printf("comparison cache write failed for org %s: %v", organizationID.String(), err)
	}
	return comparison, nil
}

func growthPercent(current, previous int) int {
	if previous > 0 {
		return int(math.Round(float64(current-previous) / float64(previous) * 100))
	}
	if current > 0 {
		return 100
	}
	return 0
}
