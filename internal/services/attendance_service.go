package services

import (
	"context"
	"log"
	"strings"
	"time"

	"attendhq/internal/caching"
	"attendhq/internal/common"
	"attendhq/internal/models"
	"attendhq/internal/repositories"

	"github.com/google/uuid"
)

const (
	maxVisitorNameLen    = 100
	maxVisitorContactLen = 500

	// DefaultServiceType is used when the caller does not name the service.
	DefaultServiceType = "Saturday Fellowship"
)

type AttendanceService interface {
	Create(ctx context.Context, req *CreateAttendanceRequest) (*models.Service, error)
	GetByMonth(ctx context.Context, organizationID uuid.UUID, month, year int) ([]*models.Service, error)
	GetRecent(ctx context.Context, organizationID uuid.UUID, count int) ([]*models.Service, error)
	GetVisitors(ctx context.Context, organizationID, serviceID uuid.UUID) ([]*models.Visitor, error)
}

type attendanceService struct {
	attendanceRepo repositories.AttendanceRepository
	cacheService   caching.CacheService
}

func NewAttendanceService(attendanceRepo repositories.AttendanceRepository, cacheService caching.CacheService) AttendanceService {
	return &attendanceService{
		attendanceRepo: attendanceRepo,
		cacheService:   cacheService,
	}
}

type CreateAttendanceRequest struct {
	OrganizationID  uuid.UUID             `json:"organization_id"`
	ServiceDate     time.Time             `json:"service_date"`
	ServiceType     string                `json:"service_type"`
	TotalAttendance int                   `json:"total_attendance"`
	Visitors        []models.VisitorInput `json:"visitors"`
}

func (s *attendanceService) Create(ctx context.Context, req *CreateAttendanceRequest) (*models.Service, error) {
	if req.OrganizationID == uuid.Nil {
		return nil, common.NewValidationError("organization_id", "is required")
	}
	if req.ServiceDate.IsZero() {
		return nil, common.NewValidationError("service_date", "is required")
	}
	if err := common.ValidateTotalAttendance(req.TotalAttendance); err != nil {
		return nil, err
	}

	serviceType := strings.TrimSpace(req.ServiceType)
	if serviceType == "" {
		serviceType = DefaultServiceType
	}

	service := &models.Service{
		ID:              uuid.New(),
		OrganizationID:  req.OrganizationID,
		ServiceDate:     req.ServiceDate,
		ServiceType:     serviceType,
		TotalAttendance: req.TotalAttendance,
	}

	visitors := NormalizeVisitors(req.Visitors)
	if err := s.attendanceRepo.Create(ctx, service, visitors); err != nil {
		return nil, err
	}
	service.VisitorCount = len(visitors)

	// New records change every aggregate for this organization.
	if err := s.cacheService.InvalidateOrganization(ctx, req.OrganizationID); err != nil {
		log.Printf("cache invalidation failed for org %s: %v", req.OrganizationID.String(), err)
	}
	return service, nil
}

// NormalizeVisitors reduces raw visitor input to the two bounded fields the
// repository stores. Entries with neither a name nor a contact are dropped;
// overlong values are truncated, not rejected.
func NormalizeVisitors(in []models.VisitorInput) []models.VisitorInput {
	out := make([]models.VisitorInput, 0, len(in))
	for _, v := range in {
		name := strings.TrimSpace(v.Name)
		contact := strings.TrimSpace(v.Contact)
		if name == "" && contact == "" {
			continue
		}
		out = append(out, models.VisitorInput{
			Name:    common.TruncateRunes(name, maxVisitorNameLen),
			Contact: common.TruncateRunes(contact, maxVisitorContactLen),
		})
	}
	return out
}

func (s *attendanceService) GetByMonth(ctx context.Context, organizationID uuid.UUID, month, year int) ([]*models.Service, error) {
	if err := common.ValidateMonth(month); err != nil {
		return nil, err
	}
	if err := common.ValidateYear(year); err != nil {
		return nil, err
	}
	return s.attendanceRepo.GetByMonth(ctx, organizationID, month, year)
}

func (s *attendanceService) GetRecent(ctx context.Context, organizationID uuid.UUID, count int) ([]*models.Service, error) {
	if count <= 0 {
		count = 5
	}
	if count > 100 {
		count = 100
	}
	return s.attendanceRepo.GetRecent(ctx, organizationID, count)
}

func (s *attendanceService) GetVisitors(ctx context.Context, organizationID, serviceID uuid.UUID) ([]*models.Visitor, error) {
	return s.attendanceRepo.GetVisitors(ctx, organizationID, serviceID)
}
