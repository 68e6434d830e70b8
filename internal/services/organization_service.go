package services

import (
	"context"
	"errors"
	"strings"

	"attendhq/internal/common"
	"attendhq/internal/models"
	"attendhq/internal/repositories"

	"github.com/google/uuid"
)

type OrganizationService interface {
	Create(ctx context.Context, req *CreateOrganizationRequest) (*models.Organization, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error)
	Update(ctx context.Context, req *UpdateOrganizationRequest) error
	// GetUserOrganizations returns the organizations the user belongs to.
	// Membership entries that no longer resolve are skipped, not failed on;
	// an empty slice routes the caller to the create-organization flow.
	GetUserOrganizations(ctx context.Context, userID uuid.UUID) ([]*models.Organization, error)
	// EnsureUserOrgAccess idempotently adds the organization to the user's
	// membership set and refreshes their last login timestamp.
	EnsureUserOrgAccess(ctx context.Context, userID, organizationID uuid.UUID) error
}

type organizationService struct {
	orgRepo  repositories.OrganizationRepository
	userRepo repositories.UserRepository
}

func NewOrganizationService(orgRepo repositories.OrganizationRepository, userRepo repositories.UserRepository) OrganizationService {
	return &organizationService{orgRepo: orgRepo, userRepo: userRepo}
}

type CreateOrganizationRequest struct {
	Name                string  `json:"name" validate:"required"`
	Type                string  `json:"type" validate:"required"`
	Country             string  `json:"country" validate:"required"`
	Phone               string  `json:"phone"`
	OwnerID             uuid.UUID
	EstimatedAttendance *string `json:"estimated_attendance"`
	HowDidYouHear       *string `json:"how_did_you_hear"`
}

type UpdateOrganizationRequest struct {
	ID       uuid.UUID
	Name     string `json:"name" validate:"required"`
	Type     string `json:"type" validate:"required"`
	Country  string `json:"country" validate:"required"`
	Phone    string `json:"phone"`
	Currency string `json:"currency"`
	Timezone string `json:"timezone"`
}

var countryTimezones = map[string]string{
	"Kenya":          "Africa/Nairobi",
	"Uganda":         "Africa/Kampala",
	"Tanzania":       "Africa/Dar_es_Salaam",
	"United States":  "America/New_York",
	"United Kingdom": "Europe/London",
}

// deriveSettings picks the currency and timezone for a new organization from
// its country. Derived once at creation; changed only by an explicit update.
func deriveSettings(country string) (currency, timezone string) {
	currency = "USD"
	if country == "Kenya" {
		currency = "KES"
	}
	timezone = countryTimezones[country]
	if timezone == "" {
		timezone = "UTC"
	}
	return currency, timezone
}

func (s *organizationService) Create(ctx context.Context, req *CreateOrganizationRequest) (*models.Organization, error) {
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return nil, err
	}
	if err := common.ValidateRequiredString(req.Country, "country"); err != nil {
		return nil, err
	}
	if req.OwnerID == uuid.Nil {
		return nil, common.NewValidationError("owner_id", "is required")
	}

	currency, timezone := deriveSettings(req.Country)
	org := &models.Organization{
		ID:                  uuid.New(),
		Name:                strings.TrimSpace(req.Name),
		Type:                req.Type,
		Country:             req.Country,
		Phone:               req.Phone,
		OwnerID:             req.OwnerID,
		Currency:            currency,
		Timezone:            timezone,
		EstimatedAttendance: req.EstimatedAttendance,
		HowDidYouHear:       req.HowDidYouHear,
	}

	if err := s.orgRepo.Create(ctx, org); err != nil {
		return nil, err
	}
	if err := s.orgRepo.AddMember(ctx, org.ID, req.OwnerID); err != nil {
		return nil, err
	}
	return org, nil
}

func (s *organizationService) GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	return s.orgRepo.GetByID(ctx, id)
}

func (s *organizationService) Update(ctx context.Context, req *UpdateOrganizationRequest) error {
	existing, err := s.orgRepo.GetByID(ctx, req.ID)
	if err != nil {
		return err
	}

	existing.Name = req.Name
	existing.Type = req.Type
	existing.Country = req.Country
	existing.Phone = req.Phone
	if req.Currency != "" {
		existing.Currency = req.Currency
	}
	if req.Timezone != "" {
		existing.Timezone = req.Timezone
	}

	return s.orgRepo.Update(ctx, existing)
}

func (s *organizationService) GetUserOrganizations(ctx context.Context, userID uuid.UUID) ([]*models.Organization, error) {
	ids, err := s.userRepo.GetOrganizationIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	orgs := []*models.Organization{}
	for _, id := range ids {
		org, err := s.orgRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				continue
			}
			return nil, err
		}
		orgs = append(orgs, org)
	}
	return orgs, nil
}

func (s *organizationService) EnsureUserOrgAccess(ctx context.Context, userID, organizationID uuid.UUID) error {
	if err := s.orgRepo.AddMember(ctx, organizationID, userID); err != nil {
		return err
	}
	return s.userRepo.TouchLastLogin(ctx, userID)
}
