package repositories

import (
	"context"

	"attendhq/internal/common"
	"attendhq/internal/models"

	"github.com/google/uuid"
)

type OrganizationRepository interface {
	Create(ctx context.Context, org *models.Organization) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error)
	Update(ctx context.Context, org *models.Organization) error
	List(ctx context.Context, limit, offset int) ([]*models.Organization, error)
	// AddMember adds a user to the organization's membership set. Union
	// semantics: adding an existing member is a no-op, never an error.
	AddMember(ctx context.Context, organizationID, userID uuid.UUID) error
	IsMember(ctx context.Context, organizationID, userID uuid.UUID) (bool, error)
}

type organizationRepo struct {
	db Database
}

func NewOrganizationRepo(db Database) OrganizationRepository {
	return &organizationRepo{db: db}
}

func (r *organizationRepo) Create(ctx context.Context, org *models.Organization) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO organizations (id, name, org_type, country, phone, owner_id, currency, timezone, estimated_attendance, how_did_you_hear, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
	`, org.ID, org.Name, org.Type, org.Country, org.Phone, org.OwnerID, org.Currency, org.Timezone, org.EstimatedAttendance, org.HowDidYouHear)
	return common.ClassifyStoreError("insert organization", err)
}

func (r *organizationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	org := &models.Organization{}
	err := r.db.QueryRow(ctx, `
		SELECT id, name, org_type, country, phone, owner_id, currency, timezone, estimated_attendance, how_did_you_hear, created_at, updated_at
		FROM organizations
		WHERE id = $1
	`, id).Scan(&org.ID, &org.Name, &org.Type, &org.Country, &org.Phone, &org.OwnerID, &org.Currency, &org.Timezone, &org.EstimatedAttendance, &org.HowDidYouHear, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		return nil, common.ClassifyStoreError("get organization", err)
	}
	return org, nil
}

func (r *organizationRepo) Update(ctx context.Context, org *models.Organization) error {
	_, err := r.db.Exec(ctx, `
		UPDATE organizations
		SET name = $1, org_type = $2, country = $3, phone = $4, currency = $5, timezone = $6, updated_at = NOW()
		WHERE id = $7
	`, org.Name, org.Type, org.Country, org.Phone, org.Currency, org.Timezone, org.ID)
	return common.ClassifyStoreError("update organization", err)
}

func (r *organizationRepo) List(ctx context.Context, limit, offset int) ([]*models.Organization, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, org_type, country, phone, owner_id, currency, timezone, estimated_attendance, how_did_you_hear, created_at, updated_at
		FROM organizations
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, common.ClassifyStoreError("list organizations", err)
	}
	defer rows.Close()

	orgs := []*models.Organization{}
	for rows.Next() {
		org := &models.Organization{}
		if err := rows.Scan(&org.ID, &org.Name, &org.Type, &org.Country, &org.Phone, &org.OwnerID, &org.Currency, &org.Timezone, &org.EstimatedAttendance, &org.HowDidYouHear, &org.CreatedAt, &org.UpdatedAt); err != nil {
			return nil, common.ClassifyStoreError("scan organization", err)
		}
		orgs = append(orgs, org)
	}
	if err := rows.Err(); err != nil {
		return nil, common.ClassifyStoreError("list organizations", err)
	}
	return orgs, nil
}

func (r *organizationRepo) AddMember(ctx context.Context, organizationID, userID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO organization_members (organization_id, user_id, added_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (organization_id, user_id) DO NOTHING
	`, organizationID, userID)
	return common.ClassifyStoreError("add organization member", err)
}

func (r *organizationRepo) IsMember(ctx context.Context, organizationID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM organization_members
			WHERE organization_id = $1 AND user_id = $2
		)
	`, organizationID, userID).Scan(&exists)
	if err != nil {
		return false, common.ClassifyStoreError("check organization member", err)
	}
	return exists, nil
}
