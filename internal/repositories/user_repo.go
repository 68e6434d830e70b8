package repositories

import (
	"context"

	"attendhq/internal/common"
	"attendhq/internal/models"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// GetOrganizationIDs returns the user's membership list in join order.
	GetOrganizationIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	TouchLastLogin(ctx context.Context, userID uuid.UUID) error
}

type userRepo struct {
	db Database
}

func NewUserRepo(db Database) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, full_name, status, created_at, last_login_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`, user.ID, user.Email, user.PasswordHash, user.FullName, user.Status)
	return common.ClassifyStoreError("insert user", err)
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRow(ctx, `
		SELECT id, email, password_hash, full_name, status, created_at, last_login_at
		FROM users
		WHERE id = $1
	`, id).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.FullName, &user.Status, &user.CreatedAt, &user.LastLoginAt)
	if err != nil {
		return nil, common.ClassifyStoreError("get user", err)
	}
	return user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRow(ctx, `
		SELECT id, email, password_hash, full_name, status, created_at, last_login_at
		FROM users
		WHERE email = $1
	`, email).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.FullName, &user.Status, &user.CreatedAt, &user.LastLoginAt)
	if err != nil {
		return nil, common.ClassifyStoreError("get user by email", err)
	}
	return user, nil
}

func (r *userRepo) GetOrganizationIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `
		SELECT organization_id FROM organization_members
		WHERE user_id = $1
		ORDER BY added_at ASC
	`, userID)
	if err != nil {
		return nil, common.ClassifyStoreError("query user organizations", err)
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, common.ClassifyStoreError("scan organization id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, common.ClassifyStoreError("query user organizations", err)
	}
	return ids, nil
}

func (r *userRepo) TouchLastLogin(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users SET last_login_at = NOW() WHERE id = $1
	`, userID)
	return common.ClassifyStoreError("touch last login", err)
}
