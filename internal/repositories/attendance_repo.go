package repositories

import (
	"context"
	"time"

	"attendhq/internal/common"
	"attendhq/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// visitorBatchSize caps how many visitor rows go into one pgx batch. The
// chunking runs inside the record's transaction, so a failed chunk rolls the
// whole record back instead of leaving a service without its visitors.
const visitorBatchSize = 500

type AttendanceRepository interface {
	// Create inserts one service and its visitor children atomically. Returns
	// common.ErrDuplicateRecord when the organization already has a record on
	// the same calendar day; nothing is written in that case.
	Create(ctx context.Context, service *models.Service, visitors []models.VisitorInput) error
	GetByMonth(ctx context.Context, organizationID uuid.UUID, month, year int) ([]*models.Service, error)
	GetByYear(ctx context.Context, organizationID uuid.UUID, year int) ([]*models.Service, error)
	GetRecent(ctx context.Context, organizationID uuid.UUID, limit int) ([]*models.Service, error)
	// GetVisitors verifies the record belongs to organizationID before
	// returning its children, so record IDs cannot be used to enumerate
	// another tenant's visitors.
	GetVisitors(ctx context.Context, organizationID, serviceID uuid.UUID) ([]*models.Visitor, error)
	CountVisitors(ctx context.Context, serviceID uuid.UUID) (int, error)
}

type attendanceRepo struct {
	db Database
}

func NewAttendanceRepo(db Database) AttendanceRepository {
	return &attendanceRepo{db: db}
}

// serviceDay truncates a timestamp to its calendar day, which is the unit the
// uniqueness rule operates on.
func serviceDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (r *attendanceRepo) Create(ctx context.Context, service *models.Service, visitors []models.VisitorInput) error {
	day := serviceDay(service.ServiceDate)

	// Friendly pre-check. The unique index on (organization_id, service_day)
	// is what actually guarantees the invariant under concurrency; a losing
	// racer surfaces as ErrDuplicateRecord from the insert below.
	var existingID uuid.UUID
	err := r.db.QueryRow(ctx, `
		SELECT id FROM services
		WHERE organization_id = $1 AND service_day = $2
		LIMIT 1
	`, service.OrganizationID, day).Scan(&existingID)
	if err == nil {
		return common.ErrDuplicateRecord
	}
	if err != pgx.ErrNoRows {
		return common.ClassifyStoreError("check duplicate service", err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return common.ClassifyStoreError("begin create service", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO services (id, organization_id, service_date, service_day, service_type, total_attendance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`, service.ID, service.OrganizationID, service.ServiceDate, day, service.ServiceType, service.TotalAttendance)
	if err != nil {
		return common.ClassifyStoreError("insert service", err)
	}

	for start := 0; start < len(visitors); start += visitorBatchSize {
		end := start + visitorBatchSize
		if end > len(visitors) {
			end = len(visitors)
		}

		batch := &pgx.Batch{}
		for _, v := range visitors[start:end] {
			var name, contact *string
			if v.Name != "" {
				n := v.Name
				name = &n
			}
			if v.Contact != "" {
				c := v.Contact
				contact = &c
			}
			batch.Queue(`
				INSERT INTO visitors (id, service_id, visitor_name, visitor_contact, visit_date, created_at)
				VALUES ($1, $2, $3, $4, $5, NOW())
			`, uuid.New(), service.ID, name, contact, service.ServiceDate)
		}

		br := tx.SendBatch(ctx, batch)
		for i := start; i < end; i++ {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return common.ClassifyStoreError("insert visitors", err)
			}
		}
		if err := br.Close(); err != nil {
			return common.ClassifyStoreError("insert visitors", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return common.ClassifyStoreError("commit create service", err)
	}
	return nil
}

func (r *attendanceRepo) GetByMonth(ctx context.Context, organizationID uuid.UUID, month, year int) ([]*models.Service, error) {
	monthStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	services, err := r.queryRange(ctx, organizationID, monthStart, monthEnd, "DESC")
	if err != nil {
		return nil, err
	}

	// One count query per record. Record-per-month volumes are small, so the
	// extra round trips stay cheap.
	for _, svc := range services {
		count, err := r.CountVisitors(ctx, svc.ID)
		if err != nil {
			return nil, err
		}
		svc.VisitorCount = count
	}
	return services, nil
}

func (r *attendanceRepo) GetByYear(ctx context.Context, organizationID uuid.UUID, year int) ([]*models.Service, error) {
	yearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	yearEnd := yearStart.AddDate(1, 0, 0)
	return r.queryRange(ctx, organizationID, yearStart, yearEnd, "ASC")
}

func (r *attendanceRepo) queryRange(ctx context.Context, organizationID uuid.UUID, from, to time.Time, order string) ([]*models.Service, error) {
	query := `
		SELECT id, organization_id, service_date, service_type, total_attendance, created_at, updated_at
		FROM services
		WHERE organization_id = $1 AND service_date >= $2 AND service_date < $3
		ORDER BY service_date ` + order
	rows, err := r.db.Query(ctx, query, organizationID, from, to)
	if err != nil {
		return nil, common.ClassifyStoreError("query services", err)
	}
	defer rows.Close()

	services := []*models.Service{}
	for rows.Next() {
		svc := &models.Service{}
		if err := rows.Scan(&svc.ID, &svc.OrganizationID, &svc.ServiceDate, &svc.ServiceType, &svc.TotalAttendance, &svc.CreatedAt, &svc.UpdatedAt); err != nil {
			return nil, common.ClassifyStoreError("scan service", err)
		}
		services = append(services, svc)
	}
	if err := rows.Err(); err != nil {
		return nil, common.ClassifyStoreError("query services", err)
	}
	return services, nil
}

func (r *attendanceRepo) GetRecent(ctx context.Context, organizationID uuid.UUID, limit int) ([]*models.Service, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, organization_id, service_date, service_type, total_attendance, created_at, updated_at
		FROM services
		WHERE organization_id = $1
		ORDER BY service_date DESC
		LIMIT $2
	`, organizationID, limit)
	if err != nil {
		return nil, common.ClassifyStoreError("query recent services", err)
	}
	defer rows.Close()

	services := []*models.Service{}
	for rows.Next() {
		svc := &models.Service{}
		if err := rows.Scan(&svc.ID, &svc.OrganizationID, &svc.ServiceDate, &svc.ServiceType, &svc.TotalAttendance, &svc.CreatedAt, &svc.UpdatedAt); err != nil {
			return nil, common.ClassifyStoreError("scan service", err)
		}
		services = append(services, svc)
	}
	if err := rows.Err(); err != nil {
		return nil, common.ClassifyStoreError("query recent services", err)
	}

	for _, svc := range services {
		count, err := r.CountVisitors(ctx, svc.ID)
		if err != nil {
			return nil, err
		}
		svc.VisitorCount = count
	}
	return services, nil
}

func (r *attendanceRepo) GetVisitors(ctx context.Context, organizationID, serviceID uuid.UUID) ([]*models.Visitor, error) {
	var ownerID uuid.UUID
	err := r.db.QueryRow(ctx, `
		SELECT organization_id FROM services WHERE id = $1
	`, serviceID).Scan(&ownerID)
	if err != nil {
		return nil, common.ClassifyStoreError("lookup service owner", err)
	}
	// Report a mismatch as not-found so a guessed record ID leaks nothing.
	if ownerID != organizationID {
		return nil, common.ErrNotFound
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, service_id, visitor_name, visitor_contact, visit_date, created_at
		FROM visitors
		WHERE service_id = $1
		ORDER BY created_at ASC
	`, serviceID)
	if err != nil {
		return nil, common.ClassifyStoreError("query visitors", err)
	}
	defer rows.Close()

	visitors := []*models.Visitor{}
	for rows.Next() {
		v := &models.Visitor{}
		if err := rows.Scan(&v.ID, &v.ServiceID, &v.VisitorName, &v.VisitorContact, &v.VisitDate, &v.CreatedAt); err != nil {
			return nil, common.ClassifyStoreError("scan visitor", err)
		}
		visitors = append(visitors, v)
	}
	if err := rows.Err(); err != nil {
		return nil, common.ClassifyStoreError("query visitors", err)
	}
	return visitors, nil
}

func (r *attendanceRepo) CountVisitors(ctx context.Context, serviceID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM visitors WHERE service_id = $1
	`, serviceID).Scan(&count)
	if err != nil {
		return 0, common.ClassifyStoreError("count visitors", err)
	}
	return count, nil
}
