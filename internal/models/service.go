package models

import (
	"time"

	"github.com/google/uuid"
)

// Service is one dated attendance record for an organization. OrganizationID
// is immutable after creation and is the sole isolation key. At most one
// service may exist per organization per calendar day of ServiceDate.
type Service struct {
	ID              uuid.UUID `json:"id" db:"id"`
	OrganizationID  uuid.UUID `json:"organization_id" db:"organization_id"`
	ServiceDate     time.Time `json:"service_date" db:"service_date"`
	ServiceType     string    `json:"service_type" db:"service_type"`
	TotalAttendance int       `json:"total_attendance" db:"total_attendance"`
	VisitorCount    int       `json:"visitor_count" db:"-"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// Visitor is a child record of a Service with no independent lifetime.
type Visitor struct {
	ID             uuid.UUID `json:"id" db:"id"`
	ServiceID      uuid.UUID `json:"service_id" db:"service_id"`
	VisitorName    *string   `json:"visitor_name" db:"visitor_name"`
	VisitorContact *string   `json:"visitor_contact" db:"visitor_contact"`
	VisitDate      time.Time `json:"visit_date" db:"visit_date"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// VisitorInput is the two-field shape visitors must be reduced to before they
// reach the repository. Contact may hold several source columns joined into
// one bounded string.
type VisitorInput struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
}
