package models

import (
	"time"

	"github.com/google/uuid"
)

// Organization is a tenant. Every attendance record is partitioned by its ID;
// Currency and Timezone are derived from Country at signup and only change
// through an explicit update.
type Organization struct {
	ID                  uuid.UUID `json:"id" db:"id"`
	Name                string    `json:"name" db:"name"`
	Type                string    `json:"type" db:"org_type"`
	Country             string    `json:"country" db:"country"`
	Phone               string    `json:"phone" db:"phone"`
	OwnerID             uuid.UUID `json:"owner_id" db:"owner_id"`
	Currency            string    `json:"currency" db:"currency"`
	Timezone            string    `json:"timezone" db:"timezone"`
	EstimatedAttendance *string   `json:"estimated_attendance,omitempty" db:"estimated_attendance"`
	HowDidYouHear       *string   `json:"how_did_you_hear,omitempty" db:"how_did_you_hear"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}
