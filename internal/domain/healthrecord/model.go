package healthrecord

import (
	"time"

	"github.com/google/uuid"
)

// Record types accepted by the API.
const (
	TypeVisit        = "visit"
	TypeScreening    = "screening"
	TypeImmunization = "immunization"
	TypeIncident     = "incident"
)

// HealthRecord maps to the health_record table.
type HealthRecord struct {
	ID         uuid.UUID `db:"id" json:"id"`
	StudentID  uuid.UUID `db:"student_id" json:"student_id"`
	RecordType string    `db:"record_type" json:"record_type"`
	Summary    string    `db:"summary" json:"summary"`
	Details    *string   `db:"details" json:"details,omitempty"`
	RecordedBy uuid.UUID `db:"recorded_by" json:"recorded_by"`
	RecordedAt time.Time `db:"recorded_at" json:"recorded_at"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// Allergy maps to the allergy table.
type Allergy struct {
	ID        uuid.UUID `db:"id" json:"id"`
	StudentID uuid.UUID `db:"student_id" json:"student_id"`
	Allergen  string    `db:"allergen" json:"allergen"`
	Severity  string    `db:"severity" json:"severity"`
	Reaction  *string   `db:"reaction" json:"reaction,omitempty"`
	Notes     *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
