package medication

import (
	"time"

	"github.com/google/uuid"
)

// Medication maps to the medication table: a standing order for a student.
type Medication struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	StudentID    uuid.UUID  `db:"student_id" json:"student_id"`
	Name         string     `db:"name" json:"name"`
	Dosage       string     `db:"dosage" json:"dosage"`
	Frequency    string     `db:"frequency" json:"frequency"`
	Instructions *string    `db:"instructions" json:"instructions,omitempty"`
	PrescribedBy string     `db:"prescribed_by" json:"prescribed_by"`
	StartDate    time.Time  `db:"start_date" json:"start_date"`
	EndDate      *time.Time `db:"end_date" json:"end_date,omitempty"`
	Active       bool       `db:"active" json:"isActive"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Administration maps to the medication_administration table. Rows are
// append-only: the administration log is the record of what was actually
// given, so entries are never updated or deleted through the API.
type Administration struct {
	ID             uuid.UUID `db:"id" json:"id"`
	MedicationID   uuid.UUID `db:"medication_id" json:"medication_id"`
	StudentID      uuid.UUID `db:"student_id" json:"student_id"`
	AdministeredBy uuid.UUID `db:"administered_by" json:"administered_by"`
	AdministeredAt time.Time `db:"administered_at" json:"administered_at"`
	DosageGiven    string    `db:"dosage_given" json:"dosage_given"`
	Notes          *string   `db:"notes" json:"notes,omitempty"`
}
