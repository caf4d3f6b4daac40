package student

import (
	"time"

	"github.com/google/uuid"
)

// Student maps to the student table.
type Student struct {
	ID            uuid.UUID `db:"id" json:"id"`
	StudentNumber string    `db:"student_number" json:"student_number"`
	FirstName     string    `db:"first_name" json:"firstName"`
	LastName      string    `db:"last_name" json:"lastName"`
	DateOfBirth   time.Time `db:"date_of_birth" json:"dateOfBirth"`
	Grade         string    `db:"grade" json:"grade"`
	Notes         *string   `db:"notes" json:"notes,omitempty"`
	Active        bool      `db:"active" json:"isActive"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// EmergencyContact maps to the emergency_contact table. Contacts are ordered
// by Priority when the school needs to reach a guardian.
type EmergencyContact struct {
	ID           uuid.UUID `db:"id" json:"id"`
	StudentID    uuid.UUID `db:"student_id" json:"student_id"`
	Name         string    `db:"name" json:"name"`
	Relationship string    `db:"relationship" json:"relationship"`
	Phone        string    `db:"phone" json:"phone"`
	Priority     int       `db:"priority" json:"priority"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
