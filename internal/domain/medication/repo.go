package medication

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrMedicationNotFound is returned by lookups that match no row.
var ErrMedicationNotFound = errors.New("medication not found")

// MedicationRepository defines the persistence interface for medications.
type MedicationRepository interface {
	Create(ctx context.Context, m *Medication) error
	GetByID(ctx context.Context, id uuid.UUID) (*Medication, error)
	Update(ctx context.Context, m *Medication) error
	List(ctx context.Context, limit, offset int) ([]*Medication, int, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID, limit, offset int) ([]*Medication, int, error)
}

// AdministrationRepository is append-only by design: no update or delete.
type AdministrationRepository interface {
	Create(ctx context.Context, a *Administration) error
	ListByMedication(ctx context.Context, medicationID uuid.UUID, limit, offset int) ([]*Administration, int, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID, limit, offset int) ([]*Administration, int, error)
}
