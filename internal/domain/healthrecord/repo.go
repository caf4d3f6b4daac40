package healthrecord

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrRecordNotFound is returned by lookups that match no row.
var ErrRecordNotFound = errors.New("health record not found")

// RecordRepository defines the persistence interface for health records.
type RecordRepository interface {
	Create(ctx context.Context, r *HealthRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*HealthRecord, error)
	Update(ctx context.Context, r *HealthRecord) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByStudent(ctx context.Context, studentID uuid.UUID, recordType string, limit, offset int) ([]*HealthRecord, int, error)
}

// AllergyRepository defines the persistence interface for allergies.
type AllergyRepository interface {
	Create(ctx context.Context, a *Allergy) error
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*Allergy, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
