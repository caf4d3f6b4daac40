package student

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrStudentNotFound is returned by lookups that match no row.
var ErrStudentNotFound = errors.New("student not found")

// StudentRepository defines the persistence interface for students.
type StudentRepository interface {
	Create(ctx context.Context, s *Student) error
	GetByID(ctx context.Context, id uuid.UUID) (*Student, error)
	Update(ctx context.Context, s *Student) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Student, int, error)
	Search(ctx context.Context, query string, limit, offset int) ([]*Student, int, error)
}

// ContactRepository defines the persistence interface for emergency contacts.
type ContactRepository interface {
	Create(ctx context.Context, c *EmergencyContact) error
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*EmergencyContact, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
