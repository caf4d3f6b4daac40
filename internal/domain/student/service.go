package student

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Service struct {
	students StudentRepository
	contacts ContactRepository
}

func NewService(students StudentRepository, contacts ContactRepository) *Service {
	return &Service{students: students, contacts: contacts}
}

func (s *Service) CreateStudent(ctx context.Context, st *Student) error {
	if strings.TrimSpace(st.FirstName) == "" || strings.TrimSpace(st.LastName) == "" {
		return fmt.Errorf("student name is required")
	}
	if st.DateOfBirth.IsZero() {
		return fmt.Errorf("date of birth is required")
	}
	st.Active = true
	return s.students.Create(ctx, st)
}

func (s *Service) GetStudent(ctx context.Context, id uuid.UUID) (*Student, error) {
	return s.students.GetByID(ctx, id)
}

func (s *Service) UpdateStudent(ctx context.Context, st *Student) error {
	if strings.TrimSpace(st.FirstName) == "" || strings.TrimSpace(st.LastName) == "" {
		return fmt.Errorf("student name is required")
	}
	return s.students.Update(ctx, st)
}

func (s *Service) DeleteStudent(ctx context.Context, id uuid.UUID) error {
	return s.students.Delete(ctx, id)
}

func (s *Service) ListStudents(ctx context.Context, query string, limit, offset int) ([]*Student, int, error) {
	if q := strings.TrimSpace(query); q != "" {
		return s.students.Search(ctx, q, limit, offset)
	}
	return s.students.List(ctx, limit, offset)
}

func (s *Service) AddContact(ctx context.Context, c *EmergencyContact) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("contact name is required")
	}
	if strings.TrimSpace(c.Phone) == "" {
		return fmt.Errorf("contact phone is required")
	}
	if c.Priority <= 0 {
		c.Priority = 1
	}
	// The student must exist; a contact without a student is unreachable.
	if _, err := s.students.GetByID(ctx, c.StudentID); err != nil {
		return err
	}
	return s.contacts.Create(ctx, c)
}

func (s *Service) ListContacts(ctx context.Context, studentID uuid.UUID) ([]*EmergencyContact, error) {
	return s.contacts.ListByStudent(ctx, studentID)
}

func (s *Service) RemoveContact(ctx context.Context, id uuid.UUID) error {
	return s.contacts.Delete(ctx, id)
}
