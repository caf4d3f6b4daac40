package medication

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	meds   MedicationRepository
	admins AdministrationRepository
}

func NewService(meds MedicationRepository, admins AdministrationRepository) *Service {
	return &Service{meds: meds, admins: admins}
}

func (s *Service) CreateMedication(ctx context.Context, m *Medication) error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("medication name is required")
	}
	if strings.TrimSpace(m.Dosage) == "" {
		return fmt.Errorf("dosage is required")
	}
	if m.StudentID == uuid.Nil {
		return fmt.Errorf("student_id is required")
	}
	if m.StartDate.IsZero() {
		m.StartDate = time.Now().UTC()
	}
	m.Active = true
	return s.meds.Create(ctx, m)
}

func (s *Service) GetMedication(ctx context.Context, id uuid.UUID) (*Medication, error) {
	return s.meds.GetByID(ctx, id)
}

func (s *Service) UpdateMedication(ctx context.Context, m *Medication) error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("medication name is required")
	}
	return s.meds.Update(ctx, m)
}

// Discontinue marks a medication inactive and records the end date. The row
// is kept: past administrations still reference it.
func (s *Service) Discontinue(ctx context.Context, id uuid.UUID) (*Medication, error) {
	m, err := s.meds.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	m.Active = false
	m.EndDate = &now
	if err := s.meds.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) ListMedications(ctx context.Context, studentID uuid.UUID, limit, offset int) ([]*Medication, int, error) {
	if studentID != uuid.Nil {
		return s.meds.ListByStudent(ctx, studentID, limit, offset)
	}
	return s.meds.List(ctx, limit, offset)
}

// RecordAdministration appends to the administration log. The medication
// must exist and be active: nothing can be recorded against a discontinued
// order.
func (s *Service) RecordAdministration(ctx context.Context, a *Administration) error {
	if a.AdministeredBy == uuid.Nil {
		return fmt.Errorf("administered_by is required")
	}
	m, err := s.meds.GetByID(ctx, a.MedicationID)
	if err != nil {
		return err
	}
	if !m.Active {
		return fmt.Errorf("medication is discontinued")
	}

	a.StudentID = m.StudentID
	if a.AdministeredAt.IsZero() {
		a.AdministeredAt = time.Now().UTC()
	}
	if strings.TrimSpace(a.DosageGiven) == "" {
		a.DosageGiven = m.Dosage
	}
	return s.admins.Create(ctx, a)
}

func (s *Service) ListAdministrations(ctx context.Context, medicationID uuid.UUID, limit, offset int) ([]*Administration, int, error) {
	return s.admins.ListByMedication(ctx, medicationID, limit, offset)
}

func (s *Service) ListStudentAdministrations(ctx context.Context, studentID uuid.UUID, limit, offset int) ([]*Administration, int, error) {
	return s.admins.ListByStudent(ctx, studentID, limit, offset)
}
