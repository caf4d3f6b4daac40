package healthrecord

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var validTypes = map[string]bool{
	TypeVisit:        true,
	TypeScreening:    true,
	TypeImmunization: true,
	TypeIncident:     true,
}

var validSeverities = map[string]bool{
	"mild":     true,
	"moderate": true,
	"severe":   true,
}

type Service struct {
	records   RecordRepository
	allergies AllergyRepository
}

func NewService(records RecordRepository, allergies AllergyRepository) *Service {
	return &Service{records: records, allergies: allergies}
}

func (s *Service) CreateRecord(ctx context.Context, rec *HealthRecord) error {
	if rec.StudentID == uuid.Nil {
		return fmt.Errorf("student_id is required")
	}
	if !validTypes[rec.RecordType] {
		return fmt.Errorf("unknown record type %q", rec.RecordType)
	}
	if strings.TrimSpace(rec.Summary) == "" {
		return fmt.Errorf("summary is required")
	}
	if rec.RecordedBy == uuid.Nil {
		return fmt.Errorf("recorded_by is required")
	}
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now().UTC()
	}
	return s.records.Create(ctx, rec)
}

func (s *Service) GetRecord(ctx context.Context, id uuid.UUID) (*HealthRecord, error) {
	return s.records.GetByID(ctx, id)
}

// UpdateRecord edits summary/details/type. Who recorded it and when are
// fixed at creation.
func (s *Service) UpdateRecord(ctx context.Context, id uuid.UUID, recordType, summary string, details *string) (*HealthRecord, error) {
	rec, err := s.records.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if recordType != "" {
		if !validTypes[recordType] {
			return nil, fmt.Errorf("unknown record type %q", recordType)
		}
		rec.RecordType = recordType
	}
	if strings.TrimSpace(summary) != "" {
		rec.Summary = summary
	}
	if details != nil {
		rec.Details = details
	}
	if err := s.records.Update(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Service) DeleteRecord(ctx context.Context, id uuid.UUID) error {
	return s.records.Delete(ctx, id)
}

func (s *Service) ListRecords(ctx context.Context, studentID uuid.UUID, recordType string, limit, offset int) ([]*HealthRecord, int, error) {
	if recordType != "" && !validTypes[recordType] {
		return nil, 0, fmt.Errorf("unknown record type %q", recordType)
	}
	return s.records.ListByStudent(ctx, studentID, recordType, limit, offset)
}

func (s *Service) AddAllergy(ctx context.Context, a *Allergy) error {
	if a.StudentID == uuid.Nil {
		return fmt.Errorf("student_id is required")
	}
	if strings.TrimSpace(a.Allergen) == "" {
		return fmt.Errorf("allergen is required")
	}
	if !validSeverities[a.Severity] {
		return fmt.Errorf("severity must be mild, moderate, or severe")
	}
	return s.allergies.Create(ctx, a)
}

func (s *Service) ListAllergies(ctx context.Context, studentID uuid.UUID) ([]*Allergy, error) {
	return s.allergies.ListByStudent(ctx, studentID)
}

func (s *Service) RemoveAllergy(ctx context.Context, id uuid.UUID) error {
	return s.allergies.Delete(ctx, id)
}
