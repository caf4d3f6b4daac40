package integration

import (
	"context"
	"testing"
	"time"

	"github.com/whitecross/server/internal/domain/medication"
	"github.com/whitecross/server/internal/domain/student"
)

func TestMedicationOrderAndAdministrationLog(t *testing.T) {
	ctx := context.Background()
	truncate(t, ctx, "medication_administration", "medication", "emergency_contact", "student", "session", "app_user")

	studentSvc := student.NewService(student.NewStudentRepo(globalDB.Pool), student.NewContactRepo(globalDB.Pool))
	medSvc := medication.NewService(medication.NewMedicationRepo(globalDB.Pool), medication.NewAdministrationRepo(globalDB.Pool))

	st := seedStudent(t, ctx, studentSvc, "WC-4001", "Priya", "Nair")
	nurseID := seedStaffUser(t, ctx, "nurse-med@school.example")

	med := &medication.Medication{
		StudentID:    st.ID,
		Name:         "Albuterol inhaler",
		Dosage:       "2 puffs",
		Frequency:    "as needed",
		PrescribedBy: "Dr. Okafor",
	}
	if err := medSvc.CreateMedication(ctx, med); err != nil {
		t.Fatalf("CreateMedication: %v", err)
	}
	if !med.Active {
		t.Error("new order should be active")
	}

	for i := 0; i < 2; i++ {
		admin := &medication.Administration{
			MedicationID:   med.ID,
			AdministeredBy: nurseID,
			AdministeredAt: time.Now().UTC().Add(time.Duration(-i) * time.Hour),
		}
		if err := medSvc.RecordAdministration(ctx, admin); err != nil {
			t.Fatalf("RecordAdministration: %v", err)
		}
		if admin.StudentID != st.ID {
			t.Error("administration should inherit the order's student")
		}
		if admin.DosageGiven != "2 puffs" {
			t.Errorf("dosage_given = %q, want order dosage", admin.DosageGiven)
		}
	}

	log, total, err := medSvc.ListAdministrations(ctx, med.ID, 20, 0)
	if err != nil {
		t.Fatalf("ListAdministrations: %v", err)
	}
	if total != 2 || len(log) != 2 {
		t.Fatalf("expected 2 log entries, got %d (total %d)", len(log), total)
	}
	if log[0].AdministeredAt.Before(log[1].AdministeredAt) {
		t.Error("log should be ordered most recent first")
	}

	byStudent, total, err := medSvc.ListStudentAdministrations(ctx, st.ID, 20, 0)
	if err != nil {
		t.Fatalf("ListStudentAdministrations: %v", err)
	}
	if total != 2 || len(byStudent) != 2 {
		t.Errorf("expected 2 entries for student, got %d (total %d)", len(byStudent), total)
	}
}

func TestDiscontinuedMedicationRejectsAdministration(t *testing.T) {
	ctx := context.Background()
	truncate(t, ctx, "medication_administration", "medication", "emergency_contact", "student", "session", "app_user")

	studentSvc := student.NewService(student.NewStudentRepo(globalDB.Pool), student.NewContactRepo(globalDB.Pool))
	medSvc := medication.NewService(medication.NewMedicationRepo(globalDB.Pool), medication.NewAdministrationRepo(globalDB.Pool))

	st := seedStudent(t, ctx, studentSvc, "WC-4002", "Omar", "Hassan")
	nurseID := seedStaffUser(t, ctx, "nurse-disc@school.example")

	med := &medication.Medication{
		StudentID:    st.ID,
		Name:         "Methylphenidate",
		Dosage:       "10mg",
		Frequency:    "daily at noon",
		PrescribedBy: "Dr. Webb",
	}
	if err := medSvc.CreateMedication(ctx, med); err != nil {
		t.Fatalf("CreateMedication: %v", err)
	}

	stopped, err := medSvc.Discontinue(ctx, med.ID)
	if err != nil {
		t.Fatalf("Discontinue: %v", err)
	}
	if stopped.Active || stopped.EndDate == nil {
		t.Error("discontinued order should be inactive with an end date")
	}

	err = medSvc.RecordAdministration(ctx, &medication.Administration{
		MedicationID:   med.ID,
		AdministeredBy: nurseID,
	})
	if err == nil {
		t.Fatal("administration against a discontinued order must be rejected")
	}

	// The order itself stays on record.
	if _, err := medSvc.GetMedication(ctx, med.ID); err != nil {
		t.Errorf("discontinued order should remain readable: %v", err)
	}
}
