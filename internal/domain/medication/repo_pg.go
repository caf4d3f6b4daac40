package medication

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type medicationRepoPG struct {
	pool *pgxpool.Pool
}

func NewMedicationRepo(pool *pgxpool.Pool) MedicationRepository {
	return &medicationRepoPG{pool: pool}
}

const medColumns = `id, student_id, name, dosage, frequency, instructions, prescribed_by, start_date, end_date, active, created_at, updated_at`

func (r *medicationRepoPG) Create(ctx context.Context, m *Medication) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO medication (id, student_id, name, dosage, frequency, instructions, prescribed_by, start_date, end_date, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		m.ID, m.StudentID, m.Name, m.Dosage, m.Frequency, m.Instructions,
		m.PrescribedBy, m.StartDate, m.EndDate, m.Active,
	)
	return err
}

func (r *medicationRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Medication, error) {
	m, err := scanMedication(r.pool.QueryRow(ctx, `SELECT `+medColumns+` FROM medication WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMedicationNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *medicationRepoPG) Update(ctx context.Context, m *Medication) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE medication SET
			name = $2, dosage = $3, frequency = $4, instructions = $5,
			prescribed_by = $6, start_date = $7, end_date = $8, active = $9, updated_at = NOW()
		WHERE id = $1`,
		m.ID, m.Name, m.Dosage, m.Frequency, m.Instructions,
		m.PrescribedBy, m.StartDate, m.EndDate, m.Active,
	)
	return err
}

func (r *medicationRepoPG) List(ctx context.Context, limit, offset int) ([]*Medication, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM medication`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+medColumns+` FROM medication ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectMedications(rows, total)
}

func (r *medicationRepoPG) ListByStudent(ctx context.Context, studentID uuid.UUID, limit, offset int) ([]*Medication, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM medication WHERE student_id = $1`, studentID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+medColumns+` FROM medication WHERE student_id = $1 ORDER BY name LIMIT $2 OFFSET $3`, studentID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectMedications(rows, total)
}

func scanMedication(row pgx.Row) (*Medication, error) {
	var m Medication
	if err := row.Scan(
		&m.ID, &m.StudentID, &m.Name, &m.Dosage, &m.Frequency, &m.Instructions,
		&m.PrescribedBy, &m.StartDate, &m.EndDate, &m.Active, &m.CreatedAt, &m.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &m, nil
}

func collectMedications(rows pgx.Rows, total int) ([]*Medication, int, error) {
	var meds []*Medication
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, 0, err
		}
		meds = append(meds, m)
	}
	return meds, total, rows.Err()
}

type administrationRepoPG struct {
	pool *pgxpool.Pool
}

func NewAdministrationRepo(pool *pgxpool.Pool) AdministrationRepository {
	return &administrationRepoPG{pool: pool}
}

const adminColumns = `id, medication_id, student_id, administered_by, administered_at, dosage_given, notes`

func (r *administrationRepoPG) Create(ctx context.Context, a *Administration) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO medication_administration (id, medication_id, student_id, administered_by, administered_at, dosage_given, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.MedicationID, a.StudentID, a.AdministeredBy, a.AdministeredAt, a.DosageGiven, a.Notes,
	)
	return err
}

func (r *administrationRepoPG) ListByMedication(ctx context.Context, medicationID uuid.UUID, limit, offset int) ([]*Administration, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM medication_administration WHERE medication_id = $1`, medicationID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+adminColumns+` FROM medication_administration WHERE medication_id = $1 ORDER BY administered_at DESC LIMIT $2 OFFSET $3`, medicationID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectAdministrations(rows, total)
}

func (r *administrationRepoPG) ListByStudent(ctx context.Context, studentID uuid.UUID, limit, offset int) ([]*Administration, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM medication_administration WHERE student_id = $1`, studentID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+adminColumns+` FROM medication_administration WHERE student_id = $1 ORDER BY administered_at DESC LIMIT $2 OFFSET $3`, studentID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectAdministrations(rows, total)
}

func collectAdministrations(rows pgx.Rows, total int) ([]*Administration, int, error) {
	var entries []*Administration
	for rows.Next() {
		var a Administration
		if err := rows.Scan(&a.ID, &a.MedicationID, &a.StudentID, &a.AdministeredBy, &a.AdministeredAt, &a.DosageGiven, &a.Notes); err != nil {
			return nil, 0, err
		}
		entries = append(entries, &a)
	}
	return entries, total, rows.Err()
}
