package healthrecord

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type recordRepoPG struct {
	pool *pgxpool.Pool
}

func NewRecordRepo(pool *pgxpool.Pool) RecordRepository {
	return &recordRepoPG{pool: pool}
}

const recordColumns = `id, student_id, record_type, summary, details, recorded_by, recorded_at, created_at, updated_at`

func (r *recordRepoPG) Create(ctx context.Context, rec *HealthRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO health_record (id, student_id, record_type, summary, details, recorded_by, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, rec.StudentID, rec.RecordType, rec.Summary, rec.Details, rec.RecordedBy, rec.RecordedAt,
	)
	return err
}

func (r *recordRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*HealthRecord, error) {
	rec, err := scanRecord(r.pool.QueryRow(ctx, `SELECT `+recordColumns+` FROM health_record WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return rec, nil
}

func (r *recordRepoPG) Update(ctx context.Context, rec *HealthRecord) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE health_record SET record_type = $2, summary = $3, details = $4, updated_at = NOW()
		WHERE id = $1`,
		rec.ID, rec.RecordType, rec.Summary, rec.Details,
	)
	return err
}

func (r *recordRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM health_record WHERE id = $1`, id)
	return err
}

func (r *recordRepoPG) ListByStudent(ctx context.Context, studentID uuid.UUID, recordType string, limit, offset int) ([]*HealthRecord, int, error) {
	where := `WHERE student_id = $1`
	countArgs := []any{studentID}
	listArgs := []any{studentID, limit, offset}
	listQuery := `SELECT ` + recordColumns + ` FROM health_record WHERE student_id = $1 ORDER BY recorded_at DESC LIMIT $2 OFFSET $3`

	if recordType != "" {
		where += ` AND record_type = $2`
		countArgs = append(countArgs, recordType)
		listArgs = []any{studentID, recordType, limit, offset}
		listQuery = `SELECT ` + recordColumns + ` FROM health_record WHERE student_id = $1 AND record_type = $2 ORDER BY recorded_at DESC LIMIT $3 OFFSET $4`
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM health_record `+where, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, listQuery, listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var records []*HealthRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, rec)
	}
	return records, total, rows.Err()
}

func scanRecord(row pgx.Row) (*HealthRecord, error) {
	var rec HealthRecord
	if err := row.Scan(
		&rec.ID, &rec.StudentID, &rec.RecordType, &rec.Summary, &rec.Details,
		&rec.RecordedBy, &rec.RecordedAt, &rec.CreatedAt, &rec.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &rec, nil
}

type allergyRepoPG struct {
	pool *pgxpool.Pool
}

func NewAllergyRepo(pool *pgxpool.Pool) AllergyRepository {
	return &allergyRepoPG{pool: pool}
}

func (r *allergyRepoPG) Create(ctx context.Context, a *Allergy) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO allergy (id, student_id, allergen, severity, reaction, notes)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID, a.StudentID, a.Allergen, a.Severity, a.Reaction, a.Notes,
	)
	return err
}

func (r *allergyRepoPG) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*Allergy, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, student_id, allergen, severity, reaction, notes, created_at
		FROM allergy WHERE student_id = $1 ORDER BY allergen`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var allergies []*Allergy
	for rows.Next() {
		var a Allergy
		if err := rows.Scan(&a.ID, &a.StudentID, &a.Allergen, &a.Severity, &a.Reaction, &a.Notes, &a.CreatedAt); err != nil {
			return nil, err
		}
		allergies = append(allergies, &a)
	}
	return allergies, rows.Err()
}

func (r *allergyRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM allergy WHERE id = $1`, id)
	return err
}
