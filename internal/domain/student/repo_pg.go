package student

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type studentRepoPG struct {
	pool *pgxpool.Pool
}

func NewStudentRepo(pool *pgxpool.Pool) StudentRepository {
	return &studentRepoPG{pool: pool}
}

const studentColumns = `id, student_number, first_name, last_name, date_of_birth, grade, notes, active, created_at, updated_at`

func (r *studentRepoPG) Create(ctx context.Context, s *Student) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO student (id, student_number, first_name, last_name, date_of_birth, grade, notes, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.ID, s.StudentNumber, s.FirstName, s.LastName, s.DateOfBirth, s.Grade, s.Notes, s.Active,
	)
	return err
}

func (r *studentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Student, error) {
	s, err := scanStudent(r.pool.QueryRow(ctx, `SELECT `+studentColumns+` FROM student WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *studentRepoPG) Update(ctx context.Context, s *Student) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE student SET
			student_number = $2, first_name = $3, last_name = $4,
			date_of_birth = $5, grade = $6, notes = $7, active = $8, updated_at = NOW()
		WHERE id = $1`,
		s.ID, s.StudentNumber, s.FirstName, s.LastName, s.DateOfBirth, s.Grade, s.Notes, s.Active,
	)
	return err
}

func (r *studentRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM student WHERE id = $1`, id)
	return err
}

func (r *studentRepoPG) List(ctx context.Context, limit, offset int) ([]*Student, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM student`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `SELECT `+studentColumns+` FROM student ORDER BY last_name, first_name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectStudents(rows, total)
}

func (r *studentRepoPG) Search(ctx context.Context, query string, limit, offset int) ([]*Student, int, error) {
	pattern := "%" + query + "%"

	var total int
	if err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM student
		WHERE first_name ILIKE $1 OR last_name ILIKE $1 OR student_number ILIKE $1`, pattern).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+studentColumns+` FROM student
		WHERE first_name ILIKE $1 OR last_name ILIKE $1 OR student_number ILIKE $1
		ORDER BY last_name, first_name LIMIT $2 OFFSET $3`, pattern, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectStudents(rows, total)
}

func scanStudent(row pgx.Row) (*Student, error) {
	var s Student
	if err := row.Scan(
		&s.ID, &s.StudentNumber, &s.FirstName, &s.LastName, &s.DateOfBirth,
		&s.Grade, &s.Notes, &s.Active, &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

func collectStudents(rows pgx.Rows, total int) ([]*Student, int, error) {
	var students []*Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, 0, err
		}
		students = append(students, s)
	}
	return students, total, rows.Err()
}

type contactRepoPG struct {
	pool *pgxpool.Pool
}

func NewContactRepo(pool *pgxpool.Pool) ContactRepository {
	return &contactRepoPG{pool: pool}
}

func (r *contactRepoPG) Create(ctx context.Context, c *EmergencyContact) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO emergency_contact (id, student_id, name, relationship, phone, priority)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.StudentID, c.Name, c.Relationship, c.Phone, c.Priority,
	)
	return err
}

func (r *contactRepoPG) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*EmergencyContact, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, student_id, name, relationship, phone, priority, created_at
		FROM emergency_contact WHERE student_id = $1 ORDER BY priority`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []*EmergencyContact
	for rows.Next() {
		var c EmergencyContact
		if err := rows.Scan(&c.ID, &c.StudentID, &c.Name, &c.Relationship, &c.Phone, &c.Priority, &c.CreatedAt); err != nil {
			return nil, err
		}
		contacts = append(contacts, &c)
	}
	return contacts, rows.Err()
}

func (r *contactRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM emergency_contact WHERE id = $1`, id)
	return err
}
