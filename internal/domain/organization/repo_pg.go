package organization

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/Lucklimp/eva-2/internal/platform/db"
)

// =========== Department Repository ===========

type departmentRepoPG struct{ db db.Querier }

func NewDepartmentRepoPG(q db.Querier) DepartmentRepository {
	return &departmentRepoPG{db: q}
}

const deptCols = `id, name, description`

func scanDepartment(row pgx.Row) (*Department, error) {
	var d Department
	if err := row.Scan(&d.ID, &d.Name, &d.Description); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *departmentRepoPG) List(ctx context.Context) ([]*Department, error) {
	rows, err := r.db.Query(ctx, `SELECT `+deptCols+` FROM department ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Department
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

func (r *departmentRepoPG) GetByID(ctx context.Context, id int64) (*Department, error) {
	d, err := scanDepartment(r.db.QueryRow(ctx, `SELECT `+deptCols+` FROM department WHERE id = $1`, id))
	return d, db.MapReadError(err)
}

func (r *departmentRepoPG) Create(ctx context.Context, d *Department) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO department (name, description)
		VALUES ($1, $2)
		RETURNING id`,
		d.Name, d.Description).Scan(&d.ID)
	return db.MapWriteError(err)
}

func (r *departmentRepoPG) Update(ctx context.Context, d *Department) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE department SET name = $2, description = $3
		WHERE id = $1`,
		d.ID, d.Name, d.Description)
	return db.ExpectOne(tag, db.MapWriteError(err))
}

// Delete nulls the department of its specialties (ON DELETE SET NULL).
func (r *departmentRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM department WHERE id = $1`, id)
	return db.ExpectOne(tag, db.MapDeleteError(err))
}

// =========== Specialty Repository ===========

type specialtyRepoPG struct{ db db.Querier }

func NewSpecialtyRepoPG(q db.Querier) SpecialtyRepository {
	return &specialtyRepoPG{db: q}
}

const specialtySelect = `SELECT s.id, s.name, s.description, s.department_id, COALESCE(d.name, '')
	FROM specialty s
	LEFT JOIN department d ON d.id = s.department_id`

func scanSpecialty(row pgx.Row) (*Specialty, error) {
	var s Specialty
	if err := row.Scan(&s.ID, &s.Name, &s.Description, &s.DepartmentID, &s.DepartmentName); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *specialtyRepoPG) query(ctx context.Context, sql string, args ...interface{}) ([]*Specialty, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Specialty
	for rows.Next() {
		s, err := scanSpecialty(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

func (r *specialtyRepoPG) List(ctx context.Context) ([]*Specialty, error) {
	return r.query(ctx, specialtySelect+` ORDER BY s.id`)
}

func (r *specialtyRepoPG) ListByDepartment(ctx context.Context, departmentID int64) ([]*Specialty, error) {
	return r.query(ctx, specialtySelect+` WHERE s.department_id = $1 ORDER BY s.id`, departmentID)
}

func (r *specialtyRepoPG) GetByID(ctx context.Context, id int64) (*Specialty, error) {
	s, err := scanSpecialty(r.db.QueryRow(ctx, specialtySelect+` WHERE s.id = $1`, id))
	return s, db.MapReadError(err)
}

func (r *specialtyRepoPG) Create(ctx context.Context, s *Specialty) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO specialty (name, description, department_id)
		VALUES ($1, $2, $3)
		RETURNING id`,
		s.Name, s.Description, s.DepartmentID).Scan(&s.ID)
	return db.MapWriteError(err)
}

func (r *specialtyRepoPG) Update(ctx context.Context, s *Specialty) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE specialty SET name = $2, description = $3, department_id = $4
		WHERE id = $1`,
		s.ID, s.Name, s.Description, s.DepartmentID)
	return db.ExpectOne(tag, db.MapWriteError(err))
}

// Delete fails with db.ErrProtected while doctors reference the specialty.
func (r *specialtyRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM specialty WHERE id = $1`, id)
	return db.ExpectOne(tag, db.MapDeleteError(err))
}
