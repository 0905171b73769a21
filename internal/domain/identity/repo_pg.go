package identity

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/Lucklimp/eva-2/internal/platform/db"
)

// =========== Patient Repository ===========

type patientRepoPG struct{ db db.Querier }

func NewPatientRepoPG(q db.Querier) PatientRepository {
	return &patientRepoPG{db: q}
}

const patientCols = `id, rut, name, surname, birth_date, blood_type, email, phone, address, active`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.RUT, &p.Name, &p.Surname, &p.BirthDate, &p.BloodType,
		&p.Email, &p.Phone, &p.Address, &p.Active)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *patientRepoPG) List(ctx context.Context) ([]*Patient, error) {
	rows, err := r.db.Query(ctx, `SELECT `+patientCols+` FROM patient ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *patientRepoPG) GetByID(ctx context.Context, id int64) (*Patient, error) {
	p, err := scanPatient(r.db.QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE id = $1`, id))
	return p, db.MapReadError(err)
}

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO patient (rut, name, surname, birth_date, blood_type, email, phone, address, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		p.RUT, p.Name, p.Surname, p.BirthDate, p.BloodType, p.Email, p.Phone, p.Address, p.Active).Scan(&p.ID)
	return db.MapWriteError(err)
}

func (r *patientRepoPG) Update(ctx context.Context, p *Patient) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE patient SET rut = $2, name = $3, surname = $4, birth_date = $5, blood_type = $6,
			email = $7, phone = $8, address = $9, active = $10
		WHERE id = $1`,
		p.ID, p.RUT, p.Name, p.Surname, p.BirthDate, p.BloodType, p.Email, p.Phone, p.Address, p.Active)
	return db.ExpectOne(tag, db.MapWriteError(err))
}

// Delete fails with db.ErrProtected while consultations reference the patient.
func (r *patientRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM patient WHERE id = $1`, id)
	return db.ExpectOne(tag, db.MapDeleteError(err))
}

// =========== Doctor Repository ===========

type doctorRepoPG struct{ db db.Querier }

func NewDoctorRepoPG(q db.Querier) DoctorRepository {
	return &doctorRepoPG{db: q}
}

const doctorSelect = `SELECT d.id, d.rut, d.name, d.surname, d.email, d.phone, d.active,
		d.specialty_id, COALESCE(s.name, '')
	FROM doctor d
	LEFT JOIN specialty s ON s.id = d.specialty_id`

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(&d.ID, &d.RUT, &d.Name, &d.Surname, &d.Email, &d.Phone, &d.Active,
		&d.SpecialtyID, &d.SpecialtyName)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *doctorRepoPG) query(ctx context.Context, sql string, args ...interface{}) ([]*Doctor, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

func (r *doctorRepoPG) List(ctx context.Context) ([]*Doctor, error) {
	return r.query(ctx, doctorSelect+` ORDER BY d.id`)
}

func (r *doctorRepoPG) ListBySpecialty(ctx context.Context, specialtyID int64) ([]*Doctor, error) {
	return r.query(ctx, doctorSelect+` WHERE d.specialty_id = $1 ORDER BY d.id`, specialtyID)
}

func (r *doctorRepoPG) GetByID(ctx context.Context, id int64) (*Doctor, error) {
	d, err := scanDoctor(r.db.QueryRow(ctx, doctorSelect+` WHERE d.id = $1`, id))
	return d, db.MapReadError(err)
}

func (r *doctorRepoPG) Create(ctx context.Context, d *Doctor) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO doctor (rut, name, surname, email, phone, active, specialty_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		d.RUT, d.Name, d.Surname, d.Email, d.Phone, d.Active, d.SpecialtyID).Scan(&d.ID)
	return db.MapWriteError(err)
}

func (r *doctorRepoPG) Update(ctx context.Context, d *Doctor) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE doctor SET rut = $2, name = $3, surname = $4, email = $5, phone = $6,
			active = $7, specialty_id = $8
		WHERE id = $1`,
		d.ID, d.RUT, d.Name, d.Surname, d.Email, d.Phone, d.Active, d.SpecialtyID)
	return db.ExpectOne(tag, db.MapWriteError(err))
}

// Delete fails with db.ErrProtected while consultations reference the doctor.
func (r *doctorRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM doctor WHERE id = $1`, id)
	return db.ExpectOne(tag, db.MapDeleteError(err))
}
