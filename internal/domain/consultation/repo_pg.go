package consultation

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/Lucklimp/eva-2/internal/platform/db"
)

// =========== Consultation Repository ===========

type consultationRepoPG struct{ db db.Querier }

func NewConsultationRepoPG(q db.Querier) ConsultationRepository {
	return &consultationRepoPG{db: q}
}

const consultationSelect = `SELECT c.id, c.patient_id, c.doctor_id, c.consulted_at, c.reason, c.diagnosis, c.status,
		COALESCE(p.name || ' ' || p.surname, ''), COALESCE(p.rut, ''), COALESCE(d.name || ' ' || d.surname, '')
	FROM consultation c
	LEFT JOIN patient p ON p.id = c.patient_id
	LEFT JOIN doctor d ON d.id = c.doctor_id`

func scanConsultation(row pgx.Row) (*Consultation, error) {
	var c Consultation
	err := row.Scan(&c.ID, &c.PatientID, &c.DoctorID, &c.ConsultedAt, &c.Reason, &c.Diagnosis, &c.Status,
		&c.PatientFullName, &c.PatientRUT, &c.DoctorFullName)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *consultationRepoPG) query(ctx context.Context, sql string, args ...interface{}) ([]*Consultation, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Consultation
	for rows.Next() {
		c, err := scanConsultation(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

func (r *consultationRepoPG) List(ctx context.Context) ([]*Consultation, error) {
	return r.query(ctx, consultationSelect+` ORDER BY c.id`)
}

func (r *consultationRepoPG) ListByPatient(ctx context.Context, patientID int64) ([]*Consultation, error) {
	return r.query(ctx, consultationSelect+` WHERE c.patient_id = $1 ORDER BY c.id`, patientID)
}

func (r *consultationRepoPG) GetByID(ctx context.Context, id int64) (*Consultation, error) {
	c, err := scanConsultation(r.db.QueryRow(ctx, consultationSelect+` WHERE c.id = $1`, id))
	return c, db.MapReadError(err)
}

func (r *consultationRepoPG) Create(ctx context.Context, c *Consultation) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO consultation (patient_id, doctor_id, reason, diagnosis, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, consulted_at`,
		c.PatientID, c.DoctorID, c.Reason, c.Diagnosis, c.Status).Scan(&c.ID, &c.ConsultedAt)
	return db.MapWriteError(err)
}

// Update leaves consulted_at untouched.
func (r *consultationRepoPG) Update(ctx context.Context, c *Consultation) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE consultation SET patient_id = $2, doctor_id = $3, reason = $4, diagnosis = $5, status = $6
		WHERE id = $1`,
		c.ID, c.PatientID, c.DoctorID, c.Reason, c.Diagnosis, c.Status)
	return db.ExpectOne(tag, db.MapWriteError(err))
}

// Delete removes the consultation with its treatments and prescriptions
// (ON DELETE CASCADE).
func (r *consultationRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM consultation WHERE id = $1`, id)
	return db.ExpectOne(tag, db.MapDeleteError(err))
}

// =========== Treatment Repository ===========

type treatmentRepoPG struct{ db db.Querier }

func NewTreatmentRepoPG(q db.Querier) TreatmentRepository {
	return &treatmentRepoPG{db: q}
}

const treatmentCols = `id, consultation_id, description, duration_days, notes`

func scanTreatment(row pgx.Row) (*Treatment, error) {
	var t Treatment
	if err := row.Scan(&t.ID, &t.ConsultationID, &t.Description, &t.DurationDays, &t.Notes); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *treatmentRepoPG) query(ctx context.Context, sql string, args ...interface{}) ([]*Treatment, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Treatment
	for rows.Next() {
		t, err := scanTreatment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

func (r *treatmentRepoPG) List(ctx context.Context) ([]*Treatment, error) {
	return r.query(ctx, `SELECT `+treatmentCols+` FROM treatment ORDER BY id`)
}

func (r *treatmentRepoPG) ListByConsultation(ctx context.Context, consultationID int64) ([]*Treatment, error) {
	return r.query(ctx, `SELECT `+treatmentCols+` FROM treatment WHERE consultation_id = $1 ORDER BY id`, consultationID)
}

func (r *treatmentRepoPG) GetByID(ctx context.Context, id int64) (*Treatment, error) {
	t, err := scanTreatment(r.db.QueryRow(ctx, `SELECT `+treatmentCols+` FROM treatment WHERE id = $1`, id))
	return t, db.MapReadError(err)
}

func (r *treatmentRepoPG) Create(ctx context.Context, t *Treatment) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO treatment (consultation_id, description, duration_days, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		t.ConsultationID, t.Description, t.DurationDays, t.Notes).Scan(&t.ID)
	return db.MapWriteError(err)
}

func (r *treatmentRepoPG) Update(ctx context.Context, t *Treatment) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE treatment SET consultation_id = $2, description = $3, duration_days = $4, notes = $5
		WHERE id = $1`,
		t.ID, t.ConsultationID, t.Description, t.DurationDays, t.Notes)
	return db.ExpectOne(tag, db.MapWriteError(err))
}

func (r *treatmentRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM treatment WHERE id = $1`, id)
	return db.ExpectOne(tag, db.MapDeleteError(err))
}
