package medication

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/Lucklimp/eva-2/internal/platform/db"
)

// =========== Medication Repository ===========

type medicationRepoPG struct{ db db.Querier }

func NewMedicationRepoPG(q db.Querier) MedicationRepository {
	return &medicationRepoPG{db: q}
}

const medicationCols = `id, name, laboratory, stock, unit_price`

func scanMedication(row pgx.Row) (*Medication, error) {
	var m Medication
	if err := row.Scan(&m.ID, &m.Name, &m.Laboratory, &m.Stock, &m.UnitPrice); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *medicationRepoPG) List(ctx context.Context) ([]*Medication, error) {
	rows, err := r.db.Query(ctx, `SELECT `+medicationCols+` FROM medication ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Medication
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

func (r *medicationRepoPG) GetByID(ctx context.Context, id int64) (*Medication, error) {
	m, err := scanMedication(r.db.QueryRow(ctx, `SELECT `+medicationCols+` FROM medication WHERE id = $1`, id))
	return m, db.MapReadError(err)
}

func (r *medicationRepoPG) Create(ctx context.Context, m *Medication) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO medication (name, laboratory, stock, unit_price)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		m.Name, m.Laboratory, m.Stock, m.UnitPrice).Scan(&m.ID)
	return db.MapWriteError(err)
}

func (r *medicationRepoPG) Update(ctx context.Context, m *Medication) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE medication SET name = $2, laboratory = $3, stock = $4, unit_price = $5
		WHERE id = $1`,
		m.ID, m.Name, m.Laboratory, m.Stock, m.UnitPrice)
	return db.ExpectOne(tag, db.MapWriteError(err))
}

// Delete fails with db.ErrProtected while prescriptions reference the medication.
func (r *medicationRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM medication WHERE id = $1`, id)
	return db.ExpectOne(tag, db.MapDeleteError(err))
}

// =========== Prescription Repository ===========

type prescriptionRepoPG struct{ db db.Querier }

func NewPrescriptionRepoPG(q db.Querier) PrescriptionRepository {
	return &prescriptionRepoPG{db: q}
}

const prescriptionSelect = `SELECT r.id, r.consultation_id, r.medication_id, r.dosage, r.frequency, r.duration,
		COALESCE(m.name, ''), COALESCE(p.name || ' ' || p.surname, ''), COALESCE(p.rut, '')
	FROM prescription r
	LEFT JOIN medication m ON m.id = r.medication_id
	LEFT JOIN consultation c ON c.id = r.consultation_id
	LEFT JOIN patient p ON p.id = c.patient_id`

func scanPrescription(row pgx.Row) (*Prescription, error) {
	var p Prescription
	err := row.Scan(&p.ID, &p.ConsultationID, &p.MedicationID, &p.Dosage, &p.Frequency, &p.Duration,
		&p.MedicationName, &p.PatientFullName, &p.PatientRUT)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *prescriptionRepoPG) query(ctx context.Context, sql string, args ...interface{}) ([]*Prescription, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Prescription
	for rows.Next() {
		p, err := scanPrescription(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *prescriptionRepoPG) List(ctx context.Context) ([]*Prescription, error) {
	return r.query(ctx, prescriptionSelect+` ORDER BY r.id`)
}

func (r *prescriptionRepoPG) ListByConsultation(ctx context.Context, consultationID int64) ([]*Prescription, error) {
	return r.query(ctx, prescriptionSelect+` WHERE r.consultation_id = $1 ORDER BY r.id`, consultationID)
}

func (r *prescriptionRepoPG) GetByID(ctx context.Context, id int64) (*Prescription, error) {
	p, err := scanPrescription(r.db.QueryRow(ctx, prescriptionSelect+` WHERE r.id = $1`, id))
	return p, db.MapReadError(err)
}

func (r *prescriptionRepoPG) Create(ctx context.Context, p *Prescription) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO prescription (consultation_id, medication_id, dosage, frequency, duration)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		p.ConsultationID, p.MedicationID, p.Dosage, p.Frequency, p.Duration).Scan(&p.ID)
	return db.MapWriteError(err)
}

func (r *prescriptionRepoPG) Update(ctx context.Context, p *Prescription) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE prescription SET consultation_id = $2, medication_id = $3, dosage = $4, frequency = $5, duration = $6
		WHERE id = $1`,
		p.ID, p.ConsultationID, p.MedicationID, p.Dosage, p.Frequency, p.Duration)
	return db.ExpectOne(tag, db.MapWriteError(err))
}

func (r *prescriptionRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM prescription WHERE id = $1`, id)
	return db.ExpectOne(tag, db.MapDeleteError(err))
}
