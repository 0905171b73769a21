package medication

import (
	"context"
	"errors"
	"testing"

	"github.com/Lucklimp/eva-2/internal/domain/consultation"
	"github.com/Lucklimp/eva-2/internal/platform/db"
	"github.com/Lucklimp/eva-2/internal/platform/validation"
)

// -- Mock Repositories --

type mockMedicationRepo struct {
	medications map[int64]*Medication
	next        int64
	// prescriptions is consulted for the ON DELETE RESTRICT reference.
	prescriptions *mockPrescriptionRepo
}

func newMockMedicationRepo() *mockMedicationRepo {
	return &mockMedicationRepo{medications: make(map[int64]*Medication)}
}

func (m *mockMedicationRepo) List(context.Context) ([]*Medication, error) {
	var out []*Medication
	for id := int64(1); id <= m.next; id++ {
		if med, ok := m.medications[id]; ok {
			out = append(out, med)
		}
	}
	return out, nil
}

func (m *mockMedicationRepo) GetByID(_ context.Context, id int64) (*Medication, error) {
	med, ok := m.medications[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return med, nil
}

func (m *mockMedicationRepo) Create(_ context.Context, med *Medication) error {
	m.next++
	med.ID = m.next
	m.medications[med.ID] = med
	return nil
}

func (m *mockMedicationRepo) Update(_ context.Context, med *Medication) error {
	if _, ok := m.medications[med.ID]; !ok {
		return db.ErrNotFound
	}
	m.medications[med.ID] = med
	return nil
}

func (m *mockMedicationRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.medications[id]; !ok {
		return db.ErrNotFound
	}
	if m.prescriptions != nil {
		for _, p := range m.prescriptions.prescriptions {
			if p.MedicationID == id {
				return db.ErrProtected
			}
		}
	}
	delete(m.medications, id)
	return nil
}

type mockPrescriptionRepo struct {
	prescriptions map[int64]*Prescription
	next          int64
}

func newMockPrescriptionRepo() *mockPrescriptionRepo {
	return &mockPrescriptionRepo{prescriptions: make(map[int64]*Prescription)}
}

func (m *mockPrescriptionRepo) List(context.Context) ([]*Prescription, error) {
	var out []*Prescription
	for id := int64(1); id <= m.next; id++ {
		if p, ok := m.prescriptions[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockPrescriptionRepo) ListByConsultation(ctx context.Context, consultationID int64) ([]*Prescription, error) {
	all, _ := m.List(ctx)
	var out []*Prescription
	for _, p := range all {
		if p.ConsultationID == consultationID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockPrescriptionRepo) GetByID(_ context.Context, id int64) (*Prescription, error) {
	p, ok := m.prescriptions[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return p, nil
}

func (m *mockPrescriptionRepo) Create(_ context.Context, p *Prescription) error {
	m.next++
	p.ID = m.next
	m.prescriptions[p.ID] = p
	return nil
}

func (m *mockPrescriptionRepo) Update(_ context.Context, p *Prescription) error {
	if _, ok := m.prescriptions[p.ID]; !ok {
		return db.ErrNotFound
	}
	m.prescriptions[p.ID] = p
	return nil
}

func (m *mockPrescriptionRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.prescriptions[id]; !ok {
		return db.ErrNotFound
	}
	delete(m.prescriptions, id)
	return nil
}

// fakeConsultations stands in for the consultation service. Delete cascades
// to prescriptions the way the foreign key does.
type fakeConsultations struct {
	recs          map[int64]*consultation.Consultation
	prescriptions *mockPrescriptionRepo
}

func (f *fakeConsultations) List(context.Context) ([]*consultation.Consultation, error) {
	var out []*consultation.Consultation
	for id := int64(1); id <= int64(len(f.recs)); id++ {
		if c, ok := f.recs[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeConsultations) Get(_ context.Context, id int64) (*consultation.Consultation, error) {
	c, ok := f.recs[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return c, nil
}

func (f *fakeConsultations) Create(context.Context, *consultation.Consultation) error { return nil }
func (f *fakeConsultations) Update(context.Context, *consultation.Consultation) error { return nil }

func (f *fakeConsultations) Delete(_ context.Context, id int64) error {
	if _, ok := f.recs[id]; !ok {
		return db.ErrNotFound
	}
	delete(f.recs, id)
	for pid, p := range f.prescriptions.prescriptions {
		if p.ConsultationID == id {
			delete(f.prescriptions.prescriptions, pid)
		}
	}
	return nil
}

type fixture struct {
	medications   *MedicationService
	prescriptions *PrescriptionService
	consultations *fakeConsultations
	medRepo       *mockMedicationRepo
	rxRepo        *mockPrescriptionRepo
}

func newFixture() *fixture {
	medRepo := newMockMedicationRepo()
	rxRepo := newMockPrescriptionRepo()
	medRepo.prescriptions = rxRepo
	consultations := &fakeConsultations{
		recs: map[int64]*consultation.Consultation{
			1: {ID: 1, PatientID: 1, DoctorID: 1, Reason: "Control", Status: consultation.StatusPending, PatientFullName: "Ana Rojas", PatientRUT: "11.111.111-1"},
			2: {ID: 2, PatientID: 1, DoctorID: 1, Reason: "Fiebre", Status: consultation.StatusCompleted, PatientFullName: "Ana Rojas", PatientRUT: "11.111.111-1"},
		},
		prescriptions: rxRepo,
	}
	return &fixture{
		medications:   NewMedicationService(medRepo),
		prescriptions: NewPrescriptionService(rxRepo, medRepo, consultations),
		consultations: consultations,
		medRepo:       medRepo,
		rxRepo:        rxRepo,
	}
}

func paracetamol() *Medication {
	return &Medication{Name: "Paracetamol", Laboratory: "Chile", Stock: 10, UnitPrice: 1.5}
}

func validPrescription() *Prescription {
	return &Prescription{ConsultationID: 1, MedicationID: 1, Dosage: "500 mg", Frequency: "cada 8 horas", Duration: "5 días"}
}

// -- Medication --

func TestMedicationService_Validation(t *testing.T) {
	f := newFixture()
	cases := []struct {
		name   string
		mutate func(m *Medication)
		field  string
	}{
		{"missing name", func(m *Medication) { m.Name = " " }, "name"},
		{"missing laboratory", func(m *Medication) { m.Laboratory = "" }, "laboratory"},
		{"negative stock", func(m *Medication) { m.Stock = -1 }, "stock"},
		{"free medication", func(m *Medication) { m.UnitPrice = 0 }, "unit_price"},
		{"price below a cent", func(m *Medication) { m.UnitPrice = 0.009 }, "unit_price"},
		{"fraction of a cent", func(m *Medication) { m.UnitPrice = 0.015 }, "unit_price"},
		{"price past numeric(10,2)", func(m *Medication) { m.UnitPrice = 1e12 }, "unit_price"},
		{"stock past integer", func(m *Medication) { m.Stock = 3e9 }, "stock"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := paracetamol()
			tc.mutate(m)
			err := f.medications.Create(context.Background(), m)
			var verr *validation.Error
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if _, ok := verr.Fields[tc.field]; !ok {
				t.Errorf("expected %s error, got %v", tc.field, verr.Fields)
			}
		})
	}

	m := paracetamol()
	m.Stock, m.UnitPrice = 0, 0.01
	if err := f.medications.Create(context.Background(), m); err != nil {
		t.Errorf("expected zero stock and minimum price to be accepted, got %v", err)
	}
	top := paracetamol()
	top.Stock, top.UnitPrice = 2147483647, 99999999.99
	if err := f.medications.Create(context.Background(), top); err != nil {
		t.Errorf("expected the largest storable stock and price to be accepted, got %v", err)
	}
	if m.String() != "Paracetamol (Chile)" {
		t.Errorf("unexpected label %q", m.String())
	}
}

func TestMedicationService_DeleteProtected(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_ = f.medications.Create(ctx, paracetamol())
	if err := f.prescriptions.Create(ctx, validPrescription()); err != nil {
		t.Fatalf("Create prescription: %v", err)
	}

	if err := f.medications.Delete(ctx, 1); !errors.Is(err, db.ErrProtected) {
		t.Fatalf("expected ErrProtected, got %v", err)
	}
	if _, err := f.medications.Get(ctx, 1); err != nil {
		t.Errorf("expected medication to survive, got %v", err)
	}

	_ = f.prescriptions.Delete(ctx, 1)
	if err := f.medications.Delete(ctx, 1); err != nil {
		t.Errorf("expected delete to succeed once unreferenced, got %v", err)
	}
}

// -- Prescription --

func TestPrescriptionService_References(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_ = f.medications.Create(ctx, paracetamol())

	var verr *validation.Error
	p := validPrescription()
	p.ConsultationID = 9
	if err := f.prescriptions.Create(ctx, p); !errors.As(err, &verr) || verr.Fields["consultation"] != "does not exist" {
		t.Errorf("expected missing consultation error, got %v", err)
	}
	p = validPrescription()
	p.MedicationID = 9
	if err := f.prescriptions.Create(ctx, p); !errors.As(err, &verr) || verr.Fields["medication"] != "does not exist" {
		t.Errorf("expected missing medication error, got %v", err)
	}
	p = validPrescription()
	p.Dosage = "  "
	if err := f.prescriptions.Create(ctx, p); !errors.As(err, &verr) || verr.Fields["dosage"] != "is required" {
		t.Errorf("expected dosage required, got %v", err)
	}
}

func TestPrescriptionService_ConsultationCascade(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_ = f.medications.Create(ctx, paracetamol())
	_ = f.prescriptions.Create(ctx, validPrescription())
	second := validPrescription()
	second.ConsultationID = 2
	_ = f.prescriptions.Create(ctx, second)

	if err := f.consultations.Delete(ctx, 1); err != nil {
		t.Fatalf("Delete consultation: %v", err)
	}
	remaining, _ := f.prescriptions.List(ctx)
	if len(remaining) != 1 || remaining[0].ConsultationID != 2 {
		t.Errorf("expected only the prescription of consultation 2, got %+v", remaining)
	}
	if _, err := f.prescriptions.ListByConsultation(ctx, 1); !errors.Is(err, db.ErrNotFound) {
		t.Errorf("expected ErrNotFound for the deleted consultation, got %v", err)
	}
}

func TestPrescription_String(t *testing.T) {
	p := &Prescription{PatientFullName: "Ana Rojas", PatientRUT: "11.111.111-1", MedicationName: "Paracetamol"}
	if got := p.String(); got != "Receta para Ana Rojas (11.111.111-1) - Paracetamol" {
		t.Errorf("unexpected label %q", got)
	}
}
