package memstore

import (
	"context"
	"time"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
	"github.com/m04kA/SMC-DialysisService/internal/infra/storage/appointment"
)

// Appointments журнал записей
type Appointments struct{ s *Store }

func (s *Store) Appointments() *Appointments { return &Appointments{s: s} }

func (r *Appointments) Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	err := r.s.lock("Appointments.Create")
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	// частичный уникальный индекс (patient_id, appointment_date) WHERE status <> 'cancelled'
	for _, other := range r.s.t.appointments {
		if other.PatientID == a.PatientID && sameDay(other.Date, a.Date) && other.IsActive() {
			return nil, appointment.ErrPatientDateTaken
		}
	}

	a.ID = r.s.nextID("appointments")
	a.CreatedAt, a.UpdatedAt = r.s.now(), r.s.now()
	r.s.t.appointments[a.ID] = *a
	return a, nil
}

func (r *Appointments) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	err := r.s.lock("Appointments.GetByID")
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	a, ok := r.s.t.appointments[id]
	if !ok {
		return nil, appointment.ErrAppointmentNotFound
	}
	return &a, nil
}

func (r *Appointments) list(op string, keep func(domain.Appointment) bool) ([]*domain.Appointment, error) {
	err := r.s.lock(op)
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	found := sortedValues(r.s.t.appointments, keep)
	out := make([]*domain.Appointment, len(found))
	for i := range found {
		out[i] = &found[i]
	}
	return out, nil
}

func (r *Appointments) ListActiveByCenterAndDate(ctx context.Context, centerID int64, date time.Time) ([]*domain.Appointment, error) {
	return r.list("Appointments.ListActiveByCenterAndDate", func(a domain.Appointment) bool {
		return a.CenterID == centerID && sameDay(a.Date, date) && a.IsActive()
	})
}

func (r *Appointments) ListByCenterAndDate(ctx context.Context, centerID int64, date time.Time) ([]*domain.Appointment, error) {
	return r.list("Appointments.ListByCenterAndDate", func(a domain.Appointment) bool {
		return a.CenterID == centerID && sameDay(a.Date, date)
	})
}

func (r *Appointments) ListActiveByPatientAndDate(ctx context.Context, patientID int64, date time.Time) ([]*domain.Appointment, error) {
	return r.list("Appointments.ListActiveByPatientAndDate", func(a domain.Appointment) bool {
		return a.PatientID == patientID && sameDay(a.Date, date) && a.IsActive()
	})
}

func (r *Appointments) ListByPatient(ctx context.Context, patientID int64, status *domain.AppointmentStatus) ([]*domain.Appointment, error) {
	return r.list("Appointments.ListByPatient", func(a domain.Appointment) bool {
		return a.PatientID == patientID && (status == nil || a.Status == *status)
	})
}

func (r *Appointments) update(op string, id int64, fn func(a *domain.Appointment)) error {
	err := r.s.lock(op)
	defer r.s.mu.Unlock()
	if err != nil {
		return err
	}

	a, ok := r.s.t.appointments[id]
	if !ok {
		return appointment.ErrAppointmentNotFound
	}
	fn(&a)
	a.UpdatedAt = r.s.now()
	r.s.t.appointments[id] = a
	return nil
}

func (r *Appointments) UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus) error {
	return r.update("Appointments.UpdateStatus", id, func(a *domain.Appointment) {
		a.Status = status
	})
}

func (r *Appointments) Reschedule(ctx context.Context, id int64, date time.Time, slot domain.TimeRange, reason *string) error {
	return r.update("Appointments.Reschedule", id, func(a *domain.Appointment) {
		a.Date = date
		a.Slot = slot
		a.Revision++
		a.RescheduleReason = reason
	})
}

func (r *Appointments) Cancel(ctx context.Context, id int64, reason *string) error {
	now := r.s.now()
	return r.update("Appointments.Cancel", id, func(a *domain.Appointment) {
		a.Status = domain.AppointmentCancelled
		a.CancellationReason = reason
		a.CancelledAt = &now
	})
}

func (r *Appointments) HasSession(ctx context.Context, id int64) (bool, error) {
	err := r.s.lock("Appointments.HasSession")
	defer r.s.mu.Unlock()
	if err != nil {
		return false, err
	}

	for _, s := range r.s.t.sessions {
		if s.AppointmentID == id {
			return true, nil
		}
	}
	return false, nil
}

func (r *Appointments) HasDependents(ctx context.Context, id int64) (bool, error) {
	err := r.s.lock("Appointments.HasDependents")
	defer r.s.mu.Unlock()
	if err != nil {
		return false, err
	}

	for _, s := range r.s.t.sessions {
		if s.AppointmentID == id {
			return true, nil
		}
	}
	for _, a := range r.s.t.assignments {
		if a.AppointmentID == id {
			return true, nil
		}
	}
	return false, nil
}

func (r *Appointments) Delete(ctx context.Context, id int64) error {
	err := r.s.lock("Appointments.Delete")
	defer r.s.mu.Unlock()
	if err != nil {
		return err
	}

	if _, ok := r.s.t.appointments[id]; !ok {
		return appointment.ErrAppointmentNotFound
	}
	delete(r.s.t.appointments, id)
	return nil
}
