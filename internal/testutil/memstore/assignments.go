package memstore

import (
	"context"
	"time"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
	"github.com/m04kA/SMC-DialysisService/internal/infra/storage/assignment"
)

// Assignments назначения аппаратов
type Assignments struct{ s *Store }

func (s *Store) Assignments() *Assignments { return &Assignments{s: s} }

func (r *Assignments) Create(ctx context.Context, a *domain.AssetAssignment) (*domain.AssetAssignment, error) {
	err := r.s.lock("Assignments.Create")
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	// exclusion constraint: активные диапазоны аппарата на дату не пересекаются
	for _, other := range r.s.t.assignments {
		if other.AssetID == a.AssetID && sameDay(other.Date, a.Date) &&
			other.Status == domain.AssignmentActive && other.Range().Overlaps(a.Range()) {
			return nil, assignment.ErrAssignmentOverlap
		}
	}

	a.ID = r.s.nextID("assignments")
	a.CreatedAt = r.s.now()
	r.s.t.assignments[a.ID] = *a
	return a, nil
}

func (r *Assignments) GetByID(ctx context.Context, id int64) (*domain.AssetAssignment, error) {
	err := r.s.lock("Assignments.GetByID")
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	a, ok := r.s.t.assignments[id]
	if !ok {
		return nil, assignment.ErrAssignmentNotFound
	}
	return &a, nil
}

func (r *Assignments) list(op string, keep func(domain.AssetAssignment) bool) ([]*domain.AssetAssignment, error) {
	err := r.s.lock(op)
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	found := sortedValues(r.s.t.assignments, keep)
	out := make([]*domain.AssetAssignment, len(found))
	for i := range found {
		out[i] = &found[i]
	}
	return out, nil
}

func (r *Assignments) ListActiveByAsset(ctx context.Context, assetID int64, date time.Time) ([]*domain.AssetAssignment, error) {
	return r.list("Assignments.ListActiveByAsset", func(a domain.AssetAssignment) bool {
		return a.AssetID == assetID && sameDay(a.Date, date) && a.Status == domain.AssignmentActive
	})
}

func (r *Assignments) ListActiveByAppointment(ctx context.Context, appointmentID int64) ([]*domain.AssetAssignment, error) {
	return r.list("Assignments.ListActiveByAppointment", func(a domain.AssetAssignment) bool {
		return a.AppointmentID == appointmentID && a.Status == domain.AssignmentActive
	})
}

func (r *Assignments) Release(ctx context.Context, id int64, status domain.AssignmentStatus) (bool, error) {
	err := r.s.lock("Assignments.Release")
	defer r.s.mu.Unlock()
	if err != nil {
		return false, err
	}

	a, ok := r.s.t.assignments[id]
	if !ok || a.Status != domain.AssignmentActive {
		return false, nil
	}
	now := r.s.now()
	a.Status = status
	a.ReleasedAt = &now
	r.s.t.assignments[id] = a
	return true, nil
}

func (r *Assignments) AttachSession(ctx context.Context, id, sessionID int64) error {
	err := r.s.lock("Assignments.AttachSession")
	defer r.s.mu.Unlock()
	if err != nil {
		return err
	}

	a, ok := r.s.t.assignments[id]
	if !ok {
		return assignment.ErrAssignmentNotFound
	}
	a.SessionID = &sessionID
	r.s.t.assignments[id] = a
	return nil
}
