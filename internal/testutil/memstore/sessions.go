package memstore

import (
	"context"
	"time"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
	"github.com/m04kA/SMC-DialysisService/internal/infra/storage/note"
	"github.com/m04kA/SMC-DialysisService/internal/infra/storage/session"
)

// Sessions сеансы диализа
type Sessions struct{ s *Store }

func (s *Store) Sessions() *Sessions { return &Sessions{s: s} }

func (r *Sessions) Create(ctx context.Context, sess *domain.Session) (*domain.Session, error) {
	err := r.s.lock("Sessions.Create")
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	for _, other := range r.s.t.sessions {
		if other.AppointmentID == sess.AppointmentID {
			return nil, session.ErrSessionExists
		}
	}

	sess.ID = r.s.nextID("sessions")
	sess.CreatedAt, sess.UpdatedAt = r.s.now(), r.s.now()
	r.s.t.sessions[sess.ID] = *sess
	return sess, nil
}

func (r *Sessions) GetByID(ctx context.Context, id int64) (*domain.Session, error) {
	err := r.s.lock("Sessions.GetByID")
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	sess, ok := r.s.t.sessions[id]
	if !ok {
		return nil, session.ErrSessionNotFound
	}
	return &sess, nil
}

func (r *Sessions) GetByAppointmentID(ctx context.Context, appointmentID int64) (*domain.Session, error) {
	err := r.s.lock("Sessions.GetByAppointmentID")
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	for _, sess := range r.s.t.sessions {
		if sess.AppointmentID == appointmentID {
			return &sess, nil
		}
	}
	return nil, session.ErrSessionNotFound
}

func (r *Sessions) ListByCenterAndDate(ctx context.Context, centerID int64, date time.Time) ([]*domain.Session, error) {
	err := r.s.lock("Sessions.ListByCenterAndDate")
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	found := sortedValues(r.s.t.sessions, func(sess domain.Session) bool {
		return sess.CenterID == centerID && sameDay(sess.SessionDate, date)
	})
	out := make([]*domain.Session, len(found))
	for i := range found {
		out[i] = &found[i]
	}
	return out, nil
}

func (r *Sessions) update(op string, id int64, fn func(sess *domain.Session)) error {
	err := r.s.lock(op)
	defer r.s.mu.Unlock()
	if err != nil {
		return err
	}

	sess, ok := r.s.t.sessions[id]
	if !ok {
		return session.ErrSessionNotFound
	}
	fn(&sess)
	sess.UpdatedAt = r.s.now()
	r.s.t.sessions[id] = sess
	return nil
}

func (r *Sessions) SetMachine(ctx context.Context, id, assetID, assignmentID int64) error {
	return r.update("Sessions.SetMachine", id, func(sess *domain.Session) {
		sess.AssetID = &assetID
		sess.AssignmentID = &assignmentID
	})
}

func (r *Sessions) MarkStarted(ctx context.Context, id int64, startedAt time.Time, startedBy int64) error {
	return r.update("Sessions.MarkStarted", id, func(sess *domain.Session) {
		sess.Status = domain.SessionInProgress
		sess.ActualStart = &startedAt
		sess.StartedBy = &startedBy
	})
}

func (r *Sessions) MarkFinished(ctx context.Context, finished *domain.Session) error {
	return r.update("Sessions.MarkFinished", finished.ID, func(sess *domain.Session) {
		sess.Status = finished.Status
		sess.ActualEnd = finished.ActualEnd
		sess.PostNotes = finished.PostNotes
		sess.TerminationReason = finished.TerminationReason
		sess.CompletedBy = finished.CompletedBy
	})
}

// Notes наблюдения и осложнения
type Notes struct{ s *Store }

func (s *Store) Notes() *Notes { return &Notes{s: s} }

func (r *Notes) CreateNoteType(ctx context.Context, nt *domain.NoteType) (*domain.NoteType, error) {
	err := r.s.lock("Notes.CreateNoteType")
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	nt.ID = r.s.nextID("note_types")
	r.s.t.noteTypes[nt.ID] = *nt
	return nt, nil
}

func (r *Notes) GetNoteType(ctx context.Context, id int64) (*domain.NoteType, error) {
	err := r.s.lock("Notes.GetNoteType")
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	nt, ok := r.s.t.noteTypes[id]
	if !ok {
		return nil, note.ErrNoteTypeNotFound
	}
	return &nt, nil
}

func (r *Notes) ListNoteTypes(ctx context.Context) ([]*domain.NoteType, error) {
	err := r.s.lock("Notes.ListNoteTypes")
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	found := sortedValues(r.s.t.noteTypes, func(domain.NoteType) bool { return true })
	out := make([]*domain.NoteType, len(found))
	for i := range found {
		out[i] = &found[i]
	}
	return out, nil
}

func (r *Notes) MissingMandatoryNoteTypes(ctx context.Context, sessionID int64) ([]*domain.NoteType, error) {
	err := r.s.lock("Notes.MissingMandatoryNoteTypes")
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	recorded := map[int64]bool{}
	for _, n := range r.s.t.notes {
		if n.SessionID == sessionID {
			recorded[n.NoteTypeID] = true
		}
	}

	found := sortedValues(r.s.t.noteTypes, func(nt domain.NoteType) bool {
		return nt.IsMandatory && !recorded[nt.ID]
	})
	out := make([]*domain.NoteType, len(found))
	for i := range found {
		out[i] = &found[i]
	}
	return out, nil
}

func (r *Notes) CreateNotes(ctx context.Context, notes []*domain.SessionNote) error {
	err := r.s.lock("Notes.CreateNotes")
	defer r.s.mu.Unlock()
	if err != nil {
		return err
	}

	for _, n := range notes {
		n.ID = r.s.nextID("session_notes")
		n.RecordedAt = r.s.now()
		r.s.t.notes[n.ID] = *n
	}
	return nil
}

func (r *Notes) ListNotes(ctx context.Context, sessionID int64) ([]*domain.SessionNote, error) {
	err := r.s.lock("Notes.ListNotes")
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	found := sortedValues(r.s.t.notes, func(n domain.SessionNote) bool { return n.SessionID == sessionID })
	out := make([]*domain.SessionNote, len(found))
	for i := range found {
		out[i] = &found[i]
	}
	return out, nil
}

func (r *Notes) CreateComplication(ctx context.Context, c *domain.Complication) (*domain.Complication, error) {
	err := r.s.lock("Notes.CreateComplication")
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	c.ID = r.s.nextID("complications")
	c.ReportedAt = r.s.now()
	r.s.t.complications[c.ID] = *c
	return c, nil
}

func (r *Notes) ListComplications(ctx context.Context, sessionID int64) ([]*domain.Complication, error) {
	err := r.s.lock("Notes.ListComplications")
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	found := sortedValues(r.s.t.complications, func(c domain.Complication) bool { return c.SessionID == sessionID })
	out := make([]*domain.Complication, len(found))
	for i := range found {
		out[i] = &found[i]
	}
	return out, nil
}
