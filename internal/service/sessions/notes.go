package sessions

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
)

// ReportComplication фиксирует осложнение; допускается только во время сеанса
func (s *Service) ReportComplication(ctx context.Context, req *ComplicationRequest) (*domain.Complication, error) {
	s.logger.Info("ReportComplication: session=%d, severity=%s", req.SessionID, req.Severity)

	description, err := requireText("description", req.Description, domain.MaxContentLength)
	if err != nil {
		return nil, err
	}
	if _, err := domain.ParseComplicationSeverity(string(req.Severity)); err != nil {
		return nil, err
	}

	var result *domain.Complication
	err = s.withLock(ctx, []string{LockKey(req.SessionID)}, func(lockCtx context.Context) error {
		return s.txManager.DoSerializable(lockCtx, func(txCtx context.Context) error {
			session, err := s.sessionRepo.GetByID(txCtx, req.SessionID)
			if err != nil {
				return fmt.Errorf("ReportComplication - get session: %w", err)
			}
			if session.Status != domain.SessionInProgress {
				return fmt.Errorf("%w: complications are reported only during the session", ErrInvalidTransition)
			}

			created, err := s.noteRepo.CreateComplication(txCtx, &domain.Complication{
				SessionID:   session.ID,
				Description: description,
				Severity:    req.Severity,
				ReportedBy:  req.ReportedBy,
			})
			if err != nil {
				return fmt.Errorf("ReportComplication - create: %w", err)
			}

			result = created
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveDomainEvent(metricsComponent, "complication_"+string(req.Severity))
	return result, nil
}

// RecordNote записывает одно наблюдение
func (s *Service) RecordNote(ctx context.Context, sessionID, noteTypeID int64, content string, userID int64) (*domain.SessionNote, error) {
	notes, err := s.RecordNotes(ctx, sessionID, []domain.NoteInput{{NoteTypeID: noteTypeID, Content: content}}, userID)
	if err != nil {
		return nil, err
	}
	return notes[0], nil
}

// RecordNotes записывает набор наблюдений: либо все, либо ни одного
func (s *Service) RecordNotes(ctx context.Context, sessionID int64, inputs []domain.NoteInput, userID int64) ([]*domain.SessionNote, error) {
	s.logger.Info("RecordNotes: session=%d, count=%d", sessionID, len(inputs))

	// 1. Валидация входных данных
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: at least one note is required", ErrInvalidInput)
	}
	notes := make([]*domain.SessionNote, len(inputs))
	for i, in := range inputs {
		content, err := requireText("content", in.Content, domain.MaxContentLength)
		if err != nil {
			return nil, err
		}
		notes[i] = &domain.SessionNote{
			SessionID:  sessionID,
			NoteTypeID: in.NoteTypeID,
			Content:    content,
			RecordedBy: userID,
		}
	}

	// 2. Сеанс открыт, типы наблюдений существуют, запись одной транзакцией
	err := s.withLock(ctx, []string{LockKey(sessionID)}, func(lockCtx context.Context) error {
		return s.txManager.DoSerializable(lockCtx, func(txCtx context.Context) error {
			session, err := s.sessionRepo.GetByID(txCtx, sessionID)
			if err != nil {
				return fmt.Errorf("RecordNotes - get session: %w", err)
			}
			if session.Status.IsTerminal() {
				return ErrSessionClosed
			}

			for _, n := range notes {
				if _, err := s.noteRepo.GetNoteType(txCtx, n.NoteTypeID); err != nil {
					return fmt.Errorf("RecordNotes - get note type %d: %w", n.NoteTypeID, err)
				}
			}

			if err := s.noteRepo.CreateNotes(txCtx, notes); err != nil {
				s.logger.Error("RecordNotes: session=%d: %v", sessionID, err)
				return fmt.Errorf("RecordNotes - create notes: %w", err)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return notes, nil
}
