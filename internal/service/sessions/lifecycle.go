package sessions

import (
	"context"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
)

// Start переводит сеанс в in_progress
// Проверки по порядку: запись в статусе scheduled, аппарат назначен и назначение активно,
// выбран хотя бы один материал, выбраны все обязательные позиции
func (s *Service) Start(ctx context.Context, sessionID, startedBy int64) (*domain.Session, error) {
	s.logger.Info("Start: session=%d, user=%d", sessionID, startedBy)

	var result *domain.Session
	err := s.withLock(ctx, []string{LockKey(sessionID)}, func(lockCtx context.Context) error {
		return s.txManager.DoSerializable(lockCtx, func(txCtx context.Context) error {
			// 1. Статус допускает старт
			session, err := s.sessionRepo.GetByID(txCtx, sessionID)
			if err != nil {
				return fmt.Errorf("Start - get session: %w", err)
			}
			if !session.Status.CanTransitionTo(domain.SessionInProgress) {
				s.logger.Warn("Start: session=%d is %s", sessionID, session.Status)
				return ErrInvalidTransition
			}

			// 2. Запись
			appointment, err := s.appointmentRepo.GetByID(txCtx, session.AppointmentID)
			if err != nil {
				return fmt.Errorf("Start - get appointment: %w", err)
			}
			if appointment.Status != domain.AppointmentScheduled {
				s.logger.Warn("Start: session=%d appointment=%d is %s", sessionID, appointment.ID, appointment.Status)
				return fmt.Errorf("%w: %s", ErrAppointmentNotScheduled, appointment.Status)
			}

			// 3. Аппарат
			if !session.HasMachine() {
				return ErrMachineRequired
			}
			assignment, err := s.machines.GetByID(txCtx, *session.AssignmentID)
			if err != nil {
				return fmt.Errorf("Start - get machine assignment: %w", err)
			}
			if assignment.Status != domain.AssignmentActive {
				s.logger.Warn("Start: session=%d assignment=%d is %s", sessionID, assignment.ID, assignment.Status)
				return ErrMachineReleased
			}

			// 4. Материалы
			selections, err := s.inventory.ListSelections(txCtx, sessionID)
			if err != nil {
				return fmt.Errorf("Start - list selections: %w", err)
			}
			if len(selections) == 0 {
				return ErrInventoryRequired
			}
			if err := s.checkMandatoryItems(txCtx, selections); err != nil {
				return err
			}

			// 5. Старт сеанса и записи
			now := s.timeProvider.Now()
			if err := s.sessionRepo.MarkStarted(txCtx, sessionID, now, startedBy); err != nil {
				return fmt.Errorf("Start - mark started: %w", err)
			}
			if err := s.appointmentRepo.UpdateStatus(txCtx, session.AppointmentID, domain.AppointmentInProgress); err != nil {
				return fmt.Errorf("Start - update appointment: %w", err)
			}

			session.Status = domain.SessionInProgress
			session.ActualStart = &now
			session.StartedBy = &startedBy
			result = session
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveDomainEvent(metricsComponent, "started")
	return result, nil
}

func (s *Service) checkMandatoryItems(ctx context.Context, selections []*domain.InventorySelection) error {
	mandatory, err := s.catalog.ListMandatoryItems(ctx)
	if err != nil {
		return fmt.Errorf("Start - list mandatory items: %w", err)
	}

	selected := make(map[int64]bool, len(selections))
	for _, sel := range selections {
		selected[sel.ItemID] = true
	}

	var missing []string
	for _, item := range mandatory {
		if !selected[item.ID] {
			missing = append(missing, item.Name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMandatoryInventoryMissing, strings.Join(missing, ", "))
	}
	return nil
}

// Complete завершает сеанс: аппарат освобождается, материалы списываются в расход, запись завершается.
// После фиксации увеличивается счетчик курса; его недоступность не отменяет завершение
func (s *Service) Complete(ctx context.Context, sessionID int64, postNotes *string, completedBy int64) (*CompleteResult, error) {
	s.logger.Info("Complete: session=%d, user=%d", sessionID, completedBy)

	if err := checkText("post notes", postNotes, domain.MaxNotesLength); err != nil {
		return nil, err
	}

	session, err := s.finish(ctx, "Complete", sessionID, domain.SessionCompleted, func(txCtx context.Context, sess *domain.Session) error {
		missing, err := s.noteRepo.MissingMandatoryNoteTypes(txCtx, sess.ID)
		if err != nil {
			return fmt.Errorf("Complete - mandatory notes: %w", err)
		}
		if len(missing) > 0 {
			codes := make([]string, len(missing))
			for i, nt := range missing {
				codes[i] = nt.Code
			}
			return fmt.Errorf("%w: %s", ErrMandatoryNotesMissing, strings.Join(codes, ", "))
		}

		sess.PostNotes = postNotes
		sess.CompletedBy = &completedBy
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &CompleteResult{Session: session}
	notice, err := s.cycles.RecordCompletion(ctx, session.PatientID)
	if err != nil {
		s.logger.Warn("Complete: session=%d completed, treatment cycle not updated: %v", session.ID, err)
	} else {
		result.CycleNotice = notice
	}

	return result, nil
}

// Terminate прерывает сеанс с обязательной причиной
func (s *Service) Terminate(ctx context.Context, sessionID int64, reason string, completedBy int64) (*domain.Session, error) {
	s.logger.Info("Terminate: session=%d, user=%d", sessionID, completedBy)

	reason, err := requireText("reason", reason, domain.MaxReasonLength)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReasonRequired, err)
	}

	return s.finish(ctx, "Terminate", sessionID, domain.SessionTerminated, func(_ context.Context, sess *domain.Session) error {
		sess.TerminationReason = &reason
		sess.CompletedBy = &completedBy
		return nil
	})
}

// finish общий путь перехода в конечный статус
func (s *Service) finish(ctx context.Context, op string, sessionID int64, status domain.SessionStatus, prepare func(ctx context.Context, sess *domain.Session) error) (*domain.Session, error) {
	appointmentStatus := domain.AppointmentCompleted
	if status == domain.SessionTerminated {
		appointmentStatus = domain.AppointmentTerminated
	}

	var result *domain.Session
	err := s.withLock(ctx, []string{LockKey(sessionID)}, func(lockCtx context.Context) error {
		return s.txManager.DoSerializable(lockCtx, func(txCtx context.Context) error {
			// 1. Статус допускает переход
			session, err := s.sessionRepo.GetByID(txCtx, sessionID)
			if err != nil {
				return fmt.Errorf("%s - get session: %w", op, err)
			}
			if !session.Status.CanTransitionTo(status) {
				s.logger.Warn("%s: session=%d is %s", op, sessionID, session.Status)
				return ErrInvalidTransition
			}
			appointment, err := s.appointmentRepo.GetByID(txCtx, session.AppointmentID)
			if err != nil {
				return fmt.Errorf("%s - get appointment: %w", op, err)
			}
			if !appointment.Status.CanTransitionTo(appointmentStatus) {
				s.logger.Warn("%s: session=%d appointment=%d is %s", op, sessionID, appointment.ID, appointment.Status)
				return fmt.Errorf("%w: %s", ErrAppointmentStatusConflict, appointment.Status)
			}

			// 2. Проверки и поля конкретного перехода
			if err := prepare(txCtx, session); err != nil {
				return err
			}

			// 3. Фиксация статуса
			now := s.timeProvider.Now()
			session.Status = status
			session.ActualEnd = &now
			if err := s.sessionRepo.MarkFinished(txCtx, session); err != nil {
				return fmt.Errorf("%s - mark finished: %w", op, err)
			}

			// 4. Освобождение аппарата
			if session.AssignmentID != nil {
				if err := s.machines.Release(txCtx, *session.AssignmentID, domain.AssignmentCompleted); err != nil {
					return fmt.Errorf("%s - release machine: %w", op, err)
				}
			}

			// 5. Расход материалов
			if err := s.inventory.FinalizeConsumption(txCtx, session.ID); err != nil {
				return fmt.Errorf("%s - finalize inventory: %w", op, err)
			}

			// 6. Статус записи
			if err := s.appointmentRepo.UpdateStatus(txCtx, session.AppointmentID, appointmentStatus); err != nil {
				return fmt.Errorf("%s - update appointment: %w", op, err)
			}

			result = session
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveDomainEvent(metricsComponent, string(status))
	s.logger.Info("%s: session=%d -> %s", op, result.ID, status)
	return result, nil
}
