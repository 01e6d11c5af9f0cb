package sessions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
	sessionRepo "github.com/m04kA/SMC-DialysisService/internal/infra/storage/session"
	"github.com/m04kA/SMC-DialysisService/internal/service/assignments"
	"github.com/m04kA/SMC-DialysisService/pkg/locker"
)

const metricsComponent = "sessions"

// Service машина состояний сеанса диализа
type Service struct {
	sessionRepo     SessionRepository
	appointmentRepo AppointmentRepository
	assetRepo       AssetRepository
	noteRepo        NoteRepository
	catalog         ItemCatalog
	machines        MachineTracker
	inventory       InventoryLedger
	cycles          CycleRecorder
	txManager       TransactionManager
	locker          Locker
	metrics         MetricsRecorder
	timeProvider    TimeProvider
	logger          Logger
}

// Deps зависимости сервиса
type Deps struct {
	Sessions     SessionRepository
	Appointments AppointmentRepository
	Assets       AssetRepository
	Notes        NoteRepository
	Catalog      ItemCatalog
	Machines     MachineTracker
	Inventory    InventoryLedger
	Cycles       CycleRecorder
	TxManager    TransactionManager
	Locker       Locker
	Metrics      MetricsRecorder
	Logger       Logger
}

// NewService создает новый экземпляр сервиса
func NewService(d Deps) *Service {
	return &Service{
		sessionRepo:     d.Sessions,
		appointmentRepo: d.Appointments,
		assetRepo:       d.Assets,
		noteRepo:        d.Notes,
		catalog:         d.Catalog,
		machines:        d.Machines,
		inventory:       d.Inventory,
		cycles:          d.Cycles,
		txManager:       d.TxManager,
		locker:          d.Locker,
		metrics:         d.Metrics,
		timeProvider:    &RealTimeProvider{},
		logger:          d.Logger,
	}
}

// WithTimeProvider подменяет часы (для тестов)
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// LockKey ключ блокировки сеанса
func LockKey(sessionID int64) string {
	return locker.Key("session", sessionID)
}

// Create создает сеанс для записи, не более одного на запись
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*domain.Session, error) {
	s.logger.Info("Create: appointment=%d", req.AppointmentID)

	// 1. Валидация входных данных
	if req.AppointmentID <= 0 {
		return nil, fmt.Errorf("%w: appointment is required", ErrInvalidInput)
	}
	if err := checkText("pre notes", req.PreNotes, domain.MaxNotesLength); err != nil {
		return nil, err
	}

	var result *domain.Session

	// 2. Запись не отменена, сеанс создается в той же транзакции
	err := s.withLock(ctx, []string{locker.Key("appointment", req.AppointmentID)}, func(lockCtx context.Context) error {
		return s.txManager.DoSerializable(lockCtx, func(txCtx context.Context) error {
			appointment, err := s.appointmentRepo.GetByID(txCtx, req.AppointmentID)
			if err != nil {
				return fmt.Errorf("Create - get appointment: %w", err)
			}
			if appointment.Status == domain.AppointmentCancelled {
				return ErrAppointmentCancelled
			}

			created, err := s.sessionRepo.Create(txCtx, &domain.Session{
				AppointmentID: appointment.ID,
				PatientID:     appointment.PatientID,
				CenterID:      appointment.CenterID,
				SessionDate:   appointment.Date,
				Scheduled:     appointment.Slot,
				Status:        domain.SessionNotStarted,
				PreNotes:      req.PreNotes,
				CreatedBy:     req.CreatedBy,
			})
			if err != nil {
				if errors.Is(err, sessionRepo.ErrSessionExists) {
					return ErrSessionExists
				}
				s.logger.Error("Create: failed to create session: %v", err)
				return fmt.Errorf("Create - create session: %w", err)
			}

			result = created
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveDomainEvent(metricsComponent, "created")
	s.logger.Info("Create: session id=%d for appointment=%d", result.ID, result.AppointmentID)
	return result, nil
}

// AssignMachine назначает аппарат на интервал записи; прежнее назначение отменяется
func (s *Service) AssignMachine(ctx context.Context, sessionID, assetID, userID int64) (*domain.Session, error) {
	s.logger.Info("AssignMachine: session=%d, asset=%d", sessionID, assetID)

	// 1. Сеанс и аппарат одного центра
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("AssignMachine - get session: %w", err)
	}
	asset, err := s.assetRepo.GetAsset(ctx, assetID)
	if err != nil {
		s.logger.Warn("AssignMachine: asset=%d: %v", assetID, err)
		return nil, fmt.Errorf("AssignMachine - get asset: %w", err)
	}
	if asset.CenterID != session.CenterID {
		return nil, ErrAssetWrongCenter
	}

	keys := []string{LockKey(sessionID), assignments.LockKey(assetID, session.SessionDate)}

	// 2. Замена назначения под блокировками сеанса и аппарата
	err = s.withLock(ctx, keys, func(lockCtx context.Context) error {
		return s.txManager.DoSerializable(lockCtx, func(txCtx context.Context) error {
			current, err := s.sessionRepo.GetByID(txCtx, sessionID)
			if err != nil {
				return fmt.Errorf("AssignMachine - get session: %w", err)
			}
			if current.Status != domain.SessionNotStarted {
				s.logger.Warn("AssignMachine: session=%d is %s", sessionID, current.Status)
				return ErrInvalidTransition
			}

			if current.AssignmentID != nil {
				if err := s.machines.Release(txCtx, *current.AssignmentID, domain.AssignmentCancelled); err != nil {
					return fmt.Errorf("AssignMachine - release previous: %w", err)
				}
			}

			assignment, err := s.machines.Assign(txCtx, &assignments.AssignRequest{
				AssetID:       assetID,
				AppointmentID: current.AppointmentID,
				SessionID:     &current.ID,
				Date:          current.SessionDate,
				Range:         current.Scheduled,
				CreatedBy:     userID,
			})
			if err != nil {
				return err
			}

			if err := s.sessionRepo.SetMachine(txCtx, current.ID, assetID, assignment.ID); err != nil {
				return fmt.Errorf("AssignMachine - set machine: %w", err)
			}

			current.AssetID = &assetID
			current.AssignmentID = &assignment.ID
			session = current
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("AssignMachine: session=%d -> asset=%d, assignment=%d", session.ID, assetID, *session.AssignmentID)
	return session, nil
}

// GetByID сеанс с производными длительностями, наблюдениями, осложнениями и материалами
func (s *Service) GetByID(ctx context.Context, id int64) (*SessionView, error) {
	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetByID - get session: %w", err)
	}

	notes, err := s.noteRepo.ListNotes(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetByID - list notes: %w", err)
	}
	complications, err := s.noteRepo.ListComplications(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetByID - list complications: %w", err)
	}
	selections, err := s.inventory.ListSelections(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetByID - list selections: %w", err)
	}

	return &SessionView{
		Session:         session,
		ElapsedMinutes:  session.ElapsedMinutes(s.timeProvider.Now()),
		DurationMinutes: session.DurationMinutes(),
		Notes:           notes,
		Complications:   complications,
		Selections:      selections,
	}, nil
}

// ListByCenterAndDate сеансы центра за день
func (s *Service) ListByCenterAndDate(ctx context.Context, centerID int64, date time.Time) ([]*domain.Session, error) {
	sessions, err := s.sessionRepo.ListByCenterAndDate(ctx, centerID, domain.TruncateDate(date))
	if err != nil {
		return nil, fmt.Errorf("ListByCenterAndDate - list sessions: %w", err)
	}
	return sessions, nil
}

func (s *Service) withLock(ctx context.Context, keys []string, fn func(ctx context.Context) error) error {
	err := s.locker.WithLock(ctx, keys, fn)
	if errors.Is(err, locker.ErrLockNotAcquired) {
		s.logger.Warn("lock not acquired: %v", err)
		return fmt.Errorf("%w: %v", ErrResourceBusy, err)
	}
	return err
}

func checkText(field string, value *string, limit int) error {
	if value == nil {
		return nil
	}
	if utf8.RuneCountInString(*value) > limit {
		return fmt.Errorf("%w: %s exceeds %d characters", ErrInvalidInput, field, limit)
	}
	return nil
}

func requireText(field, value string, limit int) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%w: %s is required", ErrInvalidInput, field)
	}
	if utf8.RuneCountInString(value) > limit {
		return "", fmt.Errorf("%w: %s exceeds %d characters", ErrInvalidInput, field, limit)
	}
	return value, nil
}
