package cycles

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
)

// Tracker адаптер над внешним счетчиком курса лечения
// Сам курс не рассчитывает: увеличивает счетчик и сравнивает ответ с политикой
type Tracker struct {
	counter      CycleCounter
	policy       domain.CyclePolicy
	timeProvider TimeProvider
	logger       Logger
}

// NewTracker создает трекер с политикой из конфигурации
func NewTracker(counter CycleCounter, policy domain.CyclePolicy, logger Logger) *Tracker {
	return &Tracker{
		counter:      counter,
		policy:       policy,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет часы (для тестов)
func (t *Tracker) WithTimeProvider(tp TimeProvider) *Tracker {
	t.timeProvider = tp
	return t
}

// RecordCompletion увеличивает счетчик пациента и возвращает информационное уведомление
func (t *Tracker) RecordCompletion(ctx context.Context, patientID int64) (*domain.CycleNotice, error) {
	progress, err := t.counter.IncrementTreatmentCycle(ctx, patientID)
	if err != nil {
		t.logger.Error("RecordCompletion: patient=%d: %v", patientID, err)
		return nil, fmt.Errorf("RecordCompletion - increment counter: %w", err)
	}

	notice := t.policy.Notice(domain.CycleProgress{
		PatientID:         patientID,
		CompletedSessions: progress.CompletedSessions,
		CycleStartedAt:    progress.CycleStartedAt,
	}, t.timeProvider.Now())

	if notice.CycleComplete {
		t.logger.Info("RecordCompletion: patient=%d completed treatment cycle (%d/%d)",
			patientID, notice.CompletedSessions, notice.SessionsPerCycle)
	}
	return notice, nil
}

// Policy текущая политика курса
func (t *Tracker) Policy() domain.CyclePolicy {
	return t.policy
}
