// Package circuitbreaker обертка над sony/gobreaker для вызовов внешних сервисов
package circuitbreaker

import (
	"errors"
	"time"

	"github.com/sony/gobreaker"
)

// ErrOpen возвращается, когда цепь разомкнута и запрос не выполнялся
var ErrOpen = errors.New("circuitbreaker: circuit is open")

// Logger интерфейс для логирования
type Logger interface {
	Warn(format string, v ...interface{})
}

// Config параметры автомата
type Config struct {
	Name string
	// MaxRequests количество пробных запросов в полуоткрытом состоянии
	MaxRequests uint32
	// Interval период сброса счетчиков в замкнутом состоянии
	Interval time.Duration
	// Timeout через сколько разомкнутая цепь переходит в полуоткрытое состояние
	Timeout time.Duration
	// ConsecutiveFailures сколько ошибок подряд размыкают цепь
	ConsecutiveFailures uint32
	// IsSuccessful определяет, какие ошибки не считаются отказом сервиса (например, 404)
	IsSuccessful func(err error) bool
}

// DefaultConfig значения по умолчанию
func DefaultConfig(name string) Config {
	return Config{
		Name:                name,
		MaxRequests:         3,
		Interval:            60 * time.Second,
		Timeout:             30 * time.Second,
		ConsecutiveFailures: 5,
	}
}

// Breaker автомат защиты
type Breaker struct {
	cb *gobreaker.CircuitBreaker
}

// New создает автомат; logger может быть nil
func New(cfg Config, logger Logger) *Breaker {
	isSuccessful := cfg.IsSuccessful
	if isSuccessful == nil {
		isSuccessful = func(err error) bool { return err == nil }
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if logger != nil {
				logger.Warn("circuit breaker %s: %s -> %s", name, from, to)
			}
		},
		IsSuccessful: isSuccessful,
	}

	return &Breaker{cb: gobreaker.NewCircuitBreaker(settings)}
}

// Execute выполняет fn через автомат
func Execute[T any](b *Breaker, fn func() (T, error)) (T, error) {
	var zero T

	result, err := b.cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, ErrOpen
		}
		return zero, err
	}

	typed, _ := result.(T)
	return typed, nil
}

// State текущее состояние: closed, open, half-open
func (b *Breaker) State() string {
	return b.cb.State().String()
}
