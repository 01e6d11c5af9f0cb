package patientservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/m04kA/SMC-DialysisService/pkg/circuitbreaker"
)

// Client клиент реестра пациентов и счетчика курсов лечения
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *circuitbreaker.Breaker
	log        Logger
}

// NewClient создает новый экземпляр клиента реестра пациентов
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	cfg := circuitbreaker.DefaultConfig("patientservice")
	// 404 и 400 - ответы бизнес-логики, цепь из-за них не размыкается
	cfg.IsSuccessful = func(err error) bool {
		return err == nil || errors.Is(err, ErrPatientNotFound) || errors.Is(err, ErrInvalidRequest)
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		breaker: circuitbreaker.New(cfg, log),
		log:     log,
	}
}

// GetPatient получает пациента по ID
func (c *Client) GetPatient(ctx context.Context, patientID int64) (*Patient, error) {
	url := fmt.Sprintf("%s/internal/patients/%d", c.baseURL, patientID)

	var patient Patient
	if err := c.call(ctx, http.MethodGet, url, &patient); err != nil {
		return nil, err
	}

	return &patient, nil
}

// IncrementTreatmentCycle увеличивает счетчик завершенных сеансов курса и возвращает его состояние
func (c *Client) IncrementTreatmentCycle(ctx context.Context, patientID int64) (*CycleProgress, error) {
	url := fmt.Sprintf("%s/internal/patients/%d/treatment-cycles/increment", c.baseURL, patientID)

	var progress CycleProgress
	if err := c.call(ctx, http.MethodPost, url, &progress); err != nil {
		return nil, err
	}
	if progress.PatientID == 0 {
		progress.PatientID = patientID
	}

	return &progress, nil
}

// call выполняет запрос через circuit breaker и декодирует ответ в out
func (c *Client) call(ctx context.Context, method, url string, out any) error {
	_, err := circuitbreaker.Execute(c.breaker, func() (struct{}, error) {
		return struct{}{}, c.do(ctx, method, url, out)
	})
	if errors.Is(err, circuitbreaker.ErrOpen) {
		c.log.Warn("patientservice: circuit open, %s %s rejected", method, url)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}

func (c *Client) do(ctx context.Context, method, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInvalidResponse, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	// Обработка статус-кодов
	switch resp.StatusCode {
	case http.StatusOK:
		// Продолжаем обработку
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrInvalidRequest, readMessage(resp.Body))
	case http.StatusNotFound:
		return ErrPatientNotFound
	default:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrUnavailable, resp.StatusCode, string(body))
	}

	// Парсим ответ
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	return nil
}

func readMessage(body io.Reader) string {
	var errResp ErrorResponse
	if err := json.NewDecoder(body).Decode(&errResp); err != nil {
		return "bad request"
	}
	return errResp.Message
}
