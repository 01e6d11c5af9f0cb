// Package handlers общие помощники HTTP слоя: разбор запроса и JSON ответы
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
)

const (
	msgInternalError = "внутренняя ошибка сервера"
	msgDatabaseError = "хранилище временно недоступно"
)

// ErrBadParam некорректный параметр пути или запроса
var ErrBadParam = errors.New("handlers: invalid parameter")

// ErrorResponse тело ответа с ошибкой
type ErrorResponse struct {
	Code    int    `json:"code"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
}

// DecodeJSON разбирает тело запроса; неизвестные поля запрещены
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// RespondJSON пишет ответ с кодом status
func RespondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// RespondError пишет ошибку без вида
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorResponse{Code: status, Message: message})
}

func RespondBadRequest(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusBadRequest, message)
}

func RespondNotFound(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusNotFound, message)
}

func RespondUnauthorized(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusUnauthorized, message)
}

func RespondInternalError(w http.ResponseWriter) {
	RespondError(w, http.StatusInternalServerError, msgInternalError)
}

// StatusOf HTTP код для вида ошибки
func StatusOf(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindAlreadyExists, domain.KindConflict:
		return http.StatusConflict
	case domain.KindDatabase:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// RespondDomainError пишет ошибку сервиса с видом; текст ошибок хранилища наружу не отдается
func RespondDomainError(w http.ResponseWriter, err error) {
	kind := domain.KindOf(err)
	status := StatusOf(kind)

	message := err.Error()
	switch kind {
	case domain.KindDatabase:
		message = msgDatabaseError
	case domain.KindInternal:
		message = msgInternalError
	}

	RespondJSON(w, status, ErrorResponse{Code: status, Kind: string(kind), Message: message})
}

// Logger логгер для Fail
type Logger interface {
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Fail логирует ошибку сервиса и пишет ответ; ошибки клиента идут в Warn
func Fail(w http.ResponseWriter, log Logger, route string, err error) {
	if StatusOf(domain.KindOf(err)) >= http.StatusInternalServerError {
		log.Error("%s - %v", route, err)
	} else {
		log.Warn("%s - %v", route, err)
	}
	RespondDomainError(w, err)
}

// PathInt64 положительный числовой параметр пути
func PathInt64(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s", ErrBadParam, name)
	}
	return id, nil
}

// QueryDate обязательный параметр запроса в формате YYYY-MM-DD
func QueryDate(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: %s is required", ErrBadParam, name)
	}
	return ParseDate(raw)
}

// ParseDate дата в формате YYYY-MM-DD
func ParseDate(raw string) (time.Time, error) {
	date, err := time.Parse(domain.DateFormat, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q, expected YYYY-MM-DD", ErrBadParam, raw)
	}
	return date, nil
}
