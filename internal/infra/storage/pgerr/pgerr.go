// Package pgerr классификация ошибок PostgreSQL по SQLSTATE
package pgerr

import (
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
)

const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
	codeExclusionViolation   = "23P01"
	codeLockNotAvailable     = "55P03"
	codeQueryCanceled        = "57014"
)

// Classify добавляет к ошибке драйвера вид доменной ошибки
// Ошибки, уже имеющие вид, возвращаются как есть; прочие считаются ошибками БД
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
			return fmt.Errorf("%w: %w", domain.ErrConflict, err)
		case codeUniqueViolation:
			return fmt.Errorf("%w: %w", domain.ErrAlreadyExists, err)
		case codeForeignKeyViolation, codeCheckViolation, codeExclusionViolation:
			return fmt.Errorf("%w: %w", domain.ErrValidation, err)
		case codeQueryCanceled:
			return fmt.Errorf("%w: %w", domain.ErrDatabase, err)
		}
	}

	if domain.HasKind(err) {
		return err
	}

	return fmt.Errorf("%w: %w", domain.ErrDatabase, err)
}

// IsExclusionViolation проверяет нарушение exclusion constraint (пустое имя - любой)
func IsExclusionViolation(err error, constraint string) bool {
	return isViolation(err, codeExclusionViolation, constraint)
}

// IsUniqueViolation проверяет нарушение уникального индекса constraint (пустое имя - любой)
func IsUniqueViolation(err error, constraint string) bool {
	return isViolation(err, codeUniqueViolation, constraint)
}

func isViolation(err error, code pq.ErrorCode, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != code {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}
