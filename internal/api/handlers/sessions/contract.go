package sessions

import (
	"context"
	"time"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
	"github.com/m04kA/SMC-DialysisService/internal/service/sessions"
)

type SessionService interface {
	Create(ctx context.Context, req *sessions.CreateRequest) (*domain.Session, error)
	GetByID(ctx context.Context, id int64) (*sessions.SessionView, error)
	ListByCenterAndDate(ctx context.Context, centerID int64, date time.Time) ([]*domain.Session, error)
	AssignMachine(ctx context.Context, sessionID, assetID, userID int64) (*domain.Session, error)
	Start(ctx context.Context, sessionID, startedBy int64) (*domain.Session, error)
	Complete(ctx context.Context, sessionID int64, postNotes *string, completedBy int64) (*sessions.CompleteResult, error)
	Terminate(ctx context.Context, sessionID int64, reason string, completedBy int64) (*domain.Session, error)
	ReportComplication(ctx context.Context, req *sessions.ComplicationRequest) (*domain.Complication, error)
	RecordNotes(ctx context.Context, sessionID int64, inputs []domain.NoteInput, userID int64) ([]*domain.SessionNote, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
