package assignments

import (
	"context"
	"time"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
	"github.com/m04kA/SMC-DialysisService/internal/service/assignments"
)

type AssignmentService interface {
	IsAssetAvailable(ctx context.Context, assetID int64, date time.Time, rng domain.TimeRange) (bool, error)
	Assign(ctx context.Context, req *assignments.AssignRequest) (*domain.AssetAssignment, error)
	Release(ctx context.Context, assignmentID int64, status domain.AssignmentStatus) error
	ListActiveByAsset(ctx context.Context, assetID int64, date time.Time) ([]*domain.AssetAssignment, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
