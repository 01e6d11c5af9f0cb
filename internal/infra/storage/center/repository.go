package center

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
	"github.com/m04kA/SMC-DialysisService/internal/infra/storage/pgerr"
	"github.com/m04kA/SMC-DialysisService/pkg/dbmetrics"
	"github.com/m04kA/SMC-DialysisService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-DialysisService/pkg/types"
)

// Repository реестр центров и аппаратов (только чтение для ядра, запись для сидов)
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория центров
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

var centerColumns = []string{
	"id",
	"company_id",
	"name",
	"open_time",
	"close_time",
	"slot_duration_minutes",
	"is_active",
	"created_at",
	"updated_at",
}

var assetColumns = []string{
	"id",
	"center_id",
	"name",
	"is_active",
	"created_at",
}

// Create создает центр
func (r *Repository) Create(ctx context.Context, c *domain.Center) (*domain.Center, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("centers").
		Columns("company_id", "name", "open_time", "close_time", "slot_duration_minutes", "is_active").
		Values(
			c.CompanyID,
			c.Name,
			types.FromMinutes(c.Config.OpenMinute),
			types.FromMinutes(c.Config.CloseMinute),
			c.Config.SlotDurationMinutes,
			c.IsActive,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, pgerr.Classify(err))
	}

	return c, nil
}

// GetByID получает центр по ID вместе с окном работы
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Center, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(centerColumns...).
		From("centers").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var (
		c               domain.Center
		openAt, closeAt types.TimeString
		slotDuration    int
	)

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&c.ID,
		&c.CompanyID,
		&c.Name,
		&openAt,
		&closeAt,
		&slotDuration,
		&c.IsActive,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCenterNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan center: %w", ErrScanRow, pgerr.Classify(err))
	}

	cfg, err := domain.NewCenterConfig(openAt, closeAt, slotDuration)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - center id=%d: %v", ErrInvalidConfig, id, err)
	}
	c.Config = cfg

	return &c, nil
}

// CreateAsset регистрирует аппарат в центре
func (r *Repository) CreateAsset(ctx context.Context, a *domain.Asset) (*domain.Asset, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("assets").
		Columns("center_id", "name", "is_active").
		Values(a.CenterID, a.Name, a.IsActive).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: CreateAsset - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&a.ID, &a.CreatedAt); err != nil {
		return nil, fmt.Errorf("%w: CreateAsset - execute insert: %w", ErrExecQuery, pgerr.Classify(err))
	}

	return a, nil
}

// GetAsset получает аппарат по ID
func (r *Repository) GetAsset(ctx context.Context, id int64) (*domain.Asset, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(assetColumns...).
		From("assets").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetAsset - build select query: %v", ErrBuildQuery, err)
	}

	var a domain.Asset
	err = executor.QueryRowContext(ctx, query, args...).Scan(&a.ID, &a.CenterID, &a.Name, &a.IsActive, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAssetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetAsset - scan asset: %w", ErrScanRow, pgerr.Classify(err))
	}

	return &a, nil
}

// ListAssets получает аппараты центра; activeOnly - только активные
func (r *Repository) ListAssets(ctx context.Context, centerID int64, activeOnly bool) ([]*domain.Asset, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(assetColumns...).
		From("assets").
		Where(squirrel.Eq{"center_id": centerID}).
		OrderBy("id ASC")
	if activeOnly {
		builder = builder.Where(squirrel.Eq{"is_active": true})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListAssets - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListAssets - execute query: %w", ErrExecQuery, pgerr.Classify(err))
	}
	defer rows.Close()

	assets := make([]*domain.Asset, 0)
	for rows.Next() {
		var a domain.Asset
		if err := rows.Scan(&a.ID, &a.CenterID, &a.Name, &a.IsActive, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: ListAssets - scan row: %v", ErrScanRow, err)
		}
		assets = append(assets, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListAssets - rows error: %v", ErrScanRow, err)
	}

	return assets, nil
}

// CountActiveAssets количество активных аппаратов центра (емкость каждого слота)
func (r *Repository) CountActiveAssets(ctx context.Context, centerID int64) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From("assets").
		Where(squirrel.Eq{"center_id": centerID, "is_active": true}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: CountActiveAssets - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountActiveAssets - scan count: %w", ErrScanRow, pgerr.Classify(err))
	}

	return count, nil
}
