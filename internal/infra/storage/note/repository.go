package note

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
)

// Repository наблюдения и осложнения сеансов, справочник типов наблюдений
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория наблюдений
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// CreateNoteType добавляет тип наблюдения в справочник
func (r *Repository) CreateNoteType(ctx context.Context, nt *domain.NoteType) (*domain.NoteType, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("note_types").
		Columns("code", "name", "is_mandatory").
		Values(nt.Code, nt.Name, nt.IsMandatory).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: CreateNoteType - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&nt.ID); err != nil {
		return nil, fmt.Errorf("%w: CreateNoteType - execute insert: %w", ErrExecQuery, pgerr.Classify(err))
	}

	return nt, nil
}

// GetNoteType получает тип наблюдения
func (r *Repository) GetNoteType(ctx context.Context, id int64) (*domain.NoteType, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "code", "name", "is_mandatory").
		From("note_types").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetNoteType - build select query: %v", ErrBuildQuery, err)
	}

	var nt domain.NoteType
	err = executor.QueryRowContext(ctx, query, args...).Scan(&nt.ID, &nt.Code, &nt.Name, &nt.IsMandatory)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoteTypeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetNoteType - scan: %w", ErrScanRow, pgerr.Classify(err))
	}

	return &nt, nil
}

// ListNoteTypes весь справочник типов наблюдений
func (r *Repository) ListNoteTypes(ctx context.Context) ([]*domain.NoteType, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "code", "name", "is_mandatory").
		From("note_types").
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListNoteTypes - build select query: %v", ErrBuildQuery, err)
	}

	return r.queryNoteTypes(ctx, executor, "ListNoteTypes", query, args)
}

// MissingMandatoryNoteTypes обязательные типы наблюдений, не записанные для сеанса
func (r *Repository) MissingMandatoryNoteTypes(ctx context.Context, sessionID int64) ([]*domain.NoteType, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	recorded := psqlbuilder.Select("1").
		From("session_notes sn").
		Where("sn.note_type_id = nt.id").
		Where(squirrel.Eq{"sn.session_id": sessionID})

	recordedSQL, recordedArgs, err := recorded.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: MissingMandatoryNoteTypes - build subquery: %v", ErrBuildQuery, err)
	}

	// подзапрос собран отдельно, плейсхолдеры у него свои ($1)
	query := `SELECT nt.id, nt.code, nt.name, nt.is_mandatory FROM note_types nt
		WHERE nt.is_mandatory = TRUE AND NOT EXISTS (` + recordedSQL + `)
		ORDER BY nt.id ASC`

	return r.queryNoteTypes(ctx, executor, "MissingMandatoryNoteTypes", query, recordedArgs)
}

func (r *Repository) queryNoteTypes(ctx context.Context, executor DBExecutor, op, query string, args []any) ([]*domain.NoteType, error) {
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %w", ErrExecQuery, op, pgerr.Classify(err))
	}
	defer rows.Close()

	types := make([]*domain.NoteType, 0)
	for rows.Next() {
		var nt domain.NoteType
		if err := rows.Scan(&nt.ID, &nt.Code, &nt.Name, &nt.IsMandatory); err != nil {
			return nil, fmt.Errorf("%w: %s - scan row: %v", ErrScanRow, op, err)
		}
		types = append(types, &nt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %w", ErrScanRow, op, pgerr.Classify(err))
	}

	return types, nil
}

// CreateNotes записывает наблюдения одним INSERT: либо все, либо ни одного
func (r *Repository) CreateNotes(ctx context.Context, notes []*domain.SessionNote) error {
	if len(notes) == 0 {
		return nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Insert("session_notes").
		Columns("session_id", "note_type_id", "content", "recorded_by").
		Suffix("RETURNING id, recorded_at")
	for _, n := range notes {
		builder = builder.Values(n.SessionID, n.NoteTypeID, n.Content, n.RecordedBy)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: CreateNotes - build insert query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: CreateNotes - execute insert: %w", ErrExecQuery, pgerr.Classify(err))
	}
	defer rows.Close()

	i := 0
	for rows.Next() {
		if i >= len(notes) {
			break
		}
		if err := rows.Scan(&notes[i].ID, &notes[i].RecordedAt); err != nil {
			return fmt.Errorf("%w: CreateNotes - scan row: %v", ErrScanRow, err)
		}
		i++
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: CreateNotes - rows error: %w", ErrScanRow, pgerr.Classify(err))
	}

	return nil
}

// ListNotes наблюдения сеанса
func (r *Repository) ListNotes(ctx context.Context, sessionID int64) ([]*domain.SessionNote, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "session_id", "note_type_id", "content", "recorded_by", "recorded_at").
		From("session_notes").
		Where(squirrel.Eq{"session_id": sessionID}).
		OrderBy("recorded_at ASC, id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListNotes - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListNotes - execute query: %w", ErrExecQuery, pgerr.Classify(err))
	}
	defer rows.Close()

	notes := make([]*domain.SessionNote, 0)
	for rows.Next() {
		var n domain.SessionNote
		if err := rows.Scan(&n.ID, &n.SessionID, &n.NoteTypeID, &n.Content, &n.RecordedBy, &n.RecordedAt); err != nil {
			return nil, fmt.Errorf("%w: ListNotes - scan row: %v", ErrScanRow, err)
		}
		notes = append(notes, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListNotes - rows error: %w", ErrScanRow, pgerr.Classify(err))
	}

	return notes, nil
}

// CreateComplication регистрирует осложнение
func (r *Repository) CreateComplication(ctx context.Context, c *domain.Complication) (*domain.Complication, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("complications").
		Columns("session_id", "description", "severity", "reported_by").
		Values(c.SessionID, c.Description, c.Severity, c.ReportedBy).
		Suffix("RETURNING id, reported_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: CreateComplication - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&c.ID, &c.ReportedAt); err != nil {
		return nil, fmt.Errorf("%w: CreateComplication - execute insert: %w", ErrExecQuery, pgerr.Classify(err))
	}

	return c, nil
}

// ListComplications осложнения сеанса
func (r *Repository) ListComplications(ctx context.Context, sessionID int64) ([]*domain.Complication, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "session_id", "description", "severity", "reported_by", "reported_at").
		From("complications").
		Where(squirrel.Eq{"session_id": sessionID}).
		OrderBy("reported_at ASC, id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListComplications - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListComplications - execute query: %w", ErrExecQuery, pgerr.Classify(err))
	}
	defer rows.Close()

	list := make([]*domain.Complication, 0)
	for rows.Next() {
		var c domain.Complication
		if err := rows.Scan(&c.ID, &c.SessionID, &c.Description, &c.Severity, &c.ReportedBy, &c.ReportedAt); err != nil {
			return nil, fmt.Errorf("%w: ListComplications - scan row: %v", ErrScanRow, err)
		}
		list = append(list, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListComplications - rows error: %w", ErrScanRow, pgerr.Classify(err))
	}

	return list, nil
}
