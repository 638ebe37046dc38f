package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/votingworks/paper-handler/internal/models"
	srvErrors "github.com/votingworks/paper-handler/pkg/errors"
)

const sheetsTable = "sheets"

var sheetColumns = []string{
	"id",
	"batch_id",
	"front_image_path",
	"back_image_path",
	"front_interpretation",
	"back_interpretation",
	"accepted_at",
}

// SheetStore persists accepted sheets. Rows are never updated.
type SheetStore struct {
	db QueryInterceptor
}

func NewSheetStore(db QueryInterceptor) *SheetStore {
	return &SheetStore{db: db}
}

func (s *SheetStore) Add(ctx context.Context, sheet models.AcceptedSheet) error {
	front, err := json.Marshal(sheet.FrontInterpretation)
	if err != nil {
		return fmt.Errorf("encoding front interpretation: %w", err)
	}
	back, err := json.Marshal(sheet.BackInterpretation)
	if err != nil {
		return fmt.Errorf("encoding back interpretation: %w", err)
	}

	query, args, err := sq.Insert(sheetsTable).
		Columns(sheetColumns...).
		Values(
			sheet.ID,
			sheet.BatchID,
			sheet.FrontImagePath,
			sheet.BackImagePath,
			string(front),
			string(back),
			sheet.AcceptedAt.UTC(),
		).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting sheet %s: %w", sheet.ID, err)
	}
	return nil
}

func (s *SheetStore) Get(ctx context.Context, id string) (*models.AcceptedSheet, error) {
	query, args, err := sq.Select(sheetColumns...).
		From(sheetsTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}

	sheet, err := scanSheet(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, srvErrors.NewSheetNotFoundError(id)
	}
	if err != nil {
		return nil, err
	}
	return sheet, nil
}

// List returns sheets in acceptance order.
func (s *SheetStore) List(ctx context.Context, opts ...ListOption) ([]models.AcceptedSheet, error) {
	builder := sq.Select(sheetColumns...).From(sheetsTable).OrderBy("accepted_at", "id")
	for _, opt := range opts {
		builder = opt(builder)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sheets := []models.AcceptedSheet{}
	for rows.Next() {
		sheet, err := scanSheet(rows)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, *sheet)
	}
	return sheets, rows.Err()
}

func (s *SheetStore) Count(ctx context.Context, opts ...ListOption) (int, error) {
	builder := sq.Select("COUNT(*)").From(sheetsTable)
	for _, opt := range opts {
		builder = opt(builder)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSheet(row rowScanner) (*models.AcceptedSheet, error) {
	var (
		sheet       models.AcceptedSheet
		front, back string
	)
	err := row.Scan(
		&sheet.ID,
		&sheet.BatchID,
		&sheet.FrontImagePath,
		&sheet.BackImagePath,
		&front,
		&back,
		&sheet.AcceptedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(front), &sheet.FrontInterpretation); err != nil {
		return nil, fmt.Errorf("decoding front interpretation of sheet %s: %w", sheet.ID, err)
	}
	if err := json.Unmarshal([]byte(back), &sheet.BackInterpretation); err != nil {
		return nil, fmt.Errorf("decoding back interpretation of sheet %s: %w", sheet.ID, err)
	}
	return &sheet, nil
}
