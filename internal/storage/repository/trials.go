package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/supportiq/entitlement-service/internal/apperr"
	"github.com/supportiq/entitlement-service/internal/models"
)

// pgUniqueViolation — код ошибки PostgreSQL для нарушения уникальности.
const pgUniqueViolation = "23505"

// CreateTrial вставляет новую запись пробного периода и возвращает её ID.
//
// Уникальность активного пробного периода на пользователя обеспечивает
// частичный уникальный индекс trials(user_uid) WHERE status = 'active':
// из двух конкурентных вставок для одного пользователя ровно одна получает
// нарушение уникальности, которое транслируется в ошибку conflict.
func (s *Storage) CreateTrial(ctx context.Context, trial models.Trial) (int, error) {
	const op = "storage.CreateTrial"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO trials (user_uid, status, started_at, expires_at)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		trial.UserUID, trial.Status, trial.StartedAt, trial.ExpiresAt).Scan(&newID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return 0, apperr.Wrap(apperr.KindConflict, "active trial already exists", err).
				WithMeta("user_uid", trial.UserUID)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetTrialByUser возвращает последний пробный период пользователя или nil,
// если записей нет. У пользователя может накопиться несколько терминальных
// записей, актуальной считается самая поздняя.
func (s *Storage) GetTrialByUser(ctx context.Context, userUID string) (*models.Trial, error) {
	const op = "storage.GetTrialByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, status, started_at, expires_at, converted_at
			  FROM trials WHERE user_uid = $1
			  ORDER BY id DESC LIMIT 1`
	row := s.DB.QueryRowContext(ctx, query, userUID)

	var result models.Trial
	if err := row.Scan(&result.ID, &result.UserUID, &result.Status, &result.StartedAt,
		&result.ExpiresAt, &result.ConvertedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}

// ListDueTrials возвращает активные пробные периоды, истёкшие к моменту now.
func (s *Storage) ListDueTrials(ctx context.Context, now time.Time) ([]*models.Trial, error) {
	const op = "storage.ListDueTrials"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, status, started_at, expires_at, converted_at
			  FROM trials
			  WHERE status = $1 AND expires_at <= $2
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query, models.TrialStatusActive, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Trial
	for rows.Next() {
		var item models.Trial
		if err := rows.Scan(&item.ID, &item.UserUID, &item.Status, &item.StartedAt,
			&item.ExpiresAt, &item.ConvertedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// MarkTrialExpired переводит пробный период в expired условным обновлением:
// переход выполняется только если статус всё ещё active. Возвращает количество
// изменённых строк; 0 означает, что переход уже выполнил кто-то другой, —
// для вызывающей стороны это no-op, а не ошибка.
func (s *Storage) MarkTrialExpired(ctx context.Context, id int) (int, error) {
	const op = "storage.MarkTrialExpired"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE trials SET status = $1
			  WHERE id = $2 AND status = $3`
	result, err := s.DB.ExecContext(ctx, query, models.TrialStatusExpired, id, models.TrialStatusActive)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ConvertTrial переводит активный пробный период пользователя в converted
// и меняет его тарифный план одной транзакцией: либо фиксируются оба
// изменения, либо ни одного. Условие по статусу защищает от гонки со sweep:
// ровно один из конкурентных переходов изменит строку. Возвращает количество
// изменённых строк trials; 0 означает, что активного периода нет, — план
// при этом не меняется.
func (s *Storage) ConvertTrial(ctx context.Context, userUID, planKey string, convertedAt time.Time) (int, error) {
	const op = "storage.ConvertTrial"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `UPDATE trials SET status = $1, converted_at = $2
			  WHERE user_uid = $3 AND status = $4`
	result, err := tx.ExecContext(ctx, query,
		models.TrialStatusConverted, convertedAt, userUID, models.TrialStatusActive)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return 0, nil
	}

	if _, err := tx.ExecContext(ctx, `UPDATE users SET plan_key = $1 WHERE uid = $2`,
		planKey, userUID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
