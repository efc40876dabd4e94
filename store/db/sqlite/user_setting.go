package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/todoassist/store"
)

func (d *DB) UpsertUserSetting(ctx context.Context, upsert *store.UserSetting) (*store.UserSetting, error) {
	now := time.Now().Unix()
	stmt := `INSERT INTO user_setting (user_id, key, value, created_ts, updated_ts)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, key) DO UPDATE SET
			value = excluded.value,
			updated_ts = excluded.updated_ts
		RETURNING user_id, key, value, created_ts, updated_ts`

	result := &store.UserSetting{}
	if err := d.db.QueryRowContext(ctx, stmt, upsert.UserID, upsert.Key, upsert.Value, now, now).Scan(
		&result.UserID,
		&result.Key,
		&result.Value,
		&result.CreatedTs,
		&result.UpdatedTs,
	); err != nil {
		return nil, errors.Wrap(err, "failed to upsert user_setting")
	}
	return result, nil
}

func (d *DB) GetUserSetting(ctx context.Context, find *store.FindUserSetting) (*store.UserSetting, error) {
	if find.UserID == "" || find.Key == "" {
		return nil, errors.New("user_id and key are required")
	}

	query := `SELECT user_id, key, value, created_ts, updated_ts FROM user_setting WHERE user_id = ? AND key = ?`
	result := &store.UserSetting{}
	err := d.db.QueryRowContext(ctx, query, find.UserID, find.Key).Scan(
		&result.UserID,
		&result.Key,
		&result.Value,
		&result.CreatedTs,
		&result.UpdatedTs,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to get user_setting")
	}
	return result, nil
}
