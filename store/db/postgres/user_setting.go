package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hrygo/todoassist/store"
)

func (d *DB) UpsertUserSetting(ctx context.Context, upsert *store.UserSetting) (*store.UserSetting, error) {
	now := time.Now().Unix()

	stmt := `INSERT INTO user_setting (user_id, key, value, created_ts, updated_ts)
		VALUES (` + placeholder(1) + `, ` + placeholder(2) + `, ` + placeholder(3) + `, ` + placeholder(4) + `, ` + placeholder(5) + `)
		ON CONFLICT (user_id, key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_ts = EXCLUDED.updated_ts
		RETURNING user_id, key, value, created_ts, updated_ts`

	result := &store.UserSetting{}
	err := d.db.QueryRowContext(ctx, stmt, upsert.UserID, upsert.Key, upsert.Value, now, now).Scan(
		&result.UserID,
		&result.Key,
		&result.Value,
		&result.CreatedTs,
		&result.UpdatedTs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user_setting: %w", err)
	}

	return result, nil
}

func (d *DB) GetUserSetting(ctx context.Context, find *store.FindUserSetting) (*store.UserSetting, error) {
	if find.UserID == "" || find.Key == "" {
		return nil, fmt.Errorf("user_id and key are required")
	}

	query := `SELECT user_id, key, value, created_ts, updated_ts FROM user_setting WHERE user_id = ` + placeholder(1) + ` AND key = ` + placeholder(2)

	result := &store.UserSetting{}
	err := d.db.QueryRowContext(ctx, query, find.UserID, find.Key).Scan(
		&result.UserID,
		&result.Key,
		&result.Value,
		&result.CreatedTs,
		&result.UpdatedTs,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found, return nil without error
		}
		return nil, fmt.Errorf("failed to get user_setting: %w", err)
	}

	return result, nil
}
