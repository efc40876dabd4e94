package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"

	"github.com/hrygo/todoassist/plugin/ai/aitime"
)

// UserSettingKeyTimeDefaults stores the per-user period clock defaults.
const UserSettingKeyTimeDefaults = "time_defaults"

// UserSetting is a single keyed setting of a user.
type UserSetting struct {
	UserID    string
	Key       string
	Value     string // JSON string
	CreatedTs int64
	UpdatedTs int64
}

// FindUserSetting specifies the conditions for finding a user setting.
type FindUserSetting struct {
	UserID string
	Key    string
}

func userSettingCacheKey(userID, key string) string {
	return fmt.Sprintf("%s:%s", userID, key)
}

// GetUserSetting returns the setting or nil when the user has none.
func (s *Store) GetUserSetting(ctx context.Context, find *FindUserSetting) (*UserSetting, error) {
	cacheKey := userSettingCacheKey(find.UserID, find.Key)
	if cached, ok := s.userSettingCache.Get(ctx, cacheKey); ok {
		if setting, ok := cached.(*UserSetting); ok {
			return setting, nil
		}
	}

	setting, err := s.driver.GetUserSetting(ctx, find)
	if err != nil {
		return nil, err
	}
	if setting == nil {
		return nil, nil
	}
	s.userSettingCache.Set(ctx, cacheKey, setting)
	return setting, nil
}

func (s *Store) UpsertUserSetting(ctx context.Context, upsert *UserSetting) (*UserSetting, error) {
	setting, err := s.driver.UpsertUserSetting(ctx, upsert)
	if err != nil {
		return nil, err
	}
	s.userSettingCache.Set(ctx, userSettingCacheKey(setting.UserID, setting.Key), setting)
	return setting, nil
}

// GetTimeDefaults returns the user's period defaults overlaid on the
// built-in ones.
func (s *Store) GetTimeDefaults(ctx context.Context, userID string) (aitime.TimeDefaults, error) {
	defaults := aitime.DefaultTimeDefaults()
	setting, err := s.GetUserSetting(ctx, &FindUserSetting{UserID: userID, Key: UserSettingKeyTimeDefaults})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get time defaults")
	}
	if setting == nil {
		return defaults, nil
	}

	stored := aitime.TimeDefaults{}
	if err := json.Unmarshal([]byte(setting.Value), &stored); err != nil {
		return nil, errors.Wrapf(err, "malformed time defaults for user %s", userID)
	}
	return defaults.Merge(stored), nil
}

// UpsertTimeDefaults validates update as a whole and persists it on top of
// the user's current defaults. A single malformed entry rejects the update
// and leaves the stored values untouched.
func (s *Store) UpsertTimeDefaults(ctx context.Context, userID string, update aitime.TimeDefaults) (aitime.TimeDefaults, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}

	current, err := s.GetTimeDefaults(ctx, userID)
	if err != nil {
		return nil, err
	}
	merged := current.Merge(update)

	value, err := json.Marshal(merged)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal time defaults")
	}
	if _, err := s.UpsertUserSetting(ctx, &UserSetting{
		UserID: userID,
		Key:    UserSettingKeyTimeDefaults,
		Value:  string(value),
	}); err != nil {
		return nil, errors.Wrap(err, "failed to upsert time defaults")
	}
	return merged, nil
}
