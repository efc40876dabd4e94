package store

import (
	"context"
	"time"

	"github.com/hrygo/todoassist/internal/profile"
	"github.com/hrygo/todoassist/store/cache"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver

	userSettingCache *cache.Cache // cache for user settings
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
		userSettingCache: cache.New(cache.Config{
			DefaultTTL:      10 * time.Minute,
			CleanupInterval: 5 * time.Minute,
			MaxItems:        1000,
		}),
	}
}

func (s *Store) Profile() *profile.Profile {
	return s.profile
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

// Migrate prepares the database schema.
func (s *Store) Migrate(ctx context.Context) error {
	return s.driver.Migrate(ctx)
}

func (s *Store) Close() error {
	// Stop cache cleanup goroutine
	s.userSettingCache.Close()

	return s.driver.Close()
}
