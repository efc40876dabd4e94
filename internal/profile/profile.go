package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/hrygo/todoassist/internal/version"
	"github.com/hrygo/todoassist/plugin/ai/timeout"
)

// Offsets outside this range do not exist on Earth.
const (
	minOffsetMinutes = -12 * 60
	maxOffsetMinutes = 14 * 60
)

// Profile is the configuration to start main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where todoassist stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string

	// JWTSecret signs and verifies bearer tokens (TODOASSIST_JWT_SECRET)
	JWTSecret string
	// DefaultOffsetMinutes is used when a request carries no timezone offset.
	// Minutes added to UTC to get local time (UTC+8 is 480).
	DefaultOffsetMinutes int
	// InterpretTimeout bounds the upstream interpreter call.
	InterpretTimeout time.Duration
	// RateLimit is the sustained per-user request rate (requests per second).
	RateLimit float64
	// RateBurst is the per-user burst size.
	RateBurst int
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv fills settings that are only read from the environment.
// Values already set are kept unless the variable is present.
func (p *Profile) FromEnv() {
	p.JWTSecret = getEnvOrDefault("TODOASSIST_JWT_SECRET", p.JWTSecret)

	if v := os.Getenv("TODOASSIST_DEFAULT_OFFSET_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			p.DefaultOffsetMinutes = n
		} else {
			slog.Warn("ignoring malformed TODOASSIST_DEFAULT_OFFSET_MINUTES", slog.String("value", v))
		}
	}
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}
	if p.Driver == "" {
		p.Driver = "sqlite"
	}
	if p.Driver != "sqlite" && p.Driver != "postgres" {
		return errors.Errorf("unsupported driver %q", p.Driver)
	}
	if p.Version == "" {
		p.Version = version.GetCurrentVersion(p.Mode)
	}
	if !version.IsValid(p.Version) {
		return errors.Errorf("invalid version %q", p.Version)
	}
	if p.Port < 0 || p.Port > 65535 {
		return errors.Errorf("invalid port %d", p.Port)
	}
	if p.DefaultOffsetMinutes < minOffsetMinutes || p.DefaultOffsetMinutes > maxOffsetMinutes {
		return errors.Errorf("default offset %d minutes is out of range", p.DefaultOffsetMinutes)
	}

	if p.InterpretTimeout <= 0 {
		p.InterpretTimeout = timeout.InterpretTimeout
	}
	if p.RateLimit <= 0 {
		p.RateLimit = 10
	}
	if p.RateBurst <= 0 {
		p.RateBurst = 20
	}

	if p.JWTSecret == "" {
		if !p.IsDev() {
			return errors.New("jwt secret is required in prod mode")
		}
		p.JWTSecret = uuid.NewString()
		slog.Warn("no jwt secret configured, using an ephemeral one", slog.String("mode", p.Mode))
	}

	if p.Mode == "prod" && p.Data == "" {
		if runtime.GOOS == "windows" {
			p.Data = filepath.Join(os.Getenv("ProgramData"), "todoassist")
			if _, err := os.Stat(p.Data); os.IsNotExist(err) {
				if err := os.MkdirAll(p.Data, 0770); err != nil {
					slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
					return err
				}
			}
		} else {
			p.Data = "/var/opt/todoassist"
		}
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check dsn", slog.String("data", dataDir), slog.String("error", err.Error()))
		return err
	}

	p.Data = dataDir
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("todoassist_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}
	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("dsn is required for the postgres driver")
	}

	return nil
}
