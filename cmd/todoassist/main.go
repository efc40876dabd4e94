package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/hrygo/todoassist/internal/profile"
	"github.com/hrygo/todoassist/internal/version"
	"github.com/hrygo/todoassist/server"
	"github.com/hrygo/todoassist/server/auth"
	"github.com/hrygo/todoassist/store"
	"github.com/hrygo/todoassist/store/db"
)

var (
	rootCmd = &cobra.Command{
		Use:   "todoassist",
		Short: `Natural-language todo assistant: intent interpretation and time resolution.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			instanceProfile, err := loadProfile()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), instanceProfile)
		},
	}

	tokenCmd = &cobra.Command{
		Use:   "token <user-id>",
		Short: "Issue a bearer token for a user, signed with the configured secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			instanceProfile, err := loadProfile()
			if err != nil {
				return err
			}
			ttl, err := cmd.Flags().GetDuration("ttl")
			if err != nil {
				return err
			}
			token, expiresAt, err := auth.NewTokenManager(instanceProfile.JWTSecret).IssueToken(args[0], ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", expiresAt.UTC().Format(time.RFC3339))
			return nil
		},
	}
)

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("driver", "sqlite")
	viper.SetDefault("port", 8081)
	viper.SetDefault("interpret-timeout", 5*time.Second)

	rootCmd.PersistentFlags().String("mode", "dev", `mode of server, can be "prod" or "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of server")
	rootCmd.PersistentFlags().Int("port", 8081, "port of server")
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", "database driver (sqlite or postgres)")
	rootCmd.PersistentFlags().String("dsn", "", "database source name(aka. DSN)")
	rootCmd.PersistentFlags().String("jwt-secret", "", "secret used to sign bearer tokens")
	rootCmd.PersistentFlags().Int("default-offset-minutes", 0, "timezone offset used when a request carries none (UTC+8 is 480)")
	rootCmd.PersistentFlags().Duration("interpret-timeout", 5*time.Second, "timeout of the upstream interpreter")
	rootCmd.PersistentFlags().Float64("rate-limit", 10, "sustained requests per second per user")
	rootCmd.PersistentFlags().Int("rate-burst", 20, "burst size per user")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	for _, name := range []string{
		"mode", "addr", "port", "data", "driver", "dsn", "jwt-secret",
		"default-offset-minutes", "interpret-timeout", "rate-limit", "rate-burst", "debug",
	} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			panic(err)
		}
	}

	tokenCmd.Flags().Duration("ttl", auth.DefaultTokenTTL, "token lifetime")
	rootCmd.AddCommand(tokenCmd)

	viper.SetEnvPrefix("todoassist")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func loadProfile() (*profile.Profile, error) {
	level := slog.LevelInfo
	if viper.GetBool("debug") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	instanceProfile := &profile.Profile{
		Mode:                 viper.GetString("mode"),
		Addr:                 viper.GetString("addr"),
		Port:                 viper.GetInt("port"),
		Data:                 viper.GetString("data"),
		Driver:               viper.GetString("driver"),
		DSN:                  viper.GetString("dsn"),
		JWTSecret:            viper.GetString("jwt-secret"),
		DefaultOffsetMinutes: viper.GetInt("default-offset-minutes"),
		InterpretTimeout:     viper.GetDuration("interpret-timeout"),
		RateLimit:            viper.GetFloat64("rate-limit"),
		RateBurst:            viper.GetInt("rate-burst"),
		Version:              version.GetCurrentVersion(viper.GetString("mode")),
	}
	instanceProfile.FromEnv()
	if err := instanceProfile.Validate(); err != nil {
		return nil, fmt.Errorf("invalid profile: %w", err)
	}
	return instanceProfile, nil
}

func serve(ctx context.Context, instanceProfile *profile.Profile) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbDriver, err := db.NewDBDriver(instanceProfile)
	if err != nil {
		return fmt.Errorf("failed to create db driver: %w", err)
	}

	storeInstance := store.New(dbDriver, instanceProfile)
	if err := storeInstance.Migrate(ctx); err != nil {
		_ = storeInstance.Close()
		return fmt.Errorf("failed to migrate: %w", err)
	}

	// No upstream interpreter is configured; the rule classifier answers.
	s, err := server.NewServer(ctx, instanceProfile, storeInstance, nil)
	if err != nil {
		_ = storeInstance.Close()
		return fmt.Errorf("failed to create server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.Start(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		return s.Shutdown(context.Background())
	})
	return g.Wait()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("todoassist exited", "error", err)
		os.Exit(1)
	}
}
