package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tendant/simple-classroom/internal/logger"
	"github.com/tendant/simple-classroom/pkg/classroom/config"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "classroomctl",
		Short: "Classroom operations CLI",
		Long: `Command line tool for the classroom service.

Backends are selected the same way as the server: DATABASE_URL and
STORAGE_URL from the environment or a .env file.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringSlice("env-file", nil, ".env files to load (default .env)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")

	rootCmd.AddCommand(NewServeCommand())
	rootCmd.AddCommand(NewLessonsCommand())
	rootCmd.AddCommand(NewSweepCommand())
	rootCmd.AddCommand(NewTokenCommand())

	return rootCmd
}

// runtime is what every subcommand needs: configuration, a logger and
// opened backends.
type runtime struct {
	cfg      *config.ServerConfig
	log      *zap.Logger
	backends *config.Backends
}

func (rt *runtime) Close() {
	if rt.backends != nil {
		rt.backends.Close()
	}
	_ = rt.log.Sync()
}

func loadConfig(cmd *cobra.Command, extra ...config.Option) (*config.ServerConfig, *zap.Logger, error) {
	envFiles, _ := cmd.Flags().GetStringSlice("env-file")
	logLevel, _ := cmd.Flags().GetString("log-level")
	verbose, _ := cmd.Flags().GetBool("verbose")

	opts := []config.Option{config.WithDotEnv(envFiles...), config.WithEnv()}
	if logLevel != "" {
		opts = append(opts, config.WithLogLevel(logLevel))
	}
	cfg, err := config.Load(append(opts, extra...)...)
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}

	level := cfg.LogLevel
	if !verbose && logLevel == "" {
		level = "warn"
	}
	log, err := logger.New(cfg.Environment, level)
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}
	return cfg, log, nil
}

func openRuntime(ctx context.Context, cmd *cobra.Command, extra ...config.Option) (*runtime, error) {
	cfg, log, err := loadConfig(cmd, extra...)
	if err != nil {
		return nil, err
	}
	backends, err := cfg.Open(ctx, log)
	if err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("open backends: %w", err)
	}
	return &runtime{cfg: cfg, log: log, backends: backends}, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
