package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/soft-mail/cmd/soft-mail/email"
	"github.com/charmbracelet/soft-mail/cmd/soft-mail/serve"
	"github.com/charmbracelet/soft-mail/cmd/soft-mail/user"
	"github.com/charmbracelet/soft-mail/pkg/config"
	logr "github.com/charmbracelet/soft-mail/pkg/log"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
)

var (
	// Version contains the application version number. It's set via ldflags
	// when building.
	Version = ""

	// CommitSHA contains the SHA of the commit that this application was built
	// against. It's set via ldflags when building.
	CommitSHA = ""

	rootCmd = &cobra.Command{
		Use:          "soft-mail",
		Short:        "A self-hostable email address manager",
		Long:         "Soft Mail manages the email addresses of user accounts and confirms them by email.",
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.AddCommand(
		serve.Command,
		migrateCmd,
		user.Command,
		email.Command,
		manCmd,
	)
	rootCmd.CompletionOptions.HiddenDefaultCmd = true

	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Sum != "" {
			Version = info.Main.Version
		} else {
			Version = "unknown (built from source)"
		}
	}
	rootCmd.Version = Version
}

func main() {
	ctx := context.Background()
	cfg := config.DefaultConfig()
	if cfg.Exist() {
		if err := cfg.ParseFile(); err != nil {
			log.Fatal("failed to parse config file", "err", err)
		}
	} else if err := cfg.WriteConfig(); err != nil {
		log.Fatal("failed to write default config", "err", err)
	}

	if err := cfg.ParseEnv(); err != nil {
		log.Fatal("failed to parse environment", "err", err)
	}

	ctx = config.WithContext(ctx, cfg)
	logger, f, err := logr.NewLogger(cfg)
	if err != nil {
		log.Fatal("failed to create logger", "err", err)
	}
	if f != nil {
		defer f.Close() // nolint: errcheck
	}

	log.SetDefault(logger)
	ctx = log.WithContext(ctx, logger)

	// Set the max number of processes to the number of CPUs
	// This is useful when running soft mail in a container
	if _, err := maxprocs.Set(maxprocs.Logger(logger.Debugf)); err != nil {
		logger.Warn("couldn't set automaxprocs", "error", err)
	}

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1) // nolint: gocritic
	}
}
