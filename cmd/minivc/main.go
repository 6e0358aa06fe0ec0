// cmd/minivc/main.go
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"minivc/internal/logging"
	"minivc/internal/repo"
	"minivc/internal/vcerrors"
	"minivc/internal/watch"
)

var (
	logLevel string
	logger   *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "minivc",
	Short: "minivc is a minimal local version control system",
	Long: `minivc stages files, snapshots them into immutable commits, and
restores a prior snapshot's files onto the working tree. Commits are
flat lists of content-addressed objects; there is no branching or
history traversal.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		dir, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting current directory: %w", err)
		}

		level := resolveLogLevel(cmd.Flags().Changed("log-level"), logLevel, dir)
		logger, err = logging.New(level)
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		return nil
	},
}

// resolveLogLevel picks the logger level: an explicit --log-level always
// wins; otherwise an initialized repository's configured level applies,
// falling back to the flag default outside a repository.
func resolveLogLevel(explicit bool, flagLevel, root string) string {
	if explicit {
		return flagLevel
	}

	cfg, err := repo.LoadConfig(root)
	if err != nil || cfg.LogLevel == "" {
		return flagLevel
	}
	return cfg.LogLevel
}

// openRepo opens the repository rooted at the current directory.
func openRepo() (*repo.Repository, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting current directory: %w", err)
	}
	return repo.Open(dir, logger)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn",
		"log level (debug, info, warn, error)")

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new minivc repository",
		Long:  `Creates the .minivc directory with empty commits, objects, and staging stores. Safe to run repeatedly.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("getting current directory: %w", err)
			}

			if err := repo.Init(dir); err != nil {
				return fmt.Errorf("initializing repository: %w", err)
			}

			fmt.Println("Initialized minivc repository in", dir)
			return nil
		},
	}

	stageCmd := &cobra.Command{
		Use:   "stage [paths...]",
		Short: "Add files to the staging index",
		Long:  `Fingerprints each file and records it for the next commit. Re-staging a path replaces its previous entry.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			defer r.Close()

			for _, path := range args {
				entry, err := r.Stage(path)
				if err != nil {
					return err
				}
				fmt.Printf("staged %s (%s)\n", entry.Path, entry.SHA[:8])
			}

			color.Green("Staged %d file(s)", len(args))
			return nil
		},
	}

	commitCmd := &cobra.Command{
		Use:   "commit <message>",
		Short: "Snapshot the staging index into a commit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			defer r.Close()

			rec, err := r.Commit(args[0])
			if err != nil {
				if vcerrors.IsType(err, vcerrors.ErrorTypeEmptyStaging) {
					color.Yellow("Nothing to commit: the staging index is empty")
					return nil
				}
				return fmt.Errorf("committing: %w", err)
			}

			color.Green("Commit %s created with %d file(s)", rec.ID, len(rec.Files))
			return nil
		},
	}

	restoreCmd := &cobra.Command{
		Use:   "restore <id>",
		Short: "Restore files from a commit",
		Long:  `Overwrites working-tree files with the commit's stored objects. Files whose objects are missing are skipped with a warning.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			defer r.Close()

			count, err := r.Restore(args[0])
			if err != nil {
				return fmt.Errorf("restoring %s: %w", args[0], err)
			}

			color.Green("Restored %d file(s) from commit %s", count, args[0])
			return nil
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the staging index",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			defer r.Close()

			entries, err := r.Staged()
			if err != nil {
				return fmt.Errorf("reading staging index: %w", err)
			}

			if len(entries) == 0 {
				fmt.Println("Nothing staged")
				return nil
			}

			fmt.Println("Staged files:")
			for _, e := range entries {
				fmt.Printf("  %s  %s\n", e.SHA[:8], e.Path)
			}
			return nil
		},
	}

	logCmd := &cobra.Command{
		Use:   "log",
		Short: "List commits",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			defer r.Close()

			recs, err := r.Log()
			if err != nil {
				return fmt.Errorf("listing commits: %w", err)
			}

			if len(recs) == 0 {
				fmt.Println("No commits yet")
				return nil
			}

			for _, rec := range recs {
				fmt.Printf("%s  %s  %d file(s)  [%s]\n",
					rec.ID,
					rec.Timestamp.Format(time.RFC3339),
					len(rec.Files),
					rec.Message,
				)
			}
			return nil
		},
	}

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-stage staged files as they change",
		Long:  `Watches the currently staged files and refreshes their staged fingerprints whenever they change on disk, until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			defer r.Close()

			w, err := watch.New(r, logger)
			if err != nil {
				return fmt.Errorf("starting watcher: %w", err)
			}
			defer w.Close()

			fmt.Println("Watching staged files. Press Ctrl-C to stop.")

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
			<-sig
			return nil
		},
	}

	rootCmd.AddCommand(initCmd, stageCmd, commitCmd, restoreCmd, statusCmd, logCmd, watchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}
