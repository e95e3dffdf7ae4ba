package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alphabot-ai/campusboard/internal/auth"
	"github.com/alphabot-ai/campusboard/internal/clock"
	"github.com/alphabot-ai/campusboard/internal/config"
	"github.com/alphabot-ai/campusboard/internal/kv"
	"github.com/alphabot-ai/campusboard/internal/logging"
	"github.com/alphabot-ai/campusboard/internal/store"
)

// app is the opened board profile shared by every command.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	db       kv.Store
	clock    clock.Clock
	posts    *store.PostStore
	identity *store.IdentityStore
}

// close releases the profile. It is safe to call when the profile was
// never opened.
func (a *app) close() {
	if a.logger == nil {
		a.logger = zap.NewNop()
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close profile", zap.Error(err))
		}
		a.db = nil
	}
	_ = a.logger.Sync()
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{}
	var (
		dbPath  string
		verbose bool
	)

	root := &cobra.Command{
		Use:   "campusboard",
		Short: "Campus classifieds and task board",
		Long: `campusboard keeps a local board of posts: items for sale or free,
paid bounties, and activities. Posts move open -> claimed -> completed -> closed.

Every command acts as the profile's current session; use register or
login first to act as a user.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if dbPath != "" {
				cfg.DatabasePath = dbPath
			}
			if verbose {
				cfg.LogLevel = "debug"
			}

			logger, err := logging.New(cfg.LogLevel, cfg.LogDevelopment)
			if err != nil {
				return err
			}

			db, err := kv.NewSQLite(cfg.DatabasePath)
			if err != nil {
				return fmt.Errorf("failed to open profile %s: %w", cfg.DatabasePath, err)
			}

			ctx := cmd.Context()
			a.cfg = cfg
			a.logger = logger
			a.db = db
			a.clock = clock.NewReal()
			a.posts = store.NewPostStore(ctx, db, a.clock, logger)
			a.identity = store.NewIdentityStore(ctx, db, auth.NewBcryptHasher(cfg.BcryptCost), a.clock, logger)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&dbPath, "db", "", "profile database path (overrides DATABASE_PATH)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newServeCmd(a),
		newRegisterCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newFeedCmd(a),
		newPostCmd(a),
		newCommentCmd(a),
	)
	return root, a
}

func main() {
	root, a := newRootCmd()
	err := root.ExecuteContext(context.Background())
	a.close()
	if err != nil {
		os.Exit(1)
	}
}
