package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/settleng/goledgerd/internal/config"
	"github.com/settleng/goledgerd/internal/core/ledger"
	"github.com/settleng/goledgerd/internal/core/tx"
	_ "github.com/settleng/goledgerd/internal/core/tx/all"
	"github.com/settleng/goledgerd/internal/events"
	"github.com/settleng/goledgerd/internal/storage/kv"
	kvbbolt "github.com/settleng/goledgerd/internal/storage/kv/bbolt"
	kvpebble "github.com/settleng/goledgerd/internal/storage/kv/pebble"
)

func newServerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Run the ledger engine until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg)
		},
	}
}

func openStore(cfg *config.Config) (kv.DB, error) {
	switch cfg.Storage.Backend {
	case "memory":
		return kv.NewMemoryDB(), nil
	case "bbolt":
		return kvbbolt.Open(filepath.Join(cfg.Storage.Path, "ledger.db"))
	case "pebble":
		return kvpebble.Open(filepath.Join(cfg.Storage.Path, "pebble"))
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func runServer(ctx context.Context, cfg *config.Config) error {
	log := newLogger(cfg)

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	view, err := ledger.NewStoreView(db, cfg.Storage.CacheSize)
	if err != nil {
		return err
	}

	var sink events.Sink = events.NewLogSink(log)
	if cfg.Events.Journal {
		journal, err := events.OpenJournal(cfg.Events.Driver, cfg.Events.DSN, log)
		if err != nil {
			return err
		}
		sink = events.Tee{sink, journal}
	}
	defer sink.Close()

	params := tx.Params{
		TimelockMinDelay:    cfg.Engine.TimelockMinDelay,
		TimelockMaxDelay:    cfg.Engine.TimelockMaxDelay,
		TimelockGracePeriod: cfg.Engine.TimelockGracePeriod,
		MaxCampaignDuration: cfg.Engine.MaxCampaignDuration,
	}
	engine := tx.NewEngine(view, tx.Options{
		Sink:                      sink,
		Params:                    &params,
		SkipSignatureVerification: cfg.Engine.SkipSignatureVerification,
		Logger:                    log,
	})

	log.Info().
		Str("backend", cfg.Storage.Backend).
		Str("version", Version).
		Msg("ledgerd started")

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		return nil
	})
	// Submissions arrive as newline-delimited JSON on stdin. EOF on the
	// feed shuts the daemon down.
	go func() {
		if err := submitLoop(ctx, os.Stdin, engine, log); err != nil {
			log.Error().Err(err).Msg("submission feed failed")
		}
		stop()
	}()
	return g.Wait()
}
