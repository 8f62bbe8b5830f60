package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"time"

	"github.com/Koushik890/deal-or-no-deal-multiplayer/internal/cache/cachelru"
	"github.com/Koushik890/deal-or-no-deal-multiplayer/internal/dealbot"
	"github.com/Koushik890/deal-or-no-deal-multiplayer/internal/dealbot/resource"
	"github.com/Koushik890/deal-or-no-deal-multiplayer/internal/dealbot/rng"
	"github.com/Koushik890/deal-or-no-deal-multiplayer/internal/dealbot/store"
	"github.com/Koushik890/deal-or-no-deal-multiplayer/internal/logging"
	"github.com/Koushik890/deal-or-no-deal-multiplayer/internal/server"
	"github.com/Koushik890/deal-or-no-deal-multiplayer/internal/shutdown"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"golang.org/x/sync/errgroup"
)

func main() {
	_, _ = fmt.Fprint(os.Stdout, resource.Graffiti)

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logging.DefaultLogger().Warnf("loading .env: %v", err)
	}

	config := dealbot.Config{}
	if err := envconfig.Process("", &config); err != nil {
		logging.DefaultLogger().Fatalf("processing the config: %v", err)
	}

	ctx, done := shutdown.New()
	defer done()

	logger := logging.NewLogger(config.Debug)
	ctx = logging.WithLogger(ctx, logger)

	if err := realMain(ctx, &config); err != nil {
		logger.Fatalf("main.realMain: %v", err)
	}
}

func realMain(ctx context.Context, config *dealbot.Config) error {
	logger := logging.FromContext(ctx).Named("main")

	leaderboardCache, err := cachelru.NewLRU(config.LeaderboardCacheSize)
	if err != nil {
		return fmt.Errorf("can not create lru cache: %w", err)
	}

	rand := rng.New()
	st := store.New(leaderboardCache, rand, store.TTLs{
		Waiting:   config.WaitingTTL(),
		Selection: config.SelectionTTL(),
		Finished:  config.FinishedTTL(),
	}, logger.Named("store"))

	manager := dealbot.NewManager(config, st, rand)
	srv := server.New(ctx, manager, config.CorsOrigins, config.PublicURL)
	manager.BindPusher(srv)

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Infof("listening on :%s", config.Port)
		return srv.ServeHTTP(ctx, &http.Server{Addr: ":" + config.Port, Handler: srv.Router()})
	})

	group.Go(func() error {
		return sweepLoop(ctx, st, config.CleanupInterval())
	})

	if config.ProfPort != "" {
		group.Go(func() error {
			return http.ListenAndServe(":"+config.ProfPort, nil)
		})
	}

	return group.Wait()
}

// sweepLoop periodically deletes rooms whose TTL expired.
func sweepLoop(ctx context.Context, st *store.Store, interval time.Duration) error {
	logger := logging.FromContext(ctx).Named("main.sweep")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if removed := st.Sweep(now); removed > 0 {
				logger.Infof("swept %d stale rooms, %d remain", removed, st.RoomsLen())
			}
		}
	}
}
