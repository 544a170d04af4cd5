package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tetra-arena/internal/multiplayer"
	"github.com/vovakirdan/tetra-arena/internal/platform/logging"
	"github.com/vovakirdan/tetra-arena/internal/platform/tui"
	"github.com/vovakirdan/tetra-arena/internal/platform/ws"
	"github.com/vovakirdan/tetra-arena/internal/storage"
)

// lobbySweepPeriod is how often idle lobbies are checked for expiry.
const lobbySweepPeriod = time.Minute

var (
	flagHTTPAddr string
	flagSSHAddr  string
	flagHostKey  string
	flagLogLevel string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the arena server",
	Long: `Start the game server. Clients connect over WebSocket:

  ws://host:8080/ws?room=<id>&player=<name>[&codec=msgpack]

and send join, start, ready and input messages. Finished matches are saved
to the SQLite database and show up in 'arena scores'.

If --ssh is set, a read-only spectator is served over SSH as well:

  ssh localhost -p 23234

Examples:
  arena serve
  arena serve --http :9000
  arena serve --ssh :23234 --host-key ./host_key
  arena serve --log-level debug`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagHTTPAddr, "http", "", "HTTP listen address (overrides config)")
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH spectator address, empty disables it (overrides config)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to SSH host key (overrides config)")
	serveCmd.Flags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagHTTPAddr != "" {
		cfg.Server.HTTPAddr = flagHTTPAddr
	}
	if flagSSHAddr != "" {
		cfg.Server.SSHAddr = flagSSHAddr
	}
	if flagHostKey != "" {
		cfg.Server.HostKeyPath = flagHostKey
	}
	if flagLogLevel != "" {
		cfg.Logging.Level = flagLogLevel
	}

	logger, logCloser, err := logging.New(cfg.Logging, os.Stderr, "arena")
	if err != nil {
		return err
	}
	defer logCloser.Close()

	hub := multiplayer.NewHub()
	coordinator := multiplayer.NewCoordinator(cfg.Game, hub, logger.WithPrefix("rooms"))

	store, err := storage.Open(cfg.Storage.DBPath)
	if err != nil {
		logger.Warn("could not open match database, results will not be saved", "error", err)
	} else {
		defer store.Close()
		coordinator.SetResultSaver(store)
	}

	lobbies := multiplayer.NewLobbyManager(coordinator, hub, cfg.Game.LobbyTimeout, logger.WithPrefix("lobby"))
	lobbies.StartCleanup(lobbySweepPeriod)
	defer lobbies.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	serve := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(ctx); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				mu.Unlock()
				stop()
			}
		}()
	}

	httpServer := ws.NewServer(cfg.Server, coordinator, lobbies, hub, logger.WithPrefix("ws"))
	serve("http", httpServer.ListenAndServe)

	if cfg.Server.SSHAddr != "" {
		sshServer, err := tui.NewSSHServer(cfg.Server, coordinator, hub, logger.WithPrefix("ssh"))
		if err != nil {
			stop()
			wg.Wait()
			return err
		}
		serve("ssh", sshServer.ListenAndServe)
	}

	<-ctx.Done()
	wg.Wait()

	logger.Info("stopping rooms", "rooms", coordinator.RoomCount())
	coordinator.Shutdown()
	return errors.Join(errs...)
}
