package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/nstehr/vimy/vimy-patrol/agent"
	"github.com/nstehr/vimy/vimy-patrol/config"
	"github.com/nstehr/vimy/vimy-patrol/ipc"
	"github.com/nstehr/vimy/vimy-patrol/journal"
)

const banner = `
██╗   ██╗██╗███╗   ███╗██╗   ██╗
██║   ██║██║████╗ ████║╚██╗ ██╔╝
██║   ██║██║██╔████╔██║ ╚████╔╝
╚██╗ ██╔╝██║██║╚██╔╝██║  ╚██╔╝
 ╚████╔╝ ██║██║ ╚═╝ ██║   ██║
  ╚═══╝  ╚═╝╚═╝     ╚═╝   ╚═╝

Automatic Patrol Commander`

func main() {
	configPath := flag.String("config", "vimy-patrol.yaml", "path to YAML config (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	level, _ := config.ParseLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	fmt.Println(banner)

	slog.Info("starting vimy-patrol",
		"enabled", cfg.Patrol.Enabled,
		"radius", cfg.Patrol.PatrolRadius,
		"interval", cfg.Patrol.RebalanceInterval,
		"filter", cfg.Patrol.SquadFilter,
	)

	var jw agent.Journal
	if cfg.JournalDir != "" {
		w := journal.NewWriter(cfg.JournalDir)
		defer w.Close()
		jw = w
		slog.Info("decision journal enabled", "dir", cfg.JournalDir)
	}

	socketPath := cfg.Socket

	// Unix sockets leave behind a file on unclean shutdown; remove it so we can rebind.
	if err := os.RemoveAll(socketPath); err != nil {
		slog.Error("failed to clean up socket", "path", socketPath, "error", err)
		os.Exit(1)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		slog.Error("failed to listen on socket", "path", socketPath, "error", err)
		os.Exit(1)
	}
	defer listener.Close()
	defer os.Remove(socketPath)

	slog.Info("listening on domain socket", "path", socketPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				select {
				case <-ctx.Done():
					return
				default:
					slog.Error("failed to accept connection", "error", err)
					continue
				}
			}
			slog.Info("new connection accepted")
			go handleConn(conn, cfg, jw)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
}

// handleConn gives each mod instance its own engine; sessions share nothing
// but the journal.
func handleConn(conn net.Conn, cfg config.File, jw agent.Journal) {
	c := ipc.NewConnection(conn, nil)
	a, err := agent.New(c, cfg.Patrol, jw)
	if err != nil {
		slog.Error("failed to start agent", "error", err)
		conn.Close()
		return
	}
	for msgType, h := range a.Handlers() {
		c.RegisterHandler(msgType, h)
	}
	// Tag the connection's own log lines once the player is known.
	c.RegisterHandler(ipc.TypeHello, func(env ipc.Envelope) (*ipc.Envelope, error) {
		resp, err := a.HandleHello(env)
		c.Player = a.Player
		return resp, err
	})
	c.ReadLoop()
}
