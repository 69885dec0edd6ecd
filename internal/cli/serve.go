package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"lanes-cli/internal/mutate"
	"lanes-cli/internal/store"
	"lanes-cli/internal/web"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(app *App) *cobra.Command {
	var addr string
	var redisURL string
	var cacheTTL time.Duration

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the lanes HTTP server over the local database",
		Long: strings.TrimSpace(`
Run the lanes API: board, column and task endpoints, the move confirmation
endpoints (PUT /tasks/switch-position/{id}, PUT /columns/switch-position/{id}),
a datastar SSE stream per board and a websocket change feed.

The acting user of each request comes from the X-Lanes-Actor header, falling
back to --actor.
`),
		Example: strings.TrimSpace(`
# Serve on localhost with a Redis snapshot cache
lanes serve --addr 127.0.0.1:7878 --redis-url redis://localhost:6379/0
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			listenAddr := strings.TrimSpace(addr)
			if listenAddr == "" {
				return writeErr(cmd, errors.New("serve: missing --addr"))
			}
			logger := app.newLogger(cmd.ErrOrStderr())

			path, err := app.dbPath()
			if err != nil {
				return writeErr(cmd, err)
			}
			st, err := store.Open(ctx, path)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer func() { _ = st.Close() }()

			var rdb *redis.Client
			if u := strings.TrimSpace(redisURL); u != "" {
				opt, err := redis.ParseURL(u)
				if err != nil {
					return writeErr(cmd, fmt.Errorf("serve: --redis-url: %w", err))
				}
				rdb = redis.NewClient(opt)
				defer func() { _ = rdb.Close() }()
				if err := rdb.Ping(ctx).Err(); err != nil {
					return writeErr(cmd, fmt.Errorf("serve: redis: %w", err))
				}
			}

			bc := web.NewBroadcaster()
			svc := mutate.New(st,
				mutate.WithCache(store.NewCache(st, rdb, cacheTTL)),
				mutate.WithNotifier(bc),
				mutate.WithLogger(logger),
			)
			srv, err := web.NewServer(web.ServerConfig{Addr: listenAddr, ActorID: app.ActorID, Logger: logger}, svc, bc)
			if err != nil {
				return writeErr(cmd, err)
			}

			ln, err := net.Listen("tcp", listenAddr)
			if err != nil {
				return writeErr(cmd, err)
			}
			actualAddr := ln.Addr().String()

			_ = writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"addr":      actualAddr,
					"url":       "http://" + actualAddr,
					"db":        path,
					"cache":     rdb != nil,
					"startedAt": time.Now().UTC().Format(time.RFC3339Nano),
				},
			})
			logger.WithField("addr", actualAddr).Info("server.start")

			httpSrv := &http.Server{
				Handler:           srv.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
				// Streams and websockets end when the server context does.
				BaseContext: func(net.Listener) context.Context { return ctx },
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return httpSrv.Shutdown(shutdownCtx)
			})
			if err := g.Wait(); err != nil {
				return writeErr(cmd, err)
			}
			logger.Info("server.stop")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", envOr("LANES_ADDR", "127.0.0.1:7878"), "Bind address (host:port or :port)")
	cmd.Flags().StringVar(&redisURL, "redis-url", envOr("LANES_REDIS_URL", ""), "Redis URL for the board snapshot cache (empty disables caching)")
	cmd.Flags().DurationVar(&cacheTTL, "cache-ttl", 5*time.Minute, "Lifetime of cached board snapshots")
	return cmd
}
