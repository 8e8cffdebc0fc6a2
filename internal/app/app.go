// Package app wires the duelboard service: catalog, storage channel,
// snapshot store, registry, display hub and the HTTP trigger API.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/duelboard/duelboard/internal/api/httpapi"
	"github.com/duelboard/duelboard/internal/catalog"
	"github.com/duelboard/duelboard/internal/platform/config"
	"github.com/duelboard/duelboard/internal/service"
	"github.com/duelboard/duelboard/internal/snapshot"
	"github.com/duelboard/duelboard/internal/storechan"
	"github.com/duelboard/duelboard/internal/storechan/factory"
	"github.com/duelboard/duelboard/internal/surface/ws"
	"github.com/duelboard/duelboard/internal/tracker"
)

const shutdownTimeout = 10 * time.Second

// App is the assembled service with its listener bound.
type App struct {
	listener net.Listener
	server   *http.Server
	channel  storechan.Channel
	svc      *service.Service
}

// New builds the full service graph from configuration and binds the HTTP
// listener. Sessions are restored from the storage channel before serving.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	cat, err := catalog.Load()
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	channel, err := openChannel(cfg)
	if err != nil {
		return nil, fmt.Errorf("open storage channel: %w", err)
	}

	store := snapshot.NewStore(channel, cat,
		snapshot.WithMinInterval(cfg.SnapshotMinInterval),
		snapshot.WithRetention(cfg.SnapshotRetention),
		snapshot.WithSearchWindow(cfg.SnapshotSearchWindow),
	)

	hub := ws.NewHub()
	svc := service.New(cat, tracker.NewRegistry(), hub, store)
	svc.RestoreAll(ctx)

	listener, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		channel.Close()
		return nil, fmt.Errorf("listen on %s: %w", cfg.HTTPAddr, err)
	}

	return &App{
		listener: listener,
		server:   &http.Server{Handler: httpapi.New(svc, hub).Router()},
		channel:  channel,
		svc:      svc,
	}, nil
}

func openChannel(cfg config.Config) (storechan.Channel, error) {
	driver := factory.Driver(cfg.StoreDriver)
	switch driver {
	case factory.DriverRedis:
		client := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		return factory.Open(driver, factory.WithRedisClient(client))
	case factory.DriverSQLite, factory.DriverBolt:
		return factory.Open(driver, factory.WithPath(cfg.StorePath))
	default:
		return factory.Open(driver)
	}
}

// Addr reports the bound listen address.
func (a *App) Addr() string {
	return a.listener.Addr().String()
}

// Serve runs the HTTP server until the context is cancelled, then shuts
// down gracefully and closes the storage channel.
func (a *App) Serve(ctx context.Context) error {
	log.Printf("serving addr=%s", a.Addr())

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := a.server.Serve(a.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	if closeErr := a.channel.Close(); closeErr != nil {
		log.Printf("close storage channel err=%v", closeErr)
	}
	return err
}
