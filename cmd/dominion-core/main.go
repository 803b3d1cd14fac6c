package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"

	"github.com/dominionforge/dominion-core/combat"
	"github.com/dominionforge/dominion-core/command"
	"github.com/dominionforge/dominion-core/config"
	"github.com/dominionforge/dominion-core/container"
	"github.com/dominionforge/dominion-core/entity"
	"github.com/dominionforge/dominion-core/event"
	"github.com/dominionforge/dominion-core/httpapi"
	"github.com/dominionforge/dominion-core/ipc"
	"github.com/dominionforge/dominion-core/model"
	"github.com/dominionforge/dominion-core/movement"
	"github.com/dominionforge/dominion-core/production"
	"github.com/dominionforge/dominion-core/registry"
	"github.com/dominionforge/dominion-core/rng"
	"github.com/dominionforge/dominion-core/sim"
	"github.com/dominionforge/dominion-core/skirmish"
	"github.com/dominionforge/dominion-core/special"
	"github.com/dominionforge/dominion-core/stream"
	"github.com/dominionforge/dominion-core/upgrade"
)

const banner = `
██████╗  ██████╗ ███╗   ███╗██╗███╗   ██╗██╗ ██████╗ ███╗   ██╗
██╔══██╗██╔═══██╗████╗ ████║██║████╗  ██║██║██╔═══██╗████╗  ██║
██║  ██║██║   ██║██╔████╔██║██║██╔██╗ ██║██║██║   ██║██╔██╗ ██║
██║  ██║██║   ██║██║╚██╔╝██║██║██║╚██╗██║██║██║   ██║██║╚██╗██║
██████╔╝╚██████╔╝██║ ╚═╝ ██║██║██║ ╚████║██║╚██████╔╝██║ ╚████║
╚═════╝  ╚═════╝ ╚═╝     ╚═╝╚═╝╚═╝  ╚═══╝╚═╝ ╚═════╝ ╚═╝  ╚═══╝

Deterministic RTS simulation core
`

func main() {
	cfg := config.Load()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	fmt.Println(banner)

	bundle := model.DataBundle{}
	if path := os.Getenv("DOMINION_BUNDLE_PATH"); path != "" {
		loaded, err := registry.LoadBundleYAML(path)
		if err != nil {
			slog.Error("failed to load data bundle", "path", path, "error", err)
			os.Exit(1)
		}
		bundle = loaded
	}

	sides := map[string]*model.SideState{
		"america": model.NewSideState("america", "HUMAN"),
		"gla":     model.NewSideState("gla", "HUMAN"),
	}

	reg := registry.Build(bundle)
	store := entity.NewStore(reg)
	bus := event.NewBus()
	rngStream := rng.NewStream(cfg.Seed)

	cb := combat.NewKernel(reg, store, rngStream, bus, nil)
	mv := movement.NewKernel(reg, store, bus)
	pr := production.NewKernel(reg, store, bus, sides)
	up := upgrade.NewKernel(reg, store, bus, sides)
	ct := container.NewKernel(store, bus)
	sp := special.NewKernel(reg, store, bus, rngStream, sides)
	sk := skirmish.NewKernel(reg, store, sides, pr, up, mv, cb)
	disp := command.NewDispatcher(reg, store, sides, cb, mv, pr, up, ct, sp)

	simKernel := sim.New(sim.Config{
		Reg: reg, Store: store, Bus: bus, Sides: sides,
		Dispatcher: disp, Combat: cb, Movement: mv, Production: pr,
		Upgrade: up, Container: ct, Special: sp, Skirmish: sk,
		MapWidth: cfg.MapWidth, MapHeight: cfg.MapHeight,
	})

	host := ipc.NewHost(disp)
	broadcaster := stream.NewBroadcaster()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error { return runSocketServer(groupCtx, cfg.SocketPath, host) })
	group.Go(func() error { return runStreamServer(groupCtx, cfg.StreamAddr, broadcaster) })
	group.Go(func() error {
		handler := httpapi.NewHandler(store, sides, func() int64 { return simKernel.Frame })
		router := mux.NewRouter()
		handler.RegisterRoutes(router)
		return runHTTPServer(groupCtx, cfg.DebugAddr, router)
	})
	group.Go(func() error { return runFrameLoop(groupCtx, simKernel, broadcaster, store) })

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("shutting down with error", "error", err)
		os.Exit(1)
	}
	slog.Info("shutdown complete")
}

// runFrameLoop drives sim.Kernel at a fixed 30 Hz tick and broadcasts the
// resulting snapshot and events to every attached spectator (spec.md
// Section 4.C13, Section 5 "update(dt) is the only mutation point").
func runFrameLoop(ctx context.Context, k *sim.Kernel, broadcaster *stream.Broadcaster, store *entity.Store) error {
	ticker := time.NewTicker(time.Duration(model.FrameMs) * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			events := k.Advance(model.FrameMs)
			broadcaster.Publish(stream.Frame{
				FrameNumber: k.Frame,
				Entities:    store.GetRenderableEntityStates(),
				Events:      events,
			})
		}
	}
}

func runSocketServer(ctx context.Context, socketPath string, host *ipc.Host) error {
	if err := os.RemoveAll(socketPath); err != nil {
		return fmt.Errorf("clean up socket: %w", err)
	}
	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return fmt.Errorf("listen on socket: %w", err)
	}
	defer listener.Close()
	defer os.Remove(socketPath)
	slog.Info("listening on domain socket", "path", socketPath)

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				return fmt.Errorf("accept connection: %w", err)
			}
		}
		go host.Attach(ipc.NewConnection(conn, nil))
	}
}

func runStreamServer(ctx context.Context, addr string, broadcaster *stream.Broadcaster) error {
	srv := &http.Server{Addr: addr, Handler: broadcaster}
	return runHTTPWithShutdown(ctx, srv, "spectator stream")
}

func runHTTPServer(ctx context.Context, addr string, router *mux.Router) error {
	srv := &http.Server{Addr: addr, Handler: router}
	return runHTTPWithShutdown(ctx, srv, "debug api")
}

func runHTTPWithShutdown(ctx context.Context, srv *http.Server, name string) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "server", name, "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("%s server: %w", name, err)
	}
}
