package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/odvcencio/dereference/cache"
	"github.com/odvcencio/dereference/config"
	"github.com/odvcencio/dereference/fetchrpc"
	"github.com/odvcencio/dereference/listedit"
	"github.com/odvcencio/dereference/observability"
	"github.com/odvcencio/dereference/runtime"
	"github.com/odvcencio/dereference/state"
	"github.com/odvcencio/dereference/termview"
)

func main() {
	var (
		configFile = flag.String("config", "", "Path to config file (YAML or TOML)")
		serveAddr  = flag.String("serve", "", "Serve the demo catalog over Connect on this address instead of running the UI")
		endpoint   = flag.String("endpoint", "", "Fetch cache content from this Connect endpoint (overrides config)")
		verbose    = flag.Bool("verbose", false, "Enable debug logging")
	)
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *endpoint != "" {
		cfg.Cache.Endpoint = *endpoint
	}
	if *verbose {
		cfg.Log.Level = "debug"
	}

	// The UI owns the terminal, so it logs to a file; the server logs to stderr.
	out := io.Writer(os.Stderr)
	if *serveAddr == "" {
		file, err := openLogFile(cfg.Log.File)
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
		defer file.Close()
		out = file
	}
	logger := newLogger(out, cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *serveAddr != "" {
		err = serve(ctx, *serveAddr, logger)
	} else {
		err = run(ctx, cfg, logger)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("exit", "error", err)
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newLogger(out io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: observability.ParseSlogLevel(cfg.Level)}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(out, opts))
	}
	return slog.New(slog.NewTextHandler(out, opts))
}

func openLogFile(path string) (*os.File, error) {
	if path == "" {
		return nil, errors.New("log file path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return file, nil
}

func serve(ctx context.Context, addr string, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle(fetchrpc.NewHandler(newCatalog(demoContent, 0), observability.NewSlogObserver(logger)))
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errs := make(chan error, 1)
	go func() {
		errs <- server.ListenAndServe()
	}()
	logger.Info("serving cache service", "addr", addr, "procedure", fetchrpc.FetchProcedure)

	select {
	case err := <-errs:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}

	obs := observability.NewSlogObserver(logger)
	app := termview.NewApp(screen, termview.NewListScreen(), termview.NewCacheScreen())
	loop := runtime.NewLoop(runtime.LoopConfig{Update: app.Update, Render: app.Draw})

	subs := wire(cfg, app, loop, newFetcher(cfg, logger), obs)
	loop.Spawn(app.Input())

	logger.Info("started", "elements", len(cfg.Elements), "keys", len(cfg.Cache.Keys), "endpoint", cfg.Cache.Endpoint)
	err = loop.Run(ctx)

	subs.Clear()
	screen.Fini()
	loop.Stop()
	logger.Info("stopped")
	return err
}

// wire connects both state machines to the terminal views. Machine
// reactions run on the loop; view updates mark the screen dirty.
func wire(cfg config.Config, app *termview.App, loop *runtime.Loop, fetcher cache.Fetcher, obs observability.Observer) *state.Subscriptions {
	redraw := loop.Invalidator()

	list := listedit.NewState(cfg.Elements...)
	subs := listedit.Subscribe(app.List(), list, listedit.WithObserver(obs))
	subs.Merge(listedit.Bind(app.List(), list, redraw))

	entries := state.NewHolder(cache.NewMap(cfg.Cache.Keys...))
	filter := state.NewHolder(cfg.Cache.Initial)
	subs.Merge(cache.Bind(app.Cache(), entries, filter, redraw))
	subs.Add(cache.ConnectFilter(app.Cache(), filter))

	opts := []cache.Option{
		cache.WithRunner(loop.Go),
		cache.WithScheduler(loop),
		cache.WithTimeout(cfg.Cache.Timeout),
		cache.WithObserver(obs),
	}
	if cfg.Cache.InitialFetch {
		opts = append(opts, cache.WithInitialFetch())
	}
	subs.Add(cache.HandleFilterChange(fetcher, entries, filter, opts...))
	return subs
}

func newFetcher(cfg config.Config, logger *slog.Logger) cache.Fetcher {
	if cfg.Cache.Endpoint == "" {
		return newCatalog(demoContent, 300*time.Millisecond)
	}
	logger.Info("using remote cache service", "endpoint", cfg.Cache.Endpoint)
	return fetchrpc.NewClient(http.DefaultClient, cfg.Cache.Endpoint)
}
