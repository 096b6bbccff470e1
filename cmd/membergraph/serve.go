package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hanpama/membergraph/internal/config"
	"github.com/hanpama/membergraph/internal/eventbus"
	"github.com/hanpama/membergraph/internal/loader"
	"github.com/hanpama/membergraph/internal/logging"
	"github.com/hanpama/membergraph/internal/metrics"
	"github.com/hanpama/membergraph/internal/otel"
	"github.com/hanpama/membergraph/internal/resolver"
	"github.com/hanpama/membergraph/internal/server"
	"github.com/hanpama/membergraph/internal/store"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP GraphQL server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
	config.Flags(cmd.Flags())
	config.DatabaseFlags(cmd.Flags())
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	bus := eventbus.New()
	eventbus.Use(bus)
	defer eventbus.Use(nil)
	defer logging.Subscribe(bus, log)()

	shutdownTracing, err := otel.Setup(ctx, cfg.Otel.Endpoint, cfg.Otel.Service)
	if err != nil {
		return err
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	m := metrics.New()
	defer m.Subscribe(bus)()

	st, err := openStore(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer st.Close()
	if _, err := migrate(ctx, st); err != nil {
		return err
	}

	mux, err := newMux(cfg, st, m)
	if err != nil {
		return err
	}

	servers := []*http.Server{{Addr: cfg.Server.Addr, Handler: mux}}
	if cfg.Metrics.Addr != "" {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", m.Handler())
		servers = append(servers, &http.Server{Addr: cfg.Metrics.Addr, Handler: metricsMux})
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		g.Go(func() error {
			log.Info("listening", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		var errs []error
		for _, srv := range servers {
			errs = append(errs, srv.Shutdown(sctx))
		}
		return errors.Join(errs...)
	})
	return g.Wait()
}

// newMux wires the GraphQL handler over st. /metrics is mounted here unless
// it has its own listener.
func newMux(cfg *config.Config, st store.Store, m *metrics.Metrics) (*http.ServeMux, error) {
	doc, sch, err := resolver.LoadSchema()
	if err != nil {
		return nil, err
	}
	rt := resolver.New(st, loader.WithMaxBatch(cfg.Loader.MaxBatch))

	opts := []server.Option{
		server.WithTimeout(cfg.Server.Timeout),
		server.WithMaxBodyBytes(cfg.Server.MaxBodyBytes),
		server.WithMaxDepth(cfg.GraphQL.MaxDepth),
		server.WithRequestScope(rt.Scope),
	}
	if cfg.Server.Pretty {
		opts = append(opts, server.WithPretty())
	}
	if len(cfg.Server.CORSOrigins) > 0 {
		opts = append(opts, server.WithCORS(cfg.Server.CORSOrigins...))
	}
	h, err := server.New(rt, sch, doc, opts...)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/graphql", h)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	if cfg.Metrics.Addr == "" && m != nil {
		mux.Handle("/metrics", m.Handler())
	}
	return mux, nil
}
