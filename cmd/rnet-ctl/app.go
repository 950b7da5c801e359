package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/rnetctl/rnet-go/pkg/connection"
	rlog "github.com/rnetctl/rnet-go/pkg/log"
	"github.com/rnetctl/rnet-go/pkg/metrics"
	"github.com/rnetctl/rnet-go/pkg/persistence"
	"github.com/rnetctl/rnet-go/pkg/rio"
	"github.com/rnetctl/rnet-go/pkg/rnet"
	"github.com/rnetctl/rnet-go/pkg/transport"
)

// app holds everything one command needs to talk to a system.
type app struct {
	cfg    *Config
	system *ControllerConfig

	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	store    *persistence.TableStore
	conn     *transport.Conn
	names    names

	// onConnect runs after every successful connect, before fn starts on
	// the first one.
	onConnect func()

	out     io.Writer
	closers []io.Closer
}

// newApp sets up logging, metrics, capture and the connection. h receives
// connection events; nil uses the default printer.
func newApp(cfg *Config, system *ControllerConfig, out io.Writer, h transport.Handler) (*app, error) {
	a := &app{cfg: cfg, system: system, out: out, names: names{}}

	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	var w io.Writer = os.Stderr
	if cfg.LogFile != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10,
			MaxBackups: 5,
			MaxAge:     30,
			Compress:   true,
		}
		a.closers = append(a.closers, lj)
		w = lj
	}
	a.logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.metrics = metrics.New(metrics.WithRegistry(a.registry))

	if cfg.Cache != "" {
		a.store = persistence.NewTableStore(cfg.Cache)
		a.loadNames()
	}

	tc := system.Transport()
	tc.Logger = a.logger
	tc.Metrics = a.metrics
	plog, err := a.protocolLogger(level)
	if err != nil {
		a.Close()
		return nil, err
	}
	tc.ProtocolLogger = plog

	if h == nil {
		h = a.printer()
	}
	a.conn = transport.New(tc, h)
	return a, nil
}

// protocolLogger builds the capture chain. Debug logging mirrors every
// event to the operational log.
func (a *app) protocolLogger(level slog.Level) (rlog.Logger, error) {
	var loggers []rlog.Logger
	if a.cfg.Capture != "" {
		fl, err := rlog.NewFileLogger(a.cfg.Capture)
		if err != nil {
			return nil, fmt.Errorf("open capture: %w", err)
		}
		a.closers = append(a.closers, fl)
		loggers = append(loggers, fl)
	}
	if level <= slog.LevelDebug {
		loggers = append(loggers, rlog.NewSlogAdapter(a.logger))
	}
	switch len(loggers) {
	case 0:
		return nil, nil
	case 1:
		return loggers[0], nil
	}
	return rlog.NewMultiLogger(loggers...), nil
}

// printer writes every message and unsolicited line to out.
func (a *app) printer() transport.Handler {
	return transport.HandlerFuncs{
		Message: func(msg *rnet.Message) {
			fmt.Fprintln(a.out, a.names.formatMessage(msg))
		},
		Line: func(l rio.Line) {
			fmt.Fprintln(a.out, a.names.formatLine(l))
		},
		StateChange: func(_, newState transport.State) {
			a.logger.Info("connection", "state", newState, "remote", a.conn.RemoteAddr())
		},
		Error: func(err error) {
			a.logger.Warn("connection error", "error", err)
		},
	}
}

// loadNames reads cached tables for name display. Errors only log.
func (a *app) loadNames() {
	state, err := a.store.Load()
	if err != nil {
		a.logger.Warn("load cache", "path", a.store.Path(), "error", err)
		return
	}
	if state == nil || state.Address != a.address() {
		return
	}
	for _, ct := range state.Controllers {
		a.names[ct.Controller] = ct.Table()
	}
}

// address identifies the system in the cache.
func (a *app) address() string {
	return a.system.Transport().Address()
}

// remember caches a fetched table.
func (a *app) remember(t *rnet.ZoneSourceTable) error {
	a.names[t.Controller] = t
	if a.store == nil {
		return nil
	}
	return a.store.Update(func(s *persistence.SystemState) {
		if s.Address != a.address() || s.Protocol != a.system.Protocol {
			*s = persistence.SystemState{Address: a.address(), Protocol: a.system.Protocol}
		}
		s.Put(persistence.FromTable(t, time.Now()))
	})
}

// cached returns a fresh cached table for the controller.
func (a *app) cached(controller int) (*rnet.ZoneSourceTable, bool) {
	if a.store == nil {
		return nil, false
	}
	state, err := a.store.Load()
	if err != nil || state == nil || state.Address != a.address() {
		return nil, false
	}
	if !state.Fresh(controller, a.cfg.CacheMaxAge, time.Now()) {
		return nil, false
	}
	return state.Table(controller)
}

// run connects, then runs fn next to the metrics endpoint. With supervise
// the connection is re-established on loss until ctx ends; otherwise a lost
// connection ends fn's context. Returning from fn stops everything.
func (a *app) run(ctx context.Context, supervise bool, fn func(ctx context.Context) error) error {
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	if !supervise {
		if err := a.conn.Connect(ctx); err != nil {
			return err
		}
		a.connected()
	}

	g, ctx := errgroup.WithContext(ctx)
	if a.cfg.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              a.cfg.MetricsAddr,
			Handler:           a.metricsHandler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			a.logger.Info("metrics listening", "addr", a.cfg.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	ready := make(chan struct{})
	if supervise {
		sup := connection.NewSupervisor(a.conn, connection.Config{
			Logger:  a.logger,
			Metrics: a.metrics,
			OnConnected: func(reconnect bool) {
				a.connected()
				if !reconnect {
					close(ready)
				}
			},
		})
		g.Go(func() error { return sup.Run(ctx) })
	} else {
		close(ready)
		g.Go(func() error {
			select {
			case <-a.conn.Done():
				stop()
			case <-ctx.Done():
			}
			return nil
		})
	}

	g.Go(func() error {
		defer stop()
		select {
		case <-ready:
		case <-ctx.Done():
			return nil
		}
		return fn(ctx)
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (a *app) connected() {
	if a.onConnect != nil {
		a.onConnect()
	}
}

func (a *app) metricsHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	return mux
}

// Close closes the connection and every opened file.
func (a *app) Close() error {
	var errs []error
	if a.conn != nil {
		if err := a.conn.Close(); err != nil && !errors.Is(err, transport.ErrConnectionClosed) {
			errs = append(errs, err)
		}
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	return errors.Join(errs...)
}
