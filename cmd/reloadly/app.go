package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Reloadly/reloadly-sdk-go/airtime"
	"github.com/Reloadly/reloadly-sdk-go/core"
	"github.com/Reloadly/reloadly-sdk-go/giftcard"
	"github.com/Reloadly/reloadly-sdk-go/internal/config"
	"github.com/Reloadly/reloadly-sdk-go/internal/logging"
	"github.com/Reloadly/reloadly-sdk-go/internal/output"
	"github.com/Reloadly/reloadly-sdk-go/internal/state"
)

// app is the state shared by every command of one invocation.
type app struct {
	stdout io.Writer
	format string

	cfg      *config.Config
	logger   *slog.Logger
	store    *state.State
	registry *prometheus.Registry
	metrics  *core.Metrics
	out      output.Format

	airtime  *airtime.API
	giftcard *giftcard.API
}

func newApp(stdout io.Writer) *app {
	return &app{stdout: stdout, format: string(output.JSON)}
}

// setup loads configuration and opens the token store. It runs before any
// command that talks to Reloadly.
func (a *app) setup() error {
	out, err := output.ParseFormat(a.format)
	if err != nil {
		return err
	}

	a.out = out

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	a.cfg = cfg
	a.logger = logging.NewLogger(cfg.Environment)

	store, err := state.LoadAt(cfg.StatePath)
	if err != nil {
		return fmt.Errorf("loading state: %w", err)
	}

	a.store = store
	a.registry = prometheus.NewRegistry()
	a.metrics = core.NewMetrics(a.registry)

	a.logger.Debug("reloadly starting",
		slog.String("version", core.Version),
		slog.String("environment", cfg.Deployment.String()),
		slog.String("state", cfg.StatePath),
	)

	return nil
}

// teardown logs what the invocation sent and closes the token store.
func (a *app) teardown() error {
	if a.store == nil {
		return nil
	}

	a.logMetrics()

	err := a.store.Close()
	a.store = nil

	return err
}

func (a *app) logMetrics() {
	families, err := a.registry.Gather()
	if err != nil {
		a.logger.Warn("gathering metrics", slog.String("error", err.Error()))
		return
	}

	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			attrs := []any{slog.String("metric", mf.GetName())}
			for _, lp := range m.GetLabel() {
				attrs = append(attrs, slog.String(lp.GetName(), lp.GetValue()))
			}

			if c := m.GetCounter(); c != nil {
				attrs = append(attrs, slog.Float64("value", c.GetValue()))
			}

			if h := m.GetHistogram(); h != nil {
				attrs = append(attrs,
					slog.Uint64("count", h.GetSampleCount()),
					slog.Float64("sum_seconds", h.GetSampleSum()))
			}

			a.logger.Debug("client metrics", attrs...)
		}
	}
}

func (a *app) options(baseURL string) []core.Option {
	opts := append(a.cfg.ClientOptions(a.logger),
		core.WithTokenStore(a.store),
		core.WithMetrics(a.metrics),
	)

	if baseURL != "" {
		opts = append(opts, core.WithBaseURL(baseURL))
	}

	return opts
}

func (a *app) airtimeAPI() (*airtime.API, error) {
	if a.airtime != nil {
		return a.airtime, nil
	}

	api, err := airtime.New(a.cfg.Credentials(), a.options(a.cfg.AirtimeURL)...)
	if err != nil {
		return nil, fmt.Errorf("creating airtime client: %w", err)
	}

	a.airtime = api

	return api, nil
}

func (a *app) giftcardAPI() (*giftcard.API, error) {
	if a.giftcard != nil {
		return a.giftcard, nil
	}

	api, err := giftcard.New(a.cfg.Credentials(), a.options(a.cfg.GiftcardURL)...)
	if err != nil {
		return nil, fmt.Errorf("creating giftcard client: %w", err)
	}

	a.giftcard = api

	return api, nil
}

func (a *app) render(v any) error {
	return output.Write(a.stdout, a.out, v)
}

// run executes a request built by an operation, refreshing the token once
// if the server reports it expired, and renders the result.
func run[T any](ctx context.Context, a *app, api core.ServiceAPI, req *core.Request[T], err error) error {
	if err != nil {
		return err
	}

	res, err := core.ExecuteRefreshing(ctx, api, req)
	if err != nil {
		return err
	}

	return a.render(res)
}
