package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-strategy-wizard/components/simbackend"
	"github.com/goliatone/go-strategy-wizard/internal/config"
	"github.com/goliatone/go-strategy-wizard/internal/logging"
	"github.com/goliatone/go-strategy-wizard/internal/metrics"
	"github.com/goliatone/go-strategy-wizard/internal/webui"
	"github.com/goliatone/go-strategy-wizard/pkg/form"
	"github.com/goliatone/go-strategy-wizard/pkg/render"
	"github.com/goliatone/go-strategy-wizard/pkg/renderers/html"
	"github.com/goliatone/go-strategy-wizard/pkg/renderers/text"
	"github.com/goliatone/go-strategy-wizard/pkg/renderers/tui"
	"github.com/goliatone/go-strategy-wizard/pkg/simulation"
	"github.com/goliatone/go-strategy-wizard/pkg/strategy"
	"github.com/goliatone/go-strategy-wizard/pkg/wizard"
)

const shutdownGrace = 5 * time.Second

// app is what every command needs once configuration is resolved.
type app struct {
	cfg    config.Config
	logger *zap.Logger
}

func loadApp(cmd *cli.Command) (app, error) {
	opts := []config.LoadOption{config.WithFile(cmd.String("config"))}
	if cmd.IsSet("env-file") {
		opts = append(opts, config.WithEnvFile(cmd.String("env-file")))
	}
	cfg, err := config.Load(opts...)
	if err != nil {
		return app{}, err
	}
	if lvl := cmd.String("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	if format := cmd.String("log-format"); format != "" {
		cfg.LogFormat = format
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return app{}, err
	}
	return app{cfg: cfg, logger: logger}, nil
}

// newSubmitter builds the simulation client. With --mock it also starts an
// in-process mock backend and returns its shutdown func.
func (rt app) newSubmitter(ctx context.Context, cmd *cli.Command) (*simulation.Client, func(), error) {
	endpoint := rt.cfg.Endpoint
	if e := cmd.String("endpoint"); e != "" {
		endpoint = e
	}
	stop := func() {}
	if cmd.Bool("mock") {
		url, shutdown, err := startMock(ctx, rt.logger, int(cmd.Int("mock-fail-status")))
		if err != nil {
			return nil, nil, err
		}
		endpoint, stop = url, shutdown
	}

	opts := []simulation.ClientOption{
		simulation.WithDelay(rt.cfg.SubmitDelay),
		simulation.WithTimeout(rt.cfg.RequestTimeout),
		simulation.WithLogger(rt.logger.Named("simulation")),
	}
	if rt.cfg.ValidateRequest {
		contract, err := simulation.BundledContract()
		if err != nil {
			stop()
			return nil, nil, err
		}
		opts = append(opts, simulation.WithContract(contract))
	}
	return simulation.NewClient(endpoint, opts...), stop, nil
}

func (rt app) newStore(cmd *cli.Command, observer wizard.Observer) (*wizard.Store, error) {
	opts := []wizard.StoreOption{wizard.WithLogger(rt.logger.Named("wizard"))}
	if observer != nil {
		opts = append(opts, wizard.WithObserver(observer))
	}
	raw := cmd.String("strategy")
	if raw == "" {
		raw = rt.cfg.InitialStrategy
	}
	if raw != "" {
		key, err := strategy.ParseKey(raw)
		if err != nil {
			return nil, err
		}
		opts = append(opts, wizard.WithInitialStrategy(key))
	}
	return wizard.NewStore(opts...), nil
}

func startMock(ctx context.Context, logger *zap.Logger, failStatus int) (string, func(), error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, fmt.Errorf("mock backend: %w", err)
	}
	router := mux.NewRouter()
	pattern, err := simbackend.RegisterRoutes(router, "/",
		simbackend.WithFailStatus(failStatus),
		simbackend.WithLogger(logger.Named("mock")),
	)
	if err != nil {
		_ = ln.Close()
		return "", nil, err
	}
	srv := &http.Server{Handler: router, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("mock backend stopped", zap.Error(err))
		}
	}()
	stop := func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownGrace)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
	return "http://" + ln.Addr().String() + pattern, stop, nil
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	rt, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = rt.logger.Sync() }()

	client, stop, err := rt.newSubmitter(ctx, cmd)
	if err != nil {
		return err
	}
	defer stop()

	store, err := rt.newStore(cmd, nil)
	if err != nil {
		return err
	}

	session := tui.NewSession(store, client,
		tui.WithLogger(rt.logger.Named("tui")),
		tui.WithSpinner(!cmd.Bool("no-spinner")),
	)
	_, err = session.Run(ctx)
	if errors.Is(err, tui.ErrAborted) {
		fmt.Fprintln(os.Stdout, "Aborted.")
		return nil
	}
	return err
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	rt, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = rt.logger.Sync() }()

	client, stop, err := rt.newSubmitter(ctx, cmd)
	if err != nil {
		return err
	}
	defer stop()

	var recorder *metrics.Recorder
	var observer wizard.Observer
	if rt.cfg.Metrics {
		recorder = metrics.New()
		observer = recorder
	}
	store, err := rt.newStore(cmd, observer)
	if err != nil {
		return err
	}

	page, err := html.New(html.WithTheme(html.DefaultTheme(), rt.cfg.ThemeVariant))
	if err != nil {
		return err
	}
	server, err := webui.New(store, client,
		webui.WithLogger(rt.logger.Named("webui")),
		webui.WithMetrics(recorder),
		webui.WithRenderer(page),
	)
	if err != nil {
		return err
	}

	addr := rt.cfg.ListenAddr
	if a := cmd.String("addr"); a != "" {
		addr = a
	}
	rt.logger.Info("serving wizard", zap.String("addr", addr), zap.String("endpoint", client.Endpoint()))
	return listenAndServe(ctx, rt.logger, addr, server.Handler())
}

func mockBackendAction(ctx context.Context, cmd *cli.Command) error {
	rt, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = rt.logger.Sync() }()

	router := mux.NewRouter()
	component := simbackend.New(
		simbackend.WithFailStatus(int(cmd.Int("fail-status"))),
		simbackend.WithDelay(cmd.Duration("delay")),
		simbackend.WithLogger(rt.logger.Named("mock")),
	)
	pattern, err := component.RegisterRoutes(router, "/")
	if err != nil {
		return err
	}

	addr := rt.cfg.MockAddr
	if a := cmd.String("addr"); a != "" {
		addr = a
	}
	rt.logger.Info("mock backend listening", zap.String("addr", addr), zap.String("route", pattern))
	return listenAndServe(ctx, rt.logger, addr, router)
}

func listenAndServe(ctx context.Context, logger *zap.Logger, addr string, handler http.Handler) error {
	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 5 * time.Second}

	errChan := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
	return nil
}

func schemaAction(_ context.Context, cmd *cli.Command) error {
	switch strings.ToLower(cmd.String("format")) {
	case "jsonschema", "json":
		raw, err := simulation.PayloadSchemaJSON()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(os.Stdout, string(raw))
		return err
	case "openapi", "yaml":
		_, err := os.Stdout.Write(simulation.Document())
		return err
	default:
		return fmt.Errorf("unknown schema format %q", cmd.String("format"))
	}
}

func defaultsAction(_ context.Context, cmd *cli.Command) error {
	reg := strategy.DefaultRegistry()
	if cmd.Args().Len() == 0 {
		tw := table.NewWriter()
		tw.SetTitle("STRATEGIES")
		tw.SetStyle(table.StyleRounded)
		tw.AppendHeader(table.Row{"Key", "Name", "Description"})
		for _, opt := range reg.Options() {
			tw.AppendRow(table.Row{opt.Key, opt.Label, opt.Description})
		}
		_, err := fmt.Fprintln(os.Stdout, tw.Render())
		return err
	}

	key, err := strategy.ParseKey(cmd.Args().First())
	if err != nil {
		return err
	}
	cfg, err := reg.Default(key)
	if err != nil {
		return err
	}
	tree, err := strategy.ToTree(cfg)
	if err != nil {
		return err
	}
	common, err := strategy.CommonToTree(strategy.DefaultCommon())
	if err != nil {
		return err
	}
	doc := map[string]any{
		"key":        string(key),
		"parameters": tree["parameters"],
		"logics":     tree["logics"],
		"common":     common,
	}

	switch strings.ToLower(cmd.String("format")) {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case "yaml", "":
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(doc)
	default:
		return fmt.Errorf("unknown format %q", cmd.String("format"))
	}
}

func previewAction(ctx context.Context, cmd *cli.Command) error {
	key, err := strategy.ParseKey(cmd.String("strategy"))
	if err != nil {
		return err
	}
	store := wizard.NewStore(wizard.WithInitialStrategy(key))

	step := wizard.Step(int(cmd.Int("step")))
	if !step.Valid() {
		return fmt.Errorf("step must be 1, 2 or 3")
	}
	if step > wizard.StepData {
		if err := store.SetDataField("startDate", "2024-01-01"); err != nil {
			return err
		}
		if err := store.SetDataField("endDate", "2024-06-01"); err != nil {
			return err
		}
	}
	for store.Step() < step {
		if err := store.NextStep(); err != nil {
			return err
		}
	}

	page, err := render.BuildPage(store.Snapshot(), strategy.DefaultRegistry(), form.NewInterpreter())
	if err != nil {
		return err
	}

	reg, err := previewRenderers()
	if err != nil {
		return err
	}
	renderer, err := reg.Get(cmd.String("renderer"))
	if err != nil {
		return err
	}
	out, err := renderer.Render(ctx, page)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(out)
	return err
}

func previewRenderers() (*render.Registry, error) {
	htmlRenderer, err := html.New()
	if err != nil {
		return nil, err
	}
	return render.NewRegistry(text.New(), htmlRenderer)
}
