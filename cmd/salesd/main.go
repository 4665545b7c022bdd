package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"salesd/internal/config"
	"salesd/internal/httpapi"
	"salesd/internal/predictor"
	"salesd/internal/registry"
)

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	defaults := config.Config{
		Addr:      envOr("SALESD_ADDR", ":8000"),
		ModelsDir: envOr("SALESD_MODELS_DIR", "models"),
		LogLevel:  envOr("SALESD_LOG_LEVEL", "info"),
		LogFormat: "console",
	}

	configPath := flag.String("config", "", "Optional config file (.yaml/.yml, .json, .toml)")
	var cli config.Config
	flag.StringVar(&cli.Addr, "addr", "", "HTTP listen address (default "+defaults.Addr+")")
	flag.StringVar(&cli.ModelsDir, "models-dir", "", "Directory holding the model artifacts (default "+defaults.ModelsDir+")")
	flag.StringVar(&cli.TreeModel, "tree-model", "", "Explicit path of the XGBoost JSON model")
	flag.StringVar(&cli.ForecastModel, "forecast-model", "", "Explicit path of the forecast model")
	flag.StringVar(&cli.Encoders, "encoders", "", "Explicit path of the label encoders file")
	flag.StringVar(&cli.LogLevel, "log-level", "", "Log level: off|error|info|debug")
	flag.StringVar(&cli.LogFormat, "log-format", "", "Log format: console|json")
	flag.Int64Var(&cli.MaxBodyBytes, "max-body-bytes", 0, "Maximum JSON request body size (0 = 1MiB)")
	flag.Int64Var(&cli.PredictTimeoutSeconds, "predict-timeout", 0, "Per-request prediction timeout in seconds (0 = none)")
	corsOrigins := flag.String("cors-origins", "", "Comma-separated allowed CORS origins; enables CORS when set")
	flag.Parse()

	cfg := defaults
	if *configPath != "" {
		fileCfg, err := config.Load(*configPath)
		if err != nil {
			l := zerolog.New(os.Stderr)
			l.Fatal().Err(err).Str("path", *configPath).Msg("load config")
		}
		cfg = config.Merge(cfg, fileCfg)
	}
	if origins := splitCSV(*corsOrigins); len(origins) > 0 {
		cli.CORSEnabled = true
		cli.CORSAllowedOrigins = origins
	}
	cfg = config.Merge(cfg, cli)

	log := newLogger(cfg.LogFormat, cfg.LogLevel)

	arts, err := registry.Resolve(cfg.ModelsDir, registry.Files{
		TreeModel:     cfg.TreeModel,
		ForecastModel: cfg.ForecastModel,
		Encoders:      cfg.Encoders,
	})
	if err != nil {
		log.Fatal().Err(err).Str("models_dir", cfg.ModelsDir).Msg("resolve model artifacts")
	}
	pred, err := predictor.Load(arts)
	if err != nil {
		log.Fatal().Err(err).Msg("load models")
	}
	for _, a := range pred.Artifacts() {
		log.Info().Str("kind", string(a.Kind)).Str("path", a.Path).Msg("artifact loaded")
	}

	httpapi.SetLogger(log)
	httpapi.SetDefaultLogLevel(cfg.LogLevel)
	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	httpapi.SetPredictTimeoutSeconds(cfg.PredictTimeoutSeconds)
	if cfg.CORSEnabled {
		methods := cfg.CORSAllowedMethods
		if len(methods) == 0 {
			methods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
		}
		headers := cfg.CORSAllowedHeaders
		if len(headers) == 0 {
			headers = []string{"Content-Type", "X-Request-Id", "X-Log-Level"}
		}
		httpapi.SetCORSOptions(true, cfg.CORSAllowedOrigins, methods, headers)
	}

	// Cancelled on shutdown so in-flight predictions stop early.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	httpapi.SetBaseContext(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewMux(pred),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("models_dir", cfg.ModelsDir).Msg("salesd listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
		return
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown error")
	}
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// splitCSV splits a comma-separated list, trimming blanks and dropping empties.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func newLogger(format, level string) zerolog.Logger {
	lvl := zerolog.InfoLevel
	switch strings.ToLower(level) {
	case "debug":
		lvl = zerolog.DebugLevel
	case "error":
		lvl = zerolog.ErrorLevel
	case "off":
		lvl = zerolog.Disabled
	}
	var l zerolog.Logger
	if strings.EqualFold(format, "json") {
		l = zerolog.New(os.Stderr)
	} else {
		l = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	return l.Level(lvl).With().Timestamp().Str("service", "salesd").Logger()
}
