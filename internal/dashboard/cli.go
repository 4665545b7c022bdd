package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Config holds the dashboard's command-line settings.
type Config struct {
	APIURL   string
	Timeout  time.Duration
	LogLevel string
	Addr     string
}

// DefaultConfig reads API_URL and fills the remaining defaults.
func DefaultConfig() *Config {
	return &Config{APIURL: APIURLFromEnv(), LogLevel: "info", Addr: ":8501"}
}

// NewLogger builds a console zerolog logger at the given level.
func NewLogger(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).Level(lvl).With().Timestamp().Logger()
}

// NewRootCmd constructs the dashboard command tree writing to out/errOut.
func NewRootCmd(cfg *Config, out, errOut io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "dashboard",
		Short:         "Forecast dashboard for the salesd prediction service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.PersistentFlags().StringVar(&cfg.APIURL, "api-url", cfg.APIURL, "Base URL of the prediction service (defaults API_URL or "+DefaultAPIURL+")")
	root.PersistentFlags().DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "HTTP client timeout (0 = transport default)")
	root.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug|info|warn|error")

	var chartPath string
	forecastCmd := &cobra.Command{
		Use:     "forecast <date>",
		Short:   "Fetch the 7-day forecast after <date> and print it",
		Example: "  dashboard forecast 2024-01-01 --chart forecast.svg",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runForecast(cmd.Context(), NewClient(cfg.APIURL, cfg.Timeout), args[0], chartPath, out)
		},
	}
	forecastCmd.Flags().StringVar(&chartPath, "chart", "", "Write the line chart as SVG to this file")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the interactive dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := NewLogger(errOut, cfg.LogLevel)
			return serve(cmd.Context(), cfg, log)
		},
	}
	serveCmd.Flags().StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address for the dashboard")

	root.AddCommand(forecastCmd, serveCmd)
	return root
}

func runForecast(ctx context.Context, api Forecaster, date, chartPath string, out io.Writer) error {
	fc, err := api.Forecast(ctx, date)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "Forecast Results:")
	for _, line := range FormatLines(fc) {
		fmt.Fprintln(out, line)
	}
	if chartPath == "" {
		return nil
	}
	f, err := os.Create(chartPath)
	if err != nil {
		return fmt.Errorf("create chart: %w", err)
	}
	if err := RenderChart(f, fc); err != nil {
		f.Close()
		return fmt.Errorf("render chart: %w", err)
	}
	return f.Close()
}

func serve(ctx context.Context, cfg *Config, log zerolog.Logger) error {
	client := NewClient(cfg.APIURL, cfg.Timeout)
	srv := &http.Server{Addr: cfg.Addr, Handler: NewWebHandler(client, log)}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("api_url", client.BaseURL()).Msg("dashboard listening")
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
