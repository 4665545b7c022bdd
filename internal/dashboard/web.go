package dashboard

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"salesd/pkg/types"
)

//go:embed templates/index.html
var templatesFS embed.FS

var pageTmpl = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

// Forecaster is the slice of Client the web UI needs.
type Forecaster interface {
	Forecast(ctx context.Context, date string) (types.Forecast, error)
}

type pageData struct {
	Date  string
	Lines []string
	Chart template.HTML
	Error string
}

// NewWebHandler returns the dashboard UI: GET / shows the form, POST / runs
// one forecast and renders it below the form.
func NewWebHandler(api Forecaster, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		render(w, log, pageData{})
	})

	r.Post("/", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			render(w, log, pageData{Error: err.Error()})
			return
		}
		data := pageData{Date: r.PostForm.Get("date")}
		fc, err := api.Forecast(r.Context(), data.Date)
		if err != nil {
			log.Warn().Err(err).Str("date", data.Date).Msg("forecast failed")
			data.Error = err.Error()
			render(w, log, data)
			return
		}
		data.Lines = FormatLines(fc)
		var svg bytes.Buffer
		if err := RenderChart(&svg, fc); err != nil {
			log.Warn().Err(err).Msg("chart render failed")
			data.Error = err.Error()
		} else {
			// go-chart output is generated markup, not user input
			data.Chart = template.HTML(svg.String())
		}
		render(w, log, data)
	})

	return r
}

func render(w http.ResponseWriter, log zerolog.Logger, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTmpl.Execute(w, data); err != nil {
		log.Error().Err(err).Msg("render page")
	}
}
