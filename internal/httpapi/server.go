package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"salesd/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	PredictSales(ctx context.Context, req types.PredictRequest) (types.PredictResponse, error)
	Forecast(ctx context.Context, req types.ForecastRequest) (types.Forecast, error)
	Ready() bool
}

// HealthMessage is the fixed readiness payload of GET /health.
const HealthMessage = "All ready to go!"

var info = types.InfoResponse{
	ProjectDescription: "This API serves predictions using XGBoost and Prophet models for sales revenue.",
	Endpoints: []types.EndpointInfo{
		{Path: "/predict/xgboost/", Method: http.MethodPost, Description: "Predicts sales revenue."},
		{Path: "/predict/prophet/", Method: http.MethodPost, Description: "Forecasts next 7 days' sales revenue."},
	},
	ExpectedInput: map[string]map[string]string{
		"xgboost": {"date": "YYYY-MM-DD", "store_id": "store identifier", "item_id": "item identifier"},
		"prophet": {"date": "YYYY-MM-DD"},
	},
	OutputFormat: map[string]string{
		"xgboost": "prediction result",
		"prophet": "list of daily forecasts for the next 7 days",
	},
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(MetricsMiddleware)
	r.Use(middleware.Recoverer)
	// /predict/xgboost and /predict/xgboost/ are the same route
	r.Use(middleware.StripSlashes)
	r.Use(middleware.Compress(5))
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	h := &handlers{svc: svc}
	r.Get("/", h.info)
	r.Get("/health", h.health)
	r.Post("/predict/xgboost", h.predictXGBoost)
	r.Post("/predict/prophet", h.predictProphet)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("loading"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

type handlers struct {
	svc Service
}

// info godoc
// @Summary      Capability document
// @Description  Lists the prediction endpoints and their input and output shapes.
// @Tags         meta
// @Produce      json
// @Success      200  {object}  types.InfoResponse
// @Router       / [get]
func (h *handlers) info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, info)
}

// health godoc
// @Summary      Readiness message
// @Tags         meta
// @Produce      json
// @Success      200  {object}  types.HealthResponse
// @Router       /health [get]
func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.HealthResponse{Message: HealthMessage})
}

// predictXGBoost godoc
// @Summary      Predict daily sales for a store and item
// @Tags         predict
// @Accept       json
// @Produce      json
// @Param        request  body      types.PredictRequest  true  "date, store and item"
// @Success      200      {object}  types.PredictResponse
// @Failure      400      {object}  types.ErrorResponse
// @Failure      415      {object}  types.ErrorResponse
// @Failure      503      {object}  types.ErrorResponse
// @Router       /predict/xgboost/ [post]
func (h *handlers) predictXGBoost(w http.ResponseWriter, r *http.Request) {
	var req types.PredictRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	lvl := requestLogLevel(r)
	start := time.Now()
	logStart(r, lvl, "xgboost", map[string]string{"date": req.Date, "store_id": req.StoreID, "item_id": req.ItemID})

	ctx, cancel := predictContext(r)
	defer cancel()
	resp, err := h.svc.PredictSales(ctx, req)
	if err != nil {
		writeServiceError(w, r, lvl, start, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
	logEnd(r, lvl, http.StatusOK, start, nil)
}

// predictProphet godoc
// @Summary      Forecast the 7 days after a date
// @Description  Responds with an object keyed by YYYY-MM-DD in ascending order.
// @Tags         predict
// @Accept       json
// @Produce      json
// @Param        request  body      types.ForecastRequest  true  "anchor date"
// @Success      200      {object}  map[string]number
// @Failure      400      {object}  types.ErrorResponse
// @Failure      500      {object}  types.ErrorResponse
// @Failure      503      {object}  types.ErrorResponse
// @Router       /predict/prophet/ [post]
func (h *handlers) predictProphet(w http.ResponseWriter, r *http.Request) {
	var req types.ForecastRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	lvl := requestLogLevel(r)
	start := time.Now()
	logStart(r, lvl, "prophet", map[string]string{"date": req.Date})

	ctx, cancel := predictContext(r)
	defer cancel()
	fc, err := h.svc.Forecast(ctx, req)
	if err != nil {
		writeServiceError(w, r, lvl, start, err)
		return
	}
	writeJSON(w, http.StatusOK, fc)
	logEnd(r, lvl, http.StatusOK, start, nil)
}

// decodeJSON enforces the JSON content type and body limit, then decodes
// into v. It writes the error response itself and reports success.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		IncrementErrors("media_type")
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		// oversized bodies also land here; still 400 to avoid leaking the limit
		IncrementErrors("invalid_json")
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeServiceError(w http.ResponseWriter, r *http.Request, lvl LogLevel, start time.Time, err error) {
	// If the client went away there is nobody to answer.
	if clientGone(r) {
		return
	}
	status, kind := statusFor(err)
	if shuttingDown() && errors.Is(err, context.Canceled) {
		status, kind = http.StatusServiceUnavailable, "shutdown"
		err = errors.New("server is shutting down")
	}
	IncrementErrors(kind)
	writeJSONError(w, status, err.Error())
	logEnd(r, lvl, status, start, err)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(b)
}
