package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"salesd/internal/predictor"
	"salesd/pkg/types"
)

type mockService struct {
	ready      bool
	predictErr error
	sales      *float64
	forecast   types.Forecast
	lastReq    types.PredictRequest
}

func (m *mockService) Ready() bool { return m.ready }
func (m *mockService) PredictSales(ctx context.Context, req types.PredictRequest) (types.PredictResponse, error) {
	m.lastReq = req
	if m.predictErr != nil {
		return types.PredictResponse{}, m.predictErr
	}
	return types.PredictResponse{Date: req.Date, StoreID: req.StoreID, ItemID: req.ItemID, PredictedSales: m.sales}, nil
}
func (m *mockService) Forecast(ctx context.Context, req types.ForecastRequest) (types.Forecast, error) {
	if m.predictErr != nil {
		return nil, m.predictErr
	}
	return m.forecast, nil
}

type mockHTTPError struct {
	msg  string
	code int
}

func (e mockHTTPError) Error() string   { return e.msg }
func (e mockHTTPError) StatusCode() int { return e.code }

func sevenDays(anchor string) types.Forecast {
	d, _ := time.Parse(types.DateLayout, anchor)
	fc := make(types.Forecast, 7)
	for i := range fc {
		fc[i] = types.ForecastPoint{Date: d.AddDate(0, 0, i+1), Value: float64(100 + i)}
	}
	return fc
}

func postJSON(h http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestInfoHandler(t *testing.T) {
	r := NewMux(&mockService{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Fatalf("content-type=%s", ct)
	}
	var body types.InfoResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(body.Endpoints) != 2 || body.ExpectedInput["xgboost"]["store_id"] == "" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestHealth(t *testing.T) {
	r := NewMux(&mockService{})
	for _, p := range []string{"/health", "/health/"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, p, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("%s status=%d", p, w.Code)
		}
		var body types.HealthResponse
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("json: %v", err)
		}
		if body.Message != "All ready to go!" {
			t.Fatalf("message=%q", body.Message)
		}
	}
}

func TestHealthzAndReadyz(t *testing.T) {
	r := NewMux(&mockService{ready: true})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("healthz status=%d", w.Code)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("readyz status=%d", w.Code)
	}
}

func TestReadyz_NotReady(t *testing.T) {
	r := NewMux(&mockService{ready: false})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "loading") {
		t.Fatalf("body=%q", w.Body.String())
	}
}

func TestPredictXGBoost_EchoesInput(t *testing.T) {
	v := 42.5
	svc := &mockService{sales: &v}
	r := NewMux(svc)
	for _, p := range []string{"/predict/xgboost/", "/predict/xgboost"} {
		w := postJSON(r, p, `{"date":"2024-01-15","store_id":"S1","item_id":"I1"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("%s status=%d body=%s", p, w.Code, w.Body.String())
		}
		var body types.PredictResponse
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("json: %v", err)
		}
		if body.Date != "2024-01-15" || body.StoreID != "S1" || body.ItemID != "I1" {
			t.Fatalf("echo mismatch: %+v", body)
		}
		if body.PredictedSales == nil || *body.PredictedSales != 42.5 {
			t.Fatalf("predicted_sales=%v", body.PredictedSales)
		}
	}
	if svc.lastReq.StoreID != "S1" {
		t.Fatalf("service saw %+v", svc.lastReq)
	}
}

func TestPredictXGBoost_NullPrediction(t *testing.T) {
	r := NewMux(&mockService{})
	w := postJSON(r, "/predict/xgboost/", `{"date":"2024-01-15","store_id":"S1","item_id":"I1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"predicted_sales":null`) {
		t.Fatalf("body=%s", w.Body.String())
	}
}

func TestPredictProphet_OrderedObject(t *testing.T) {
	r := NewMux(&mockService{forecast: sevenDays("2024-01-01")})
	w := postJSON(r, "/predict/prophet/", `{"date":"2024-01-01"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var fc types.Forecast
	if err := json.Unmarshal(w.Body.Bytes(), &fc); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(fc) != 7 {
		t.Fatalf("expected 7 entries, got %d", len(fc))
	}
	if got := fc[0].Date.Format(types.DateLayout); got != "2024-01-02" {
		t.Fatalf("first key=%s", got)
	}
	if got := fc[6].Date.Format(types.DateLayout); got != "2024-01-08" {
		t.Fatalf("last key=%s", got)
	}
	if !strings.HasPrefix(w.Body.String(), `{"2024-01-02":100,"2024-01-03":101`) {
		t.Fatalf("body=%s", w.Body.String())
	}
}

func TestPredict_BadJSON(t *testing.T) {
	r := NewMux(&mockService{})
	for _, p := range []string{"/predict/xgboost/", "/predict/prophet/"} {
		if w := postJSON(r, p, "not-json"); w.Code != http.StatusBadRequest {
			t.Fatalf("%s status=%d", p, w.Code)
		}
	}
}

func TestPredict_UnsupportedMediaType(t *testing.T) {
	r := NewMux(&mockService{})
	req := httptest.NewRequest(http.MethodPost, "/predict/prophet/", bytes.NewBufferString(`{"date":"2024-01-01"}`))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestContentTypeCaseInsensitive(t *testing.T) {
	r := NewMux(&mockService{forecast: sevenDays("2024-01-01")})
	req := httptest.NewRequest(http.MethodPost, "/predict/prophet/", bytes.NewBufferString(`{"date":"2024-01-01"}`))
	req.Header.Set("Content-Type", "Application/JSON; charset=utf-8")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with mixed-case content-type, got %d", w.Code)
	}
}

func TestPredict_BodyTooLarge(t *testing.T) {
	r := NewMux(&mockService{})
	big := `{"date":"` + strings.Repeat("a", (1<<20)+10) + `"}`
	if w := postJSON(r, "/predict/prophet/", big); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for too-large body, got %d", w.Code)
	}
}

func TestPredict_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", predictor.ErrInvalidInput("y contains previously unseen labels: 'S9'"), http.StatusBadRequest},
		{"unavailable", predictor.ErrModelUnavailable("xgboost"), http.StatusServiceUnavailable},
		{"http error", mockHTTPError{msg: "teapot", code: http.StatusTeapot}, http.StatusTeapot},
		{"generic", io.EOF, http.StatusInternalServerError},
	}
	for _, c := range cases {
		r := NewMux(&mockService{predictErr: c.err})
		for _, p := range []string{"/predict/xgboost/", "/predict/prophet/"} {
			w := postJSON(r, p, `{"date":"2024-01-15","store_id":"S1","item_id":"I1"}`)
			if w.Code != c.want {
				t.Fatalf("%s %s: status=%d want %d", c.name, p, w.Code, c.want)
			}
			var body types.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("json: %v", err)
			}
			if body.Code != c.want || body.Error != c.err.Error() {
				t.Fatalf("%s: unexpected body %+v", c.name, body)
			}
		}
	}
}

// blockService waits for its context; used to exercise the timeout path.
type blockService struct{ mockService }

func (b *blockService) Forecast(ctx context.Context, req types.ForecastRequest) (types.Forecast, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestPredictTimeoutReturns500(t *testing.T) {
	defer SetPredictTimeoutSeconds(0)
	SetPredictTimeoutSeconds(1)
	h := NewMux(&blockService{})
	if w := postJSON(h, "/predict/prophet/", `{"date":"2024-01-01"}`); w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 on timeout, got %d", w.Code)
	}
}

func TestPredictLogsWithZerolog(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	defer func() { zlog = nil }()

	h := NewMux(&mockService{forecast: sevenDays("2024-01-01")})
	if w := postJSON(h, "/predict/prophet/?log=debug", `{"date":"2024-01-01"}`); w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	out := buf.String()
	if !strings.Contains(out, `"message":"predict start"`) || !strings.Contains(out, `"request_id"`) || !strings.Contains(out, `"date":"2024-01-01"`) {
		t.Fatalf("unexpected log output: %s", out)
	}
}

func TestCORSAndSecurityHeaders(t *testing.T) {
	SetCORSOptions(true, []string{"*"}, []string{"GET", "POST", "OPTIONS"}, []string{"Content-Type"})
	defer SetCORSOptions(false, nil, nil, nil)

	h := NewMux(&mockService{ready: true})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:8501")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("expected X-Content-Type-Options=nosniff, got %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got == "" {
		t.Fatalf("expected CORS header Access-Control-Allow-Origin to be set, got empty")
	}
}
