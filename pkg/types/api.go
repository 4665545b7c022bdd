package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// DateLayout is the calendar date format used on the wire.
const DateLayout = "2006-01-02"

// PredictRequest is the body of POST /predict/xgboost/.
type PredictRequest struct {
	// Calendar date in YYYY-MM-DD.
	// example: 2024-01-15
	Date string `json:"date" example:"2024-01-15"`
	// Store identifier known to the encoders.
	// example: S1
	StoreID string `json:"store_id" example:"S1"`
	// Item identifier known to the encoders.
	// example: I1
	ItemID string `json:"item_id" example:"I1"`
}

// PredictResponse echoes the request and carries the tree model's prediction.
type PredictResponse struct {
	// example: 2024-01-15
	Date string `json:"date" example:"2024-01-15"`
	// example: S1
	StoreID string `json:"store_id" example:"S1"`
	// example: I1
	ItemID string `json:"item_id" example:"I1"`
	// Predicted sales; null when the model returned no value.
	// example: 42.5
	PredictedSales *float64 `json:"predicted_sales" example:"42.5"`
}

// ForecastRequest is the body of POST /predict/prophet/.
type ForecastRequest struct {
	// Anchor date; the forecast covers the 7 days after it.
	// example: 2024-01-01
	Date string `json:"date" example:"2024-01-01"`
}

// Forecast is an ordered list of daily values. It serializes as a JSON object
// keyed by YYYY-MM-DD with keys in slice order.
type Forecast []ForecastPoint

// MarshalJSON writes the points as an object, preserving order.
func (f Forecast) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(p.Date.Format(DateLayout)))
		buf.WriteByte(':')
		v, err := json.Marshal(p.Value)
		if err != nil {
			return nil, fmt.Errorf("forecast %s: %w", p.Date.Format(DateLayout), err)
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object of date→value pairs in document order.
func (f *Forecast) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("forecast: expected object, got %v", tok)
	}
	var out Forecast
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		day, err := time.Parse(DateLayout, key)
		if err != nil {
			return fmt.Errorf("forecast: bad date key %q: %w", key, err)
		}
		var v float64
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("forecast %s: %w", key, err)
		}
		out = append(out, ForecastPoint{Date: day, Value: v})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*f = out
	return nil
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	// example: All ready to go!
	Message string `json:"message" example:"All ready to go!"`
}

// EndpointInfo describes one prediction endpoint in the capability document.
type EndpointInfo struct {
	Path        string `json:"path"`
	Method      string `json:"method"`
	Description string `json:"description"`
}

// InfoResponse is the capability document served at GET /.
type InfoResponse struct {
	ProjectDescription string                       `json:"project_description"`
	Endpoints          []EndpointInfo               `json:"endpoints"`
	ExpectedInput      map[string]map[string]string `json:"expected_input"`
	OutputFormat       map[string]string            `json:"output_format"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}
