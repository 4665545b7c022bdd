package predictor

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"salesd/internal/encoding"
	"salesd/internal/prophet"
	"salesd/internal/registry"
	"salesd/internal/xgboost"
	"salesd/pkg/types"
)

// ForecastHorizon is the number of days returned by Forecast.
const ForecastHorizon = 7

// TreeModel evaluates feature rows. *xgboost.Booster satisfies it.
type TreeModel interface {
	Predict(rows [][]float64) ([]float64, error)
}

// ForecastModel evaluates timestamps. *prophet.Model satisfies it.
type ForecastModel interface {
	Predict(ds []time.Time) ([]prophet.Point, error)
}

// Encoders maps categorical labels to codes. *encoding.Set satisfies it.
type Encoders interface {
	Transform(field, value string) (int, error)
}

// Config carries the already-loaded artifacts. Nil entries leave the
// corresponding endpoint unavailable.
type Config struct {
	Tree      TreeModel
	Forecast  ForecastModel
	Encoders  Encoders
	Artifacts []types.Artifact
}

// Predictor answers prediction requests over read-only model artifacts.
type Predictor struct {
	tree      TreeModel
	forecast  ForecastModel
	encoders  Encoders
	artifacts []types.Artifact
}

// New constructs a Predictor from loaded artifacts.
func New(cfg Config) *Predictor {
	return &Predictor{
		tree:      cfg.Tree,
		forecast:  cfg.Forecast,
		encoders:  cfg.Encoders,
		artifacts: append([]types.Artifact(nil), cfg.Artifacts...),
	}
}

// Load reads every artifact from disk and validates that they fit together.
func Load(arts []types.Artifact) (*Predictor, error) {
	booster, err := xgboost.Load(registry.Path(arts, types.ArtifactTreeModel))
	if err != nil {
		return nil, err
	}
	if n := booster.NumFeature(); n != 0 && n != len(FeatureNames) {
		return nil, fmt.Errorf("tree model expects %d features, want %d (%s)", n, len(FeatureNames), strings.Join(FeatureNames, ", "))
	}
	if names := booster.FeatureNames(); len(names) > 0 && !slices.Equal(names, FeatureNames) {
		return nil, fmt.Errorf("tree model features [%s], want [%s]", strings.Join(names, ", "), strings.Join(FeatureNames, ", "))
	}
	fm, err := prophet.Load(registry.Path(arts, types.ArtifactForecastModel))
	if err != nil {
		return nil, err
	}
	enc, err := encoding.Load(registry.Path(arts, types.ArtifactEncoders))
	if err != nil {
		return nil, err
	}
	if err := enc.Require(FieldStoreID, FieldItemID); err != nil {
		return nil, fmt.Errorf("load encoders: %w", err)
	}
	return New(Config{Tree: booster, Forecast: fm, Encoders: enc, Artifacts: arts}), nil
}

// Ready reports whether every model is loaded.
func (p *Predictor) Ready() bool {
	return p.tree != nil && p.forecast != nil && p.encoders != nil
}

// Artifacts returns the artifact files this predictor was loaded from.
func (p *Predictor) Artifacts() []types.Artifact {
	return append([]types.Artifact(nil), p.artifacts...)
}

// PredictSales runs the tree model for one store/item/date.
func (p *Predictor) PredictSales(ctx context.Context, req types.PredictRequest) (resp types.PredictResponse, err error) {
	start := time.Now()
	defer func() { observe(modelTree, start, err) }()

	if p.tree == nil || p.encoders == nil {
		return resp, ErrModelUnavailable(modelTree)
	}
	if err := requireFields(map[string]string{"date": req.Date, FieldStoreID: req.StoreID, FieldItemID: req.ItemID}); err != nil {
		return resp, err
	}
	date, err := ParseDate(req.Date)
	if err != nil {
		return resp, err
	}
	store, err := p.encode(FieldStoreID, req.StoreID)
	if err != nil {
		return resp, err
	}
	item, err := p.encode(FieldItemID, req.ItemID)
	if err != nil {
		return resp, err
	}
	if err := ctx.Err(); err != nil {
		return resp, err
	}
	out, err := p.tree.Predict([][]float64{Features(date, store, item)})
	if err != nil {
		return resp, fmt.Errorf("tree model: %w", err)
	}
	resp = types.PredictResponse{Date: req.Date, StoreID: req.StoreID, ItemID: req.ItemID}
	if len(out) > 0 {
		v := out[0]
		resp.PredictedSales = &v
	}
	return resp, nil
}

// Forecast runs the forecasting model for the ForecastHorizon days after the anchor date.
func (p *Predictor) Forecast(ctx context.Context, req types.ForecastRequest) (fc types.Forecast, err error) {
	start := time.Now()
	defer func() { observe(modelForecast, start, err) }()

	if p.forecast == nil {
		return nil, ErrModelUnavailable(modelForecast)
	}
	if strings.TrimSpace(req.Date) == "" {
		return nil, ErrInvalidInput("date is required")
	}
	anchor, err := ParseTimestamp(req.Date)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pts, err := p.forecast.Predict(prophet.FutureDates(anchor, ForecastHorizon))
	if err != nil {
		return nil, fmt.Errorf("forecast model: %w", err)
	}
	fc = make(types.Forecast, len(pts))
	for i, pt := range pts {
		fc[i] = types.ForecastPoint{Date: pt.DS, Value: pt.Yhat}
	}
	return fc, nil
}

func (p *Predictor) encode(field, value string) (int, error) {
	code, err := p.encoders.Transform(field, value)
	if err != nil {
		if encoding.IsUnseenLabel(err) {
			return 0, ErrInvalidInput(err.Error())
		}
		return 0, fmt.Errorf("encode %s: %w", field, err)
	}
	return code, nil
}

// requireFields fails on the first empty field, checked in feature order.
func requireFields(fields map[string]string) error {
	for _, name := range []string{"date", FieldStoreID, FieldItemID} {
		if v, ok := fields[name]; ok && strings.TrimSpace(v) == "" {
			return ErrInvalidInput(name + " is required")
		}
	}
	return nil
}
