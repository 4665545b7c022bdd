package types

import "time"

// ArtifactKind identifies one of the model artifacts loaded at startup.
type ArtifactKind string

const (
	ArtifactTreeModel     ArtifactKind = "tree_model"
	ArtifactForecastModel ArtifactKind = "forecast_model"
	ArtifactEncoders      ArtifactKind = "encoders"
)

// Artifact describes a resolved model artifact on disk.
type Artifact struct {
	// Which artifact this is.
	// example: tree_model
	Kind ArtifactKind `json:"kind" example:"tree_model"`
	// Absolute path to the artifact file.
	// example: /srv/models/xgboost_model.json
	Path string `json:"path" example:"/srv/models/xgboost_model.json"`
}

// ForecastPoint is a single forecast value for one calendar day.
type ForecastPoint struct {
	Date  time.Time
	Value float64
}
