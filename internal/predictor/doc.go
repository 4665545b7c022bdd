// Package predictor owns the loaded model artifacts and turns API requests
// into model inputs and back. It is structured into small files by concern:
//
//   - predictor.go: Predictor type, constructors and the two prediction entry points.
//   - features.go: date parsing and feature vector assembly.
//   - errors.go: error types and helpers (IsInvalidInput, IsModelUnavailable).
//   - metrics.go: per-model Prometheus counters and latency histograms.
//
// A Predictor is built once at startup and never mutated, so it is safe to
// share across request goroutines without locking.
package predictor
