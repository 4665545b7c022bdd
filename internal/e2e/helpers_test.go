package e2e

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"salesd/internal/httpapi"
	"salesd/internal/predictor"
	"salesd/internal/registry"
)

// modelsDir holds small hand-built artifacts with known outputs.
var modelsDir = filepath.Join("..", "predictor", "testdata", "models")

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	arts, err := registry.Resolve(modelsDir, registry.Files{})
	if err != nil {
		t.Fatalf("resolve artifacts: %v", err)
	}
	pred, err := predictor.Load(arts)
	if err != nil {
		t.Fatalf("load models: %v", err)
	}
	srv := httptest.NewServer(httpapi.NewMux(pred))
	t.Cleanup(srv.Close)
	return srv
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	return do(t, req)
}

func httpPostJSON(t *testing.T, url, payload string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewBufferString(payload))
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return do(t, req)
}

func do(t *testing.T, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	b, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, b
}
