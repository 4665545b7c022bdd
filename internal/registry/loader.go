package registry

import (
	"fmt"
	"path/filepath"

	"salesd/internal/common/fsutil"
	"salesd/pkg/types"
)

// Files holds explicit artifact paths. Empty entries are looked up in the models dir.
type Files struct {
	TreeModel     string
	ForecastModel string
	Encoders      string
}

// Default file names searched for in the models dir, in preference order.
var defaultNames = map[types.ArtifactKind][]string{
	types.ArtifactTreeModel:     {"xgboost_model.json"},
	types.ArtifactForecastModel: {"prophet_model.json"},
	types.ArtifactEncoders:      {"label_encoders.json", "label_encoders.yaml", "label_encoders.yml", "label_encoders.toml"},
}

// Resolve returns absolute paths for the three artifacts, in the order tree
// model, forecast model, encoders. A missing artifact is an error.
func Resolve(dir string, files Files) ([]types.Artifact, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	explicit := []struct {
		kind types.ArtifactKind
		path string
	}{
		{types.ArtifactTreeModel, files.TreeModel},
		{types.ArtifactForecastModel, files.ForecastModel},
		{types.ArtifactEncoders, files.Encoders},
	}
	out := make([]types.Artifact, 0, len(explicit))
	for _, e := range explicit {
		p, err := resolveOne(base, e.kind, e.path)
		if err != nil {
			return nil, err
		}
		out = append(out, types.Artifact{Kind: e.kind, Path: p})
	}
	return out, nil
}

func resolveOne(base string, kind types.ArtifactKind, explicit string) (string, error) {
	candidates := []string{explicit}
	if explicit == "" {
		candidates = candidates[:0]
		for _, name := range defaultNames[kind] {
			candidates = append(candidates, filepath.Join(base, name))
		}
	}
	for _, c := range candidates {
		p, err := fsutil.ExpandHome(c)
		if err != nil {
			return "", err
		}
		if !fsutil.PathExists(p) {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return "", fmt.Errorf("abs path: %w", err)
		}
		return abs, nil
	}
	if explicit != "" {
		return "", fmt.Errorf("%s: %s does not exist", kind, explicit)
	}
	return "", fmt.Errorf("%s: none of %v found in %s", kind, defaultNames[kind], base)
}

// Path returns the path of the artifact of the given kind, or "".
func Path(arts []types.Artifact, kind types.ArtifactKind) string {
	for _, a := range arts {
		if a.Kind == kind {
			return a.Path
		}
	}
	return ""
}
