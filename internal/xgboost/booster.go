// Package xgboost evaluates gradient-boosted tree ensembles saved in the
// XGBoost JSON model format (Booster.save_model("model.json")).
//
// Only regression-style single-output gbtree models are supported. Split
// tests and leaf accumulation are done in float32, as XGBoost does, so
// predictions match the trained library bit for bit on typical inputs.
package xgboost

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// Booster is a loaded, immutable tree ensemble.
type Booster struct {
	trees        []tree
	numFeature   int
	featureNames []string
	objective    string
	baseMargin   float32
	link         func(float32) float64
}

type tree struct {
	left, right []int32
	feature     []int32
	cond        []float32
	defaultLeft []bool
	// category sets of categorical split nodes; nil for numerical-only trees
	cats map[int32]map[int32]struct{}
}

// Load opens and decodes a JSON model file.
func Load(path string) (*Booster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tree model: %w", err)
	}
	defer f.Close()
	b, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("tree model %s: %w", path, err)
	}
	return b, nil
}

// Decode reads a JSON model from r.
func Decode(r io.Reader) (*Booster, error) {
	var doc modelDoc
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	l := doc.Learner
	if name := l.GradientBooster.Name; name != "" && name != "gbtree" {
		return nil, fmt.Errorf("unsupported booster %q", name)
	}
	objective := l.Objective.Name
	if objective == "" {
		objective = "reg:squarederror"
	}
	baseScore, err := parseBaseScore(l.LearnerModelParam.BaseScore)
	if err != nil {
		return nil, err
	}
	b := &Booster{objective: objective, featureNames: l.FeatureNames}
	if err := b.setObjective(baseScore); err != nil {
		return nil, err
	}
	if s := l.LearnerModelParam.NumFeature; s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("num_feature %q: %w", s, err)
		}
		b.numFeature = n
	}
	for i, tj := range l.GradientBooster.Model.Trees {
		t, err := tj.build(b.numFeature)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		b.trees = append(b.trees, t)
	}
	if len(b.trees) == 0 {
		return nil, fmt.Errorf("model has no trees")
	}
	return b, nil
}

// NumTrees returns the number of trees in the ensemble.
func (b *Booster) NumTrees() int { return len(b.trees) }

// NumFeature returns the trained feature count, or 0 when the model does not record it.
func (b *Booster) NumFeature() int { return b.numFeature }

// FeatureNames returns the trained feature names, if the model recorded them.
func (b *Booster) FeatureNames() []string { return append([]string(nil), b.featureNames...) }

// Objective returns the training objective name.
func (b *Booster) Objective() string { return b.objective }

// Predict evaluates every row and returns one value per row. NaN marks a
// missing feature.
func (b *Booster) Predict(rows [][]float64) ([]float64, error) {
	out := make([]float64, len(rows))
	for i, row := range rows {
		need := b.numFeature
		if need == 0 {
			need = b.maxFeature() + 1
		}
		if len(row) < need {
			return nil, fmt.Errorf("row %d: got %d features, model expects %d", i, len(row), need)
		}
		fv := make([]float32, len(row))
		for j, v := range row {
			fv[j] = float32(v)
		}
		margin := b.baseMargin
		for _, t := range b.trees {
			margin += t.leafValue(fv)
		}
		out[i] = b.link(margin)
	}
	return out, nil
}

func (b *Booster) maxFeature() int {
	m := -1
	for _, t := range b.trees {
		for n, f := range t.feature {
			if t.left[n] != -1 && int(f) > m {
				m = int(f)
			}
		}
	}
	return m
}

func (t tree) leafValue(fv []float32) float32 {
	n := int32(0)
	for t.left[n] != -1 {
		x := fv[t.feature[n]]
		switch {
		case math.IsNaN(float64(x)):
			if t.defaultLeft[n] {
				n = t.left[n]
			} else {
				n = t.right[n]
			}
		case t.cats != nil && t.cats[n] != nil:
			if inCategorySet(t.cats[n], x) {
				n = t.right[n]
			} else {
				n = t.left[n]
			}
		case x < t.cond[n]:
			n = t.left[n]
		default:
			n = t.right[n]
		}
	}
	return t.cond[n]
}

// inCategorySet reports whether x is a valid category code contained in set.
// Negative or fractional codes never match and route left.
func inCategorySet(set map[int32]struct{}, x float32) bool {
	if x < 0 || x != float32(math.Trunc(float64(x))) || x > math.MaxInt32 {
		return false
	}
	_, ok := set[int32(x)]
	return ok
}

func (b *Booster) setObjective(baseScore float64) error {
	switch b.objective {
	case "reg:squarederror", "reg:linear", "reg:absoluteerror", "reg:pseudohubererror",
		"reg:quantileerror", "reg:squaredlogerror":
		b.baseMargin = float32(baseScore)
		b.link = func(m float32) float64 { return float64(m) }
	case "count:poisson", "reg:gamma", "reg:tweedie":
		if baseScore <= 0 {
			return fmt.Errorf("objective %s needs a positive base_score, got %v", b.objective, baseScore)
		}
		b.baseMargin = float32(math.Log(baseScore))
		b.link = func(m float32) float64 { return math.Exp(float64(m)) }
	case "reg:logistic", "binary:logistic":
		if baseScore <= 0 || baseScore >= 1 {
			return fmt.Errorf("objective %s needs base_score in (0,1), got %v", b.objective, baseScore)
		}
		b.baseMargin = float32(math.Log(baseScore / (1 - baseScore)))
		b.link = func(m float32) float64 { return 1 / (1 + math.Exp(-float64(m))) }
	default:
		return fmt.Errorf("unsupported objective %q", b.objective)
	}
	return nil
}

// parseBaseScore accepts "5E-1" (1.x) and "[5E-1]" (2.x).
func parseBaseScore(s string) (float64, error) {
	s = strings.TrimSpace(strings.Trim(strings.TrimSpace(s), "[]"))
	if s == "" {
		return 0.5, nil
	}
	if i := strings.IndexByte(s, ','); i >= 0 {
		return 0, fmt.Errorf("multi-target base_score %q is not supported", s)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("base_score %q: %w", s, err)
	}
	return v, nil
}
