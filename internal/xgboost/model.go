package xgboost

import (
	"encoding/json"
	"fmt"
)

// modelDoc mirrors the subset of the XGBoost JSON schema needed for inference.
type modelDoc struct {
	Learner struct {
		FeatureNames      []string `json:"feature_names"`
		LearnerModelParam struct {
			BaseScore  string `json:"base_score"`
			NumFeature string `json:"num_feature"`
		} `json:"learner_model_param"`
		GradientBooster struct {
			Name  string `json:"name"`
			Model struct {
				Trees []treeDoc `json:"trees"`
			} `json:"model"`
		} `json:"gradient_booster"`
		Objective struct {
			Name string `json:"name"`
		} `json:"objective"`
	} `json:"learner"`
}

type treeDoc struct {
	LeftChildren    []int32    `json:"left_children"`
	RightChildren   []int32    `json:"right_children"`
	SplitIndices    []int32    `json:"split_indices"`
	SplitConditions []float32  `json:"split_conditions"`
	DefaultLeft     []flexBool `json:"default_left"`

	// Categorical splits: split_type 1 marks a node whose category set is
	// categories[segment : segment+size].
	SplitType          []int32 `json:"split_type"`
	Categories         []int32 `json:"categories"`
	CategoriesNodes    []int32 `json:"categories_nodes"`
	CategoriesSegments []int64 `json:"categories_segments"`
	CategoriesSizes    []int64 `json:"categories_sizes"`
}

const (
	splitNumerical   = 0
	splitCategorical = 1
)

// flexBool decodes both JSON booleans and the 0/1 integers older releases wrote.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case "true", "1":
		*b = true
	case "false", "0":
		*b = false
	default:
		var v bool
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("default_left: %w", err)
		}
		*b = flexBool(v)
	}
	return nil
}

func (td treeDoc) build(numFeature int) (tree, error) {
	n := len(td.LeftChildren)
	if n == 0 {
		return tree{}, fmt.Errorf("empty tree")
	}
	if len(td.RightChildren) != n || len(td.SplitIndices) != n || len(td.SplitConditions) != n {
		return tree{}, fmt.Errorf("node arrays disagree in length")
	}
	dl := make([]bool, n)
	if len(td.DefaultLeft) != 0 && len(td.DefaultLeft) != n {
		return tree{}, fmt.Errorf("default_left has %d entries, want %d", len(td.DefaultLeft), n)
	}
	for i := range td.DefaultLeft {
		dl[i] = bool(td.DefaultLeft[i])
	}
	for i := 0; i < n; i++ {
		l, r := td.LeftChildren[i], td.RightChildren[i]
		if l == -1 {
			continue
		}
		// children always follow their parent, which also rules out cycles
		if l <= int32(i) || r <= int32(i) || int(l) >= n || int(r) >= n {
			return tree{}, fmt.Errorf("node %d has invalid children (%d, %d)", i, l, r)
		}
		f := td.SplitIndices[i]
		if f < 0 || (numFeature > 0 && int(f) >= numFeature) {
			return tree{}, fmt.Errorf("node %d splits on feature %d out of range", i, f)
		}
	}
	cats, err := td.categorySets(n)
	if err != nil {
		return tree{}, err
	}
	return tree{
		left:        td.LeftChildren,
		right:       td.RightChildren,
		feature:     td.SplitIndices,
		cond:        td.SplitConditions,
		defaultLeft: dl,
		cats:        cats,
	}, nil
}

// categorySets returns the category set of every categorical split node, or
// nil when the tree only has numerical splits.
func (td treeDoc) categorySets(n int) (map[int32]map[int32]struct{}, error) {
	if len(td.SplitType) == 0 {
		return nil, nil
	}
	if len(td.SplitType) != n {
		return nil, fmt.Errorf("split_type has %d entries, want %d", len(td.SplitType), n)
	}
	k := len(td.CategoriesNodes)
	if len(td.CategoriesSegments) != k || len(td.CategoriesSizes) != k {
		return nil, fmt.Errorf("category arrays disagree in length")
	}
	var cats map[int32]map[int32]struct{}
	for i, node := range td.CategoriesNodes {
		if node < 0 || int(node) >= n || td.SplitType[node] != splitCategorical {
			return nil, fmt.Errorf("category set for node %d which is not a categorical split", node)
		}
		start, size := td.CategoriesSegments[i], td.CategoriesSizes[i]
		if start < 0 || size < 0 || start+size > int64(len(td.Categories)) {
			return nil, fmt.Errorf("node %d category segment out of range", node)
		}
		set := make(map[int32]struct{}, size)
		for _, c := range td.Categories[start : start+size] {
			set[c] = struct{}{}
		}
		if cats == nil {
			cats = make(map[int32]map[int32]struct{})
		}
		cats[node] = set
	}
	for i, st := range td.SplitType {
		switch st {
		case splitNumerical:
		case splitCategorical:
			if td.LeftChildren[i] == -1 {
				continue
			}
			if _, ok := cats[int32(i)]; !ok {
				return nil, fmt.Errorf("categorical node %d has no category set", i)
			}
		default:
			return nil, fmt.Errorf("node %d has unknown split_type %d", i, st)
		}
	}
	return cats, nil
}
