// Package encoding holds the fitted label encoders that map categorical
// strings to the integer codes the tree model was trained on.
package encoding

import (
	"fmt"
	"sort"

	"salesd/internal/common/fsutil"
)

// LabelEncoder maps a known label to its position in the sorted class list.
type LabelEncoder struct {
	classes []string
}

// NewLabelEncoder builds an encoder from the trained vocabulary. Duplicates
// are dropped and classes are sorted, so codes match a fit on the same data.
func NewLabelEncoder(classes []string) *LabelEncoder {
	seen := make(map[string]struct{}, len(classes))
	out := make([]string, 0, len(classes))
	for _, c := range classes {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Strings(out)
	return &LabelEncoder{classes: out}
}

// Classes returns a copy of the trained vocabulary in code order.
func (e *LabelEncoder) Classes() []string {
	return append([]string(nil), e.classes...)
}

// Transform returns the integer code for label.
func (e *LabelEncoder) Transform(label string) (int, error) {
	i := sort.SearchStrings(e.classes, label)
	if i < len(e.classes) && e.classes[i] == label {
		return i, nil
	}
	return 0, unseenLabelError{label: label}
}

type unseenLabelError struct{ label string }

func (e unseenLabelError) Error() string {
	return fmt.Sprintf("y contains previously unseen labels: '%s'", e.label)
}

// IsUnseenLabel reports whether err came from transforming an unknown label.
func IsUnseenLabel(err error) bool {
	_, ok := err.(unseenLabelError)
	return ok
}

// Set is the collection of encoders keyed by field name. It is never
// modified after construction.
type Set struct {
	encoders map[string]*LabelEncoder
}

// NewSet builds a Set from field name → vocabulary.
func NewSet(vocab map[string][]string) *Set {
	s := &Set{encoders: make(map[string]*LabelEncoder, len(vocab))}
	for field, classes := range vocab {
		s.encoders[field] = NewLabelEncoder(classes)
	}
	return s
}

// Load reads an encoder set from a JSON, YAML or TOML file shaped as
// {"store_id": ["S1", ...], "item_id": [...]}.
func Load(path string) (*Set, error) {
	var vocab map[string][]string
	if err := fsutil.DecodeFile(path, &vocab); err != nil {
		return nil, fmt.Errorf("load encoders: %w", err)
	}
	if len(vocab) == 0 {
		return nil, fmt.Errorf("load encoders: %s holds no encoders", path)
	}
	return NewSet(vocab), nil
}

// Fields lists the encoded field names in sorted order.
func (s *Set) Fields() []string {
	out := make([]string, 0, len(s.encoders))
	for f := range s.encoders {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Require fails unless every named field has an encoder.
func (s *Set) Require(fields ...string) error {
	for _, f := range fields {
		if _, ok := s.encoders[f]; !ok {
			return fmt.Errorf("no encoder for field %q", f)
		}
	}
	return nil
}

// Transform encodes value with the encoder registered for field.
func (s *Set) Transform(field, value string) (int, error) {
	enc, ok := s.encoders[field]
	if !ok {
		return 0, fmt.Errorf("no encoder for field %q", field)
	}
	return enc.Transform(value)
}
