package strategy

import (
	"freightdesk/internal/domain"
)

// group is a format detector and the strategy kinds it combines.
type group struct {
	name   string
	detect func(doc *domain.RawDocument) bool
	kinds  []Kind
}

// groups are queried in order: format-specific detectors before the generic
// text detector.
var groups = []group{
	{name: "image", detect: isImage, kinds: []Kind{KindAIVision, KindPattern}},
	{name: "scanned", detect: func(d *domain.RawDocument) bool { return isPDF(d) && !d.HasText() }, kinds: []Kind{KindAIVision}},
	{name: "email", detect: isEmail, kinds: []Kind{KindPattern, KindAIText}},
	{name: "text", detect: func(d *domain.RawDocument) bool { return d.HasText() }, kinds: []Kind{KindPattern, KindAIText}},
}

// Selector picks the strategies to run for a document.
type Selector struct {
	byKind map[Kind]Strategy
}

// NewSelector creates a Selector over the available strategies. Later
// strategies of the same kind replace earlier ones.
func NewSelector(strategies ...Strategy) *Selector {
	byKind := make(map[Kind]Strategy, len(strategies))
	for _, s := range strategies {
		byKind[s.Kind()] = s
	}
	return &Selector{byKind: byKind}
}

// Select returns the supporting members of the first group that detects doc
// and has at least one supporting strategy. It returns the group name for
// logging, or "" when nothing applies.
func (s *Selector) Select(doc *domain.RawDocument) ([]Strategy, string) {
	for _, g := range groups {
		if !g.detect(doc) {
			continue
		}
		var picked []Strategy
		for _, k := range g.kinds {
			if st, ok := s.byKind[k]; ok && st.Supports(doc) {
				picked = append(picked, st)
			}
		}
		if len(picked) > 0 {
			return picked, g.name
		}
	}
	return nil, ""
}
