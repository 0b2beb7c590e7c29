// Package strategy defines the closed set of extraction strategies and the
// capability-based selector that picks them per document.
package strategy

import (
	"context"
	"errors"
	"strings"

	"freightdesk/internal/ai"
	"freightdesk/internal/domain"
	"freightdesk/internal/pattern"
)

// Kind identifies a strategy variant.
type Kind string

const (
	KindPattern  Kind = "pattern"
	KindAIText   Kind = "ai_text"
	KindAIVision Kind = "ai_vision"
)

// ErrNoMatch is returned by the pattern strategy when the text yields nothing.
var ErrNoMatch = errors.New("pattern extractor found no fields")

// Strategy is a self-contained extraction method producing merge candidates.
type Strategy interface {
	Kind() Kind
	Name() string
	Supports(doc *domain.RawDocument) bool
	Extract(ctx context.Context, doc *domain.RawDocument) ([]domain.ExtractionField, error)
}

// AIExtractor is the part of ai.Client the AI strategies depend on.
type AIExtractor interface {
	Extract(ctx context.Context, req ai.Request) (*ai.Result, error)
	HasTier(tier ai.Tier) bool
}

// Pattern runs the regex extractor over the document text.
type Pattern struct {
	extractor *pattern.Extractor
}

// NewPattern creates the pattern strategy.
func NewPattern(extractor *pattern.Extractor) *Pattern {
	return &Pattern{extractor: extractor}
}

func (s *Pattern) Kind() Kind   { return KindPattern }
func (s *Pattern) Name() string { return pattern.StrategyName }

func (s *Pattern) Supports(doc *domain.RawDocument) bool {
	return doc.HasText()
}

func (s *Pattern) Extract(_ context.Context, doc *domain.RawDocument) ([]domain.ExtractionField, error) {
	fields := s.extractor.Extract(doc.Text)
	if len(fields) == 0 {
		return nil, ErrNoMatch
	}
	return fields, nil
}

// AIText sends the document text to a text tier.
type AIText struct {
	client AIExtractor
	tier   ai.Tier
	specs  []domain.FieldSpec
}

// NewAIText creates the AI text strategy on tier.
func NewAIText(client AIExtractor, tier ai.Tier) *AIText {
	return &AIText{client: client, tier: tier, specs: domain.FieldSpecs()}
}

func (s *AIText) Kind() Kind   { return KindAIText }
func (s *AIText) Name() string { return "ai_text:" + string(s.tier) }

func (s *AIText) Supports(doc *domain.RawDocument) bool {
	return doc.HasText() && s.client.HasTier(s.tier)
}

func (s *AIText) Extract(ctx context.Context, doc *domain.RawDocument) ([]domain.ExtractionField, error) {
	res, err := s.client.Extract(ctx, ai.Request{
		Tier:     s.tier,
		Strategy: s.Name(),
		Text:     doc.Text,
		Specs:    s.specs,
	})
	if err != nil {
		return nil, err
	}
	return res.Fields, nil
}

// AIVision sends the original bytes (and any text layer) to the vision tier.
type AIVision struct {
	client AIExtractor
	specs  []domain.FieldSpec
}

// NewAIVision creates the AI vision strategy.
func NewAIVision(client AIExtractor) *AIVision {
	return &AIVision{client: client, specs: domain.FieldSpecs()}
}

func (s *AIVision) Kind() Kind   { return KindAIVision }
func (s *AIVision) Name() string { return "ai_vision" }

func (s *AIVision) Supports(doc *domain.RawDocument) bool {
	return len(doc.Content) > 0 && (isImage(doc) || isPDF(doc)) && s.client.HasTier(ai.TierVision)
}

func (s *AIVision) Extract(ctx context.Context, doc *domain.RawDocument) ([]domain.ExtractionField, error) {
	res, err := s.client.Extract(ctx, ai.Request{
		Tier:        ai.TierVision,
		Strategy:    s.Name(),
		Text:        doc.Text,
		Content:     doc.Content,
		ContentType: doc.MIMEType,
		Specs:       s.specs,
	})
	if err != nil {
		return nil, err
	}
	return res.Fields, nil
}

func isImage(doc *domain.RawDocument) bool {
	return strings.HasPrefix(doc.MIMEType, "image/") || doc.Channel == domain.ChannelImage
}

func isPDF(doc *domain.RawDocument) bool {
	return doc.MIMEType == "application/pdf"
}

func isEmail(doc *domain.RawDocument) bool {
	return doc.MIMEType == "message/rfc822" || doc.Channel == domain.ChannelEmail
}
