package domain

import (
	"context"
	"errors"
)

// Sentinel errors for the AI description feature.
var (
	// ErrAINotConfigured is returned when no API key is configured.
	ErrAINotConfigured = errors.New("ai feature not configured")

	// ErrAIUpstream is returned when the completion provider fails or
	// returns an unusable response.
	ErrAIUpstream = errors.New("ai request failed")
)

// DescriptionEnhancer produces a polished event description from a title and
// the organizer's rough notes.
type DescriptionEnhancer interface {
	Enhance(ctx context.Context, title, notes string) (string, error)
}

// DescriptionService wraps an enhancer with input validation and output
// sanitization (symbol stripping, word and character limits).
type DescriptionService interface {
	EnhanceDescription(ctx context.Context, title, notes string) (string, error)
}
