package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"eventflow/internal/domain"
)

const (
	descriptionWordLimit = 1999
	descriptionCharLimit = 2000
)

var (
	bannedSymbols  = regexp.MustCompile(`[@#$*]`)
	unwantedChars  = regexp.MustCompile(`[^\w\s.,'"-]`)
	repeatedSpaces = regexp.MustCompile(`\s+`)
)

type descriptionService struct {
	enhancer domain.DescriptionEnhancer
}

// NewDescriptionService wraps a DescriptionEnhancer with input validation and
// output sanitization. A nil enhancer means the feature is not configured.
func NewDescriptionService(enhancer domain.DescriptionEnhancer) domain.DescriptionService {
	return &descriptionService{
		enhancer: enhancer,
	}
}

func (s *descriptionService) EnhanceDescription(ctx context.Context, title, notes string) (string, error) {
	if s.enhancer == nil {
		return "", domain.ErrAINotConfigured
	}
	if strings.TrimSpace(title) == "" || strings.TrimSpace(notes) == "" {
		return "", fmt.Errorf("%w: title and notes are required", domain.ErrInvalidInput)
	}

	raw, err := s.enhancer.Enhance(ctx, title, notes)
	if err != nil {
		return "", err
	}

	description := limitChars(limitWords(sanitizeDescription(raw), descriptionWordLimit), descriptionCharLimit)
	if description == "" {
		return "", fmt.Errorf("%w: empty response", domain.ErrAIUpstream)
	}
	return description, nil
}

// sanitizeDescription strips promotional symbols and collapses whitespace.
func sanitizeDescription(text string) string {
	text = bannedSymbols.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "_", " ")
	text = unwantedChars.ReplaceAllString(text, " ")
	return strings.TrimSpace(repeatedSpaces.ReplaceAllString(text, " "))
}

func limitWords(text string, maxWords int) string {
	words := strings.Fields(text)
	if len(words) <= maxWords {
		return text
	}
	return strings.TrimSpace(strings.Join(words[:maxWords], " "))
}

func limitChars(text string, maxChars int) string {
	if len(text) <= maxChars {
		return text
	}
	return strings.TrimSpace(text[:maxChars])
}
