package grouping

import (
	"fmt"
	"math"
	"strings"
)

type Policy string

const (
	PolicyStrict     Policy = "strict"
	PolicySimilarity Policy = "similarity"
)

const (
	DefaultWindowSeconds       = 5.0
	DefaultSimilarityThreshold = 0.8
	DefaultPerPage             = 50
	DefaultMaxSimilarityBatch  = 20000
)

// ParsePolicy accepts the policy name case-insensitively. An empty string
// selects PolicyStrict.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyStrict:
		return PolicyStrict, nil
	case PolicySimilarity:
		return PolicySimilarity, nil
	default:
		return "", fmt.Errorf("%w: unknown policy %q", ErrInvalidConfiguration, s)
	}
}

type Options struct {
	WindowSeconds       float64
	SimilarityThreshold float64
	Policy              Policy
	Page                int
	PerPage             int
	// MaxSimilarityBatch caps the number of reads the similarity policy
	// accepts. Zero or less means DefaultMaxSimilarityBatch.
	MaxSimilarityBatch int
}

// DefaultOptions returns the options used when a caller sets nothing.
func DefaultOptions() Options {
	return Options{
		WindowSeconds:       DefaultWindowSeconds,
		SimilarityThreshold: DefaultSimilarityThreshold,
		Policy:              PolicyStrict,
		Page:                1,
		PerPage:             DefaultPerPage,
		MaxSimilarityBatch:  DefaultMaxSimilarityBatch,
	}
}

// Validate reports ErrInvalidConfiguration for options that cannot produce a
// result.
func (o Options) Validate() error {
	if math.IsNaN(o.WindowSeconds) || math.IsInf(o.WindowSeconds, 0) || o.WindowSeconds < 0 {
		return fmt.Errorf("%w: window_seconds must be a non-negative number, got %v", ErrInvalidConfiguration, o.WindowSeconds)
	}
	if math.IsNaN(o.SimilarityThreshold) || o.SimilarityThreshold < 0 || o.SimilarityThreshold > 1 {
		return fmt.Errorf("%w: similarity_threshold must be between 0 and 1, got %v", ErrInvalidConfiguration, o.SimilarityThreshold)
	}
	if o.Policy != PolicyStrict && o.Policy != PolicySimilarity {
		return fmt.Errorf("%w: unknown policy %q", ErrInvalidConfiguration, o.Policy)
	}
	if o.PerPage <= 0 {
		return fmt.Errorf("%w: per_page must be positive, got %d", ErrInvalidConfiguration, o.PerPage)
	}
	if o.Page < 1 {
		return fmt.Errorf("%w: page must be at least 1, got %d", ErrInvalidConfiguration, o.Page)
	}
	return nil
}

func (o Options) batchCeiling() int {
	if o.MaxSimilarityBatch <= 0 {
		return DefaultMaxSimilarityBatch
	}
	return o.MaxSimilarityBatch
}
