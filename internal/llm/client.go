package llm

import (
	"context"
	"errors"
	"strings"
)

// Client is a text-and-vision language model client. GenerateVision may
// be called with no image URLs, in which case it is equivalent to
// Generate.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
	GenerateVision(ctx context.Context, prompt string, imageURLs []string) (string, error)
}

// ErrQuota marks a provider rate-limit or quota failure. Callers treat
// it as a planned degradation, not an outage.
var ErrQuota = errors.New("llm: quota or rate limit exceeded")

// IsQuotaErr reports whether err looks like a provider quota/rate-limit
// rejection. Providers surface these inconsistently, so this also
// matches on the usual message fragments.
func IsQuotaErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrQuota) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, frag := range []string{"429", "quota", "rate limit", "rate_limit", "too many requests"} {
		if strings.Contains(msg, frag) {
			return true
		}
	}
	return false
}
