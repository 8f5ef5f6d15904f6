package providers

import (
	"fmt"
	"strings"

	apperrors "github.com/boardsnap/boardsnap/internal/errors"
)

// TypeInsufficientQuota is the error type OpenAI-compatible APIs report for billing limits
const TypeInsufficientQuota = "insufficient_quota"

var quotaWords = []string{"quota", "exceeded"}

// IsQuotaMessage reports whether a provider message talks about quota or limits
func IsQuotaMessage(message string) bool {
	lower := strings.ToLower(message)
	for _, word := range quotaWords {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

// ClassifyMessage builds the error for a failed provider call from the provider's error
// message and type. An empty message falls back to a generic one naming the provider.
func ClassifyMessage(providerName, message, errType string, cause error) *apperrors.AppError {
	if errType == TypeInsufficientQuota || IsQuotaMessage(message) || IsQuotaMessage(errType) {
		return apperrors.NewQuotaExceededError(cause)
	}
	if strings.TrimSpace(message) == "" {
		message = fmt.Sprintf("failed to analyze image with %s", providerName)
	}
	return apperrors.NewProviderError(message, cause)
}
