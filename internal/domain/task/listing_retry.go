package task

import "marketplace/aggregator/internal/domain"

type ListingRetryTask struct {
	ListingURL   string             `json:"listing_url"` // URL of the failed listing
	Marketplace  domain.Marketplace `json:"marketplace"`
	ExternalID   string             `json:"external_id"`   // Listing ID extracted from URL
	RetryCount   int                `json:"retry_count"`   // Number of times this listing has been retried
	Error        string             `json:"error"`         // Error message from the original failure
	FailureStage string             `json:"failure_stage"` // "fetch" or "save" - which stage failed
}

func (t *ListingRetryTask) TaskType() string {
	return "ListingRetryTask"
}

func (t *ListingRetryTask) TaskValue() ([]byte, error) {
	return DefaultTaskValue(t)
}
