package task

import "marketplace/aggregator/internal/domain"

type ListingPageTask struct {
	PageNumber  int                 `json:"page_number"` // Current page number
	Marketplace domain.Marketplace  `json:"marketplace"`
	Items       []domain.ListingRef `json:"items"` // Basic listing info for queuing
}

func (t *ListingPageTask) TaskType() string {
	return "ListingPageTask"
}

func (t *ListingPageTask) TaskValue() ([]byte, error) {
	return DefaultTaskValue(t)
}
