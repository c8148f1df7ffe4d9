package task

import (
	"testing"

	"marketplace/aggregator/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListingPageTaskRoundTrip(t *testing.T) {
	original := &ListingPageTask{
		PageNumber:  3,
		Marketplace: domain.MarketplaceEbayDE,
		Items: []domain.ListingRef{
			{ExternalID: "2104567890", ListingURL: "https://www.example.de/listings/2104567890"},
		},
	}

	assert.Equal(t, "ListingPageTask", original.TaskType())

	data, err := original.TaskValue()
	require.NoError(t, err)

	decoded, err := UnmarshalTask[*ListingPageTask](data)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestListingRetryTaskRoundTrip(t *testing.T) {
	original := &ListingRetryTask{
		ListingURL:   "https://www.example.de/listings/2104567890",
		Marketplace:  domain.MarketplaceWallapop,
		ExternalID:   "2104567890",
		RetryCount:   2,
		Error:        "HTTP error: 503",
		FailureStage: "fetch",
	}

	assert.Equal(t, "ListingRetryTask", original.TaskType())

	data, err := original.TaskValue()
	require.NoError(t, err)

	decoded, err := UnmarshalTask[*ListingRetryTask](data)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestUnmarshalTaskRejectsGarbage(t *testing.T) {
	_, err := UnmarshalTask[*PageRetryTask]([]byte("{not json"))
	assert.Error(t, err)
}
