package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"marketplace/aggregator/internal/catalog"
	"marketplace/aggregator/internal/client"
	"marketplace/aggregator/internal/domain"
	"marketplace/aggregator/internal/domain/task"
	"marketplace/aggregator/internal/normalize"
	"marketplace/aggregator/internal/queue"
	"marketplace/aggregator/internal/repository"
	"marketplace/aggregator/internal/state"

	"golang.org/x/sync/errgroup"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

type Service struct {
	repository   repository.ProductRepository
	client       client.SourceClient
	queue        queue.Queue
	stateManager state.StateManager
	catalog      *catalog.Catalog

	conditions *normalize.ConditionNormalizer
	colors     *normalize.ColorNormalizer
	classifier *normalize.AttributeClassifier

	minSaveInterval int
	groupName       string
	minIdleTime     time.Duration
}

func NewService(
	repository repository.ProductRepository,
	client client.SourceClient,
	queue queue.Queue,
	stateManager state.StateManager,
	catalog *catalog.Catalog,
	minSaveInterval int,
	groupName string,
	minIdleTime int,
) *Service {
	colors := normalize.NewColorNormalizer()

	return &Service{
		repository:      repository,
		client:          client,
		queue:           queue,
		stateManager:    stateManager,
		catalog:         catalog,
		conditions:      normalize.NewConditionNormalizer(),
		colors:          colors,
		classifier:      normalize.NewAttributeClassifier(colors),
		minSaveInterval: minSaveInterval,
		groupName:       groupName,
		minIdleTime:     time.Duration(minIdleTime) * time.Second,
	}
}

// IngestAll enqueues a listing page task for every page of every
// configured marketplace, resuming from the saved cursor.
func (s *Service) IngestAll(ctx context.Context) error {
	errGroup := new(errgroup.Group)

	for _, marketplace := range domain.Marketplaces {
		errGroup.Go(func() error {
			lastProcessedPage, err := s.stateManager.GetLastProcessedPage(ctx, marketplace)
			if err != nil {
				log.Errorf("Failed to get last processed page: %v", err)
				return err
			}

			if lastProcessedPage == 0 {
				lastProcessedPage = 1
			}

			if lastProcessedPage != 1 {
				log.Infof("🔄 Continue from page %d for %s", lastProcessedPage, marketplace.GetDisplayName())
			}

			log.Infof("🔄 Processing marketplace: %s (%s)", marketplace.GetDisplayName(), marketplace.String())

			firstPage, dataCh, err := s.client.GetAllListingPagesCh(ctx, marketplace, lastProcessedPage)
			if err != nil {
				log.Errorf("❌ Failed to get listing pages for %s: %v", marketplace.String(), err)
				return err
			}

			countPages := 0
			for page := range dataCh {
				countPages++

				if countPages%s.minSaveInterval == 0 {
					s.stateManager.SetLastProcessedPage(ctx, marketplace, max(0, page.PageNumber-s.minSaveInterval))
				}

				_, err := s.queue.AddTask(ctx, &task.ListingPageTask{
					PageNumber:  page.PageNumber,
					Marketplace: page.Marketplace,
					Items:       page.Items,
				})
				if err != nil {
					log.Errorf("❌ Failed to add task for %s: %v", marketplace.String(), err)
					return err
				}
			}

			log.Infof("✅ Completed %s: %d pages, %d total listings",
				marketplace.GetDisplayName(), countPages, firstPage.TotalItems)

			s.stateManager.SetLastProcessedPage(ctx, marketplace, firstPage.TotalPages)

			return nil
		})
	}

	return errGroup.Wait()
}

func (s *Service) RunWorkers(ctx context.Context, numWorkers int) error {
	var wg sync.WaitGroup

	// Run workers for both regular and retry tasks
	s.runWorkersForStream(ctx, &wg, numWorkers, queue.StreamPrefix+"ListingPageTask", "main")
	s.runWorkersForStream(ctx, &wg, numWorkers/2, queue.StreamPrefix+"PageRetryTask", "page-retry")
	s.runWorkersForStream(ctx, &wg, numWorkers/2, queue.StreamPrefix+"ListingRetryTask", "listing-retry")

	wg.Wait()
	return nil
}

func (s *Service) runWorkersForStream(ctx context.Context, wg *sync.WaitGroup, numWorkers int, streamName, workerType string) {
	// Auto-claimer for this stream
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(s.minIdleTime)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				consumer := fmt.Sprintf("autoclaimer-%s-%d", workerType, time.Now().UnixNano())
				claimedMessages, err := s.queue.AutoClaim(ctx, s.groupName, consumer, streamName, s.minIdleTime)
				if err != nil {
					log.Errorf("❌ Failed to auto-claim messages for %s: %v", streamName, err)
					continue
				}
				if len(claimedMessages) > 0 {
					log.Infof("🔄 Auto-claimed %d messages from %s stream", len(claimedMessages), workerType)
					for _, msg := range claimedMessages {
						err := s.processMessage(ctx, &msg)
						if err != nil {
							log.Errorf("❌ Failed to process auto-claimed message %s: %v", msg.ID, err)
						}
					}
				}
			}
		}
	}()

	// Regular workers for this stream
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			consumer := fmt.Sprintf("%s-worker-%d", workerType, workerID)
			log.Infof("🚀 Starting %s worker %d as consumer %s", workerType, workerID, consumer)
			for {
				select {
				case <-ctx.Done():
					log.Infof("🛑 %s worker %d stopping", workerType, workerID)
					return
				default:
					msg, err := s.queue.GetTask(ctx, s.groupName, consumer, streamName)
					if err != nil {
						log.Errorf("❌ Failed to get task from %s: %v", streamName, err)
						continue
					}

					if msg != nil {
						err := s.processMessage(ctx, msg)
						if err != nil {
							log.Errorf("❌ Failed to process message %s: %v", msg.ID, err)
						}
					}
				}
			}
		}(i + 1)
	}
}

func (s *Service) processMessage(ctx context.Context, msg *redis.XMessage) error {
	taskType, ok := msg.Values["task_type"].(string)
	if !ok {
		return fmt.Errorf("invalid task type in message %s", msg.ID)
	}

	taskData, ok := msg.Values["task_data"].(string)
	if !ok {
		return fmt.Errorf("invalid task data in message %s", msg.ID)
	}

	streamName := queue.StreamPrefix + taskType

	switch taskType {
	case "ListingPageTask":
		pageTask, err := task.UnmarshalTask[*task.ListingPageTask]([]byte(taskData))
		if err != nil {
			return fmt.Errorf("failed to unmarshal listing page task data: %w", err)
		}

		if err := s.processPage(ctx, pageTask); err != nil {
			// Add to retry queue instead of failing completely
			retryTask := &task.PageRetryTask{
				PageNumber:  pageTask.PageNumber,
				Marketplace: pageTask.Marketplace,
				RetryCount:  0,
				Error:       err.Error(),
			}

			if _, addErr := s.queue.AddTask(ctx, retryTask); addErr != nil {
				log.Errorf("❌ Failed to add retry task for page %d: %v", pageTask.PageNumber, addErr)
			} else {
				log.Warnf("🔄 Added page %d to retry queue due to error: %v", pageTask.PageNumber, err)
			}
		}

	case "PageRetryTask":
		retryTask, err := task.UnmarshalTask[*task.PageRetryTask]([]byte(taskData))
		if err != nil {
			return fmt.Errorf("failed to unmarshal page retry task data: %w", err)
		}

		if err := s.retryPage(ctx, retryTask); err != nil {
			return fmt.Errorf("failed to retry page: %w", err)
		}

	case "ListingRetryTask":
		retryTask, err := task.UnmarshalTask[*task.ListingRetryTask]([]byte(taskData))
		if err != nil {
			return fmt.Errorf("failed to unmarshal listing retry task data: %w", err)
		}

		if err := s.retryListing(ctx, retryTask); err != nil {
			return fmt.Errorf("failed to retry listing: %w", err)
		}

	default:
		return fmt.Errorf("unknown task type: %s", taskType)
	}

	if err := s.queue.AckTask(ctx, streamName, s.groupName, msg.ID); err != nil {
		return fmt.Errorf("failed to ack message %s: %w", msg.ID, err)
	}

	return nil
}

func (s *Service) processPage(ctx context.Context, pageTask *task.ListingPageTask) error {
	for _, item := range pageTask.Items {
		listing, err := s.client.GetListingDetails(ctx, pageTask.Marketplace, item.ExternalID)
		if err != nil {
			log.Errorf("❌ Failed to get listing details for %s: %v", item.ListingURL, err)
			s.enqueueListingRetry(ctx, pageTask.Marketplace, item, 0, err, "fetch")
			continue
		}

		product := s.BuildProduct(listing)

		err = s.repository.SaveProduct(ctx, product)
		if err != nil {
			log.Errorf("❌ Failed to save product %s: %v", product.ExternalID, err)
			s.enqueueListingRetry(ctx, pageTask.Marketplace, item, 0, err, "save")
			continue
		}
	}

	return nil
}

// BuildProduct turns a raw listing into the canonical product record:
// condition and color go through the normalizers, attribute pairs through
// the classifier, and the category hint resolves against the catalog.
func (s *Service) BuildProduct(listing *domain.Listing) *domain.Product {
	product := &domain.Product{
		Marketplace: listing.Marketplace,
		ExternalID:  listing.ExternalID,
		ListingURL:  listing.ListingURL,
		Title:       listing.Title,
		Description: listing.Description,
		Price:       listing.Price,
		Condition:   s.conditions.Normalize(listing.Condition),
		ImageURL:    listing.ImageURL,
	}

	if listing.Color != "" {
		product.Color = s.colors.Normalize(listing.Color)
	}

	if len(listing.Attributes) > 0 {
		product.Attributes = make([]domain.Attribute, 0, len(listing.Attributes))
		for _, attr := range listing.Attributes {
			key, value := s.classifier.Classify(attr.Key, attr.Value)
			product.Attributes = append(product.Attributes, domain.Attribute{Key: key, Value: value})
		}
	}

	if listing.CategoryHint != "" {
		// Unknown hints leave the path empty; the product stays in the
		// uncategorized bucket until the hint catches up with the catalog.
		product.CategoryPath = s.catalog.ResolvePath(listing.CategoryHint)
		if product.CategoryPath == nil {
			log.Debugf("Category hint %q for listing %s not in catalog", listing.CategoryHint, listing.ExternalID)
		} else if prompt := s.catalog.GetAttributeExtractionPrompt(product.CategoryPath); prompt != "" {
			log.Debugf("Listing %s has extraction prompt for category %v", listing.ExternalID, product.CategoryPath)
		}
	}

	return product
}

// ExtractionContext returns the attribute-extraction prompt and expected
// attributes for a category path. The downstream extractor calls this
// once per categorized product.
func (s *Service) ExtractionContext(path []string) (string, map[string]string) {
	return s.catalog.GetAttributeExtractionPrompt(path), s.catalog.GetAttributesToExtract(path)
}

func (s *Service) enqueueListingRetry(ctx context.Context, marketplace domain.Marketplace, item domain.ListingRef, retryCount int, cause error, stage string) {
	retryTask := &task.ListingRetryTask{
		ListingURL:   item.ListingURL,
		Marketplace:  marketplace,
		ExternalID:   item.ExternalID,
		RetryCount:   retryCount + 1,
		Error:        cause.Error(),
		FailureStage: stage,
	}

	if _, err := s.queue.AddTask(ctx, retryTask); err != nil {
		log.Errorf("❌ Failed to add listing %s to retry queue: %v", item.ExternalID, err)
	} else {
		log.Warnf("🔄 Added listing %s to retry queue (stage %s): %v", item.ExternalID, stage, cause)
	}
}

func (s *Service) retryPage(ctx context.Context, retryTask *task.PageRetryTask) error {
	// Increment retry count
	retryTask.RetryCount++

	log.Infof("🔄 Retrying page %d for %s (attempt %d)",
		retryTask.PageNumber, retryTask.Marketplace, retryTask.RetryCount)

	// Try to fetch the page again
	page, err := s.client.GetListingPage(ctx, retryTask.Marketplace, retryTask.PageNumber)
	if err != nil {
		// Create new retry task with incremented count - retry indefinitely
		newRetryTask := &task.PageRetryTask{
			PageNumber:  retryTask.PageNumber,
			Marketplace: retryTask.Marketplace,
			RetryCount:  retryTask.RetryCount,
			Error:       err.Error(),
		}

		if _, addErr := s.queue.AddTask(ctx, newRetryTask); addErr != nil {
			log.Errorf("❌ Failed to re-add retry task for page %d: %v", retryTask.PageNumber, addErr)
			return addErr
		}

		log.Warnf("🔄 Page %d for %s failed again, will retry (attempt %d): %v",
			retryTask.PageNumber, retryTask.Marketplace, retryTask.RetryCount, err)
		return nil
	}

	// Success! Create a regular ListingPageTask to process the items
	pageTask := &task.ListingPageTask{
		PageNumber:  page.PageNumber,
		Marketplace: page.Marketplace,
		Items:       page.Items,
	}

	if _, err := s.queue.AddTask(ctx, pageTask); err != nil {
		log.Errorf("❌ Failed to add recovered page task for page %d: %v", retryTask.PageNumber, err)
		return err
	}

	log.Infof("✅ Successfully recovered page %d for %s after %d attempts",
		retryTask.PageNumber, retryTask.Marketplace, retryTask.RetryCount)
	return nil
}

func (s *Service) retryListing(ctx context.Context, retryTask *task.ListingRetryTask) error {
	log.Infof("🔄 Retrying listing %s for %s (attempt %d)",
		retryTask.ExternalID, retryTask.Marketplace, retryTask.RetryCount)

	listing, err := s.client.GetListingDetails(ctx, retryTask.Marketplace, retryTask.ExternalID)
	if err != nil {
		s.enqueueListingRetry(ctx, retryTask.Marketplace,
			domain.ListingRef{ExternalID: retryTask.ExternalID, ListingURL: retryTask.ListingURL},
			retryTask.RetryCount, err, "fetch")
		return nil
	}

	product := s.BuildProduct(listing)

	if err := s.repository.SaveProduct(ctx, product); err != nil {
		s.enqueueListingRetry(ctx, retryTask.Marketplace,
			domain.ListingRef{ExternalID: retryTask.ExternalID, ListingURL: retryTask.ListingURL},
			retryTask.RetryCount, err, "save")
		return nil
	}

	log.Infof("✅ Successfully recovered listing %s after %d attempts",
		retryTask.ExternalID, retryTask.RetryCount)
	return nil
}
