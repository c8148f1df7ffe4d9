package client

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"sync"
	"time"

	"marketplace/aggregator/internal/config"
	"marketplace/aggregator/internal/domain"
	"marketplace/aggregator/internal/domain/task"
	"marketplace/aggregator/internal/proxy"
	"marketplace/aggregator/internal/queue"

	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

type SourceClient interface {
	GetListingPage(ctx context.Context, marketplace domain.Marketplace, pageNumber int) (*domain.ListingPage, error)
	GetAllListingPagesCh(ctx context.Context, marketplace domain.Marketplace, startPage int) (*domain.ListingPage, chan *domain.ListingPage, error)
	GetListingDetails(ctx context.Context, marketplace domain.Marketplace, externalID string) (*domain.Listing, error)
}

type sourceClient struct {
	rl            ratelimit.Limiter
	config        config.SourceConfig
	httpClient    *resty.Client
	parsers       map[domain.Marketplace]*listingParser
	proxySupplier proxy.ProxySupplier
	queue         queue.Queue

	// Circuit breaker for quota exceeded
	circuitBreakerMutex sync.RWMutex
	quotaExceededUntil  time.Time
	circuitBreakerDelay time.Duration
}

func NewSourceClient(cfg config.SourceConfig, proxySupplier proxy.ProxySupplier, queue queue.Queue) SourceClient {
	client := resty.New().
		SetTimeout(60*time.Second).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(2*time.Second).
		SetRetryMaxWaitTime(10*time.Second).
		SetHeader("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36").
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8").
		SetHeader("Accept-Language", "en-US,en;q=0.5").
		SetTLSClientConfig(&tls.Config{
			InsecureSkipVerify: true,
		})

	// Get initial proxy
	if proxySupplier != nil {
		if proxyURL := proxySupplier.Get(); proxyURL != "" {
			client.SetProxy(proxyURL)
			log.Infof("🔗 Using initial proxy: %s", proxyURL)
		}
	}

	parsers := make(map[domain.Marketplace]*listingParser, len(cfg.BaseURLs))
	for _, marketplace := range domain.Marketplaces {
		parsers[marketplace] = newListingParser(cfg.BaseURLs[marketplace.String()])
	}

	return &sourceClient{
		rl:                  ratelimit.New(cfg.MaxRequestsPerSecond),
		config:              cfg,
		httpClient:          client,
		parsers:             parsers,
		proxySupplier:       proxySupplier,
		queue:               queue,
		circuitBreakerDelay: 30 * time.Minute,
	}
}

func (c *sourceClient) baseURL(marketplace domain.Marketplace) string {
	return c.config.BaseURLs[marketplace.String()]
}

func (c *sourceClient) GetListingPage(ctx context.Context, marketplace domain.Marketplace, pageNumber int) (*domain.ListingPage, error) {
	url := fmt.Sprintf("%s/listings?page=%d", c.baseURL(marketplace), pageNumber)

	html, err := c.fetchHTML(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch HTML for listing page: %w", err)
	}

	page, err := c.parsers[marketplace].ParseListingPage(html, marketplace)
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing page: %w", err)
	}

	log.Debugf("Successfully fetched and parsed page %d with %d listings", page.PageNumber, len(page.Items))
	return page, nil
}

func (c *sourceClient) GetAllListingPagesCh(ctx context.Context, marketplace domain.Marketplace, startPage int) (*domain.ListingPage, chan *domain.ListingPage, error) {
	firstPage, err := c.GetListingPage(ctx, marketplace, startPage)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch first page: %w", err)
	}

	pagesChan := make(chan *domain.ListingPage, firstPage.TotalPages)
	pagesChan <- firstPage

	if firstPage.TotalPages <= startPage {
		close(pagesChan)
		return firstPage, pagesChan, nil
	}

	go func() {
		defer close(pagesChan)

		wg := &sync.WaitGroup{}
		semaphore := make(chan struct{}, c.config.MaxWorkers)

		for pageNum := startPage + 1; pageNum <= firstPage.TotalPages; pageNum++ {
			wg.Add(1)

			semaphore <- struct{}{}

			go func(pageNum int) {
				defer wg.Done()
				defer func() { <-semaphore }()

				page, err := c.GetListingPage(ctx, marketplace, pageNum)
				if err != nil {
					// Add to retry queue instead of just logging
					retryTask := &task.PageRetryTask{
						PageNumber:  pageNum,
						Marketplace: marketplace,
						RetryCount:  0,
						Error:       err.Error(),
					}

					if c.queue != nil {
						if _, addErr := c.queue.AddTask(ctx, retryTask); addErr != nil {
							log.Errorf("❌ Failed to add page %d to retry queue: %v", pageNum, addErr)
						} else {
							log.Warnf("🔄 Added page %d to retry queue due to fetch failure: %v", pageNum, err)
						}
					} else {
						log.Errorf("Failed to fetch page %d: %v", pageNum, err)
					}
					return
				}

				pagesChan <- page
			}(pageNum)
		}

		wg.Wait()
	}()

	return firstPage, pagesChan, nil
}

func (c *sourceClient) GetListingDetails(ctx context.Context, marketplace domain.Marketplace, externalID string) (*domain.Listing, error) {
	url := fmt.Sprintf("%s/listings/%s", c.baseURL(marketplace), externalID)

	html, err := c.fetchHTML(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch HTML for listing %s: %w", externalID, err)
	}

	listing, err := c.parsers[marketplace].ParseListingDetails(html, marketplace, externalID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing details: %w", err)
	}

	listing.ListingURL = url

	log.Debugf("Successfully fetched and parsed listing %s", externalID)
	return listing, nil
}

func (c *sourceClient) isCircuitBreakerOpen() bool {
	c.circuitBreakerMutex.RLock()
	now := time.Now()
	wasOpen := now.Before(c.quotaExceededUntil)
	wasTriggered := !c.quotaExceededUntil.IsZero()
	c.circuitBreakerMutex.RUnlock()

	// If circuit breaker was triggered but is now expired, log re-enabling
	if !wasOpen && wasTriggered {
		c.circuitBreakerMutex.Lock()
		// Double-check after acquiring write lock
		if !c.quotaExceededUntil.IsZero() && now.After(c.quotaExceededUntil) {
			c.quotaExceededUntil = time.Time{} // Reset to avoid repeated logging
			log.Infof("✅ Circuit breaker automatically re-enabled - requests are now allowed")
		}
		c.circuitBreakerMutex.Unlock()
	}

	return wasOpen
}

func (c *sourceClient) triggerCircuitBreaker() {
	c.circuitBreakerMutex.Lock()
	defer c.circuitBreakerMutex.Unlock()

	c.quotaExceededUntil = time.Now().Add(c.circuitBreakerDelay)
	log.Warnf("🚫 Circuit breaker activated! All requests disabled until %v",
		c.quotaExceededUntil.Format("15:04:05"))
}

func (c *sourceClient) getRemainingCircuitBreakerTime() time.Duration {
	c.circuitBreakerMutex.RLock()
	defer c.circuitBreakerMutex.RUnlock()

	remaining := time.Until(c.quotaExceededUntil)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// isBlocked detects rate-limit and captcha interstitials served instead
// of the requested page.
func isBlocked(html string) bool {
	return strings.Contains(html, "Quota Exceeded") ||
		strings.Contains(html, "captcha") ||
		strings.Contains(html, "Zu viele Anfragen")
}

func (c *sourceClient) fetchHTML(ctx context.Context, url string) (string, error) {
	if c.isCircuitBreakerOpen() {
		remaining := c.getRemainingCircuitBreakerTime()
		log.Debugf("🚫 Request blocked by circuit breaker. Remaining time: %v", remaining.Round(time.Second))
		return "", fmt.Errorf("circuit breaker is open - requests disabled for %v more", remaining.Round(time.Second))
	}

	c.rl.Take()

	// Create a context with a longer timeout for individual requests
	reqCtx, cancel := context.WithTimeout(ctx, 90*time.Second)
	defer cancel()

	resp, err := c.httpClient.R().
		SetContext(reqCtx).
		Get(url)

	if err != nil {
		// Check if this is a context cancellation from the parent context
		if ctx.Err() != nil {
			return "", fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		return "", fmt.Errorf("failed to fetch URL: %w", err)
	}

	if resp.IsError() {
		return "", fmt.Errorf("HTTP error: %d %s", resp.StatusCode(), resp.Status())
	}

	html := resp.String()
	if isBlocked(html) {
		log.Warnf("🚫 Rate limit exceeded for URL: %s", url)

		if c.proxySupplier != nil {
			if newProxy := c.proxySupplier.Get(); newProxy != "" {
				log.Infof("🔄 Switching to new proxy: %s", newProxy)
				c.httpClient.SetProxy(newProxy)

				retryResp, retryErr := c.httpClient.R().
					SetContext(reqCtx).
					Get(url)

				if retryErr == nil && !retryResp.IsError() {
					retryHTML := retryResp.String()
					if !isBlocked(retryHTML) {
						log.Infof("✅ Retry successful with new proxy")
						return retryHTML, nil
					}
				}
			}
		}

		// Proxy retry failed or no proxy available
		c.triggerCircuitBreaker()
		return "", fmt.Errorf("quota exceeded - circuit breaker activated for %v", c.circuitBreakerDelay)
	}

	return html, nil
}
