package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"shopsphere/domain"
	"shopsphere/pkg/logger"
	"shopsphere/pkg/metrics"

	"github.com/PuerkitoBio/goquery"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

const (
	maxFailCount   = 5
	fetchTimeout   = 15 * time.Second
	maxBodyBytes   = 2 << 20 // 2 MiB
	historyDropPct = 0.01    // ignore sub-1% moves when notifying

	SubjectPriceDrop   = "Price Drop on a Product You Favorited"
	EmailBodyPriceDrop = `Hello %v, the price of <b>%v</b> dropped from %.2f to %.2f. Grab it while it lasts!`
)

// FavoriteRepository contract interface
type FavoriteRepository interface {
	UserIDsByProduct(ctx context.Context, productID uint64) ([]uint, error)
}

// UserRepository contract interface
type UserRepository interface {
	FindByID(ctx context.Context, id uint) (domain.User, error)
}

// NotificationRepository contract interface
type NotificationRepository interface {
	SendEmail(toName, toEmail, subject, message string) (err error)
}

// Runner periodically executes due scraper jobs. Outbound fetches go through
// a shared circuit breaker and a global rate limiter so a slow or failing
// remote cannot starve the loop.
type Runner struct {
	scraperRepo  ScraperRepository
	productRepo  ProductRepository
	favoriteRepo FavoriteRepository
	userRepo     UserRepository
	notifRepo    NotificationRepository

	client    *http.Client
	breaker   *gobreaker.CircuitBreaker[[]byte]
	limiter   *rate.Limiter
	userAgent string
	tick      time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewRunner(
	scraperRepo ScraperRepository,
	productRepo ProductRepository,
	favoriteRepo FavoriteRepository,
	userRepo UserRepository,
	notifRepo NotificationRepository,
	tickSecs int,
	userAgent string,
	requestsPerSec float64,
) *Runner {
	if tickSecs < 1 {
		tickSecs = 30
	}
	if requestsPerSec <= 0 {
		requestsPerSec = 1
	}

	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "scraper-fetch",
		Timeout: 60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("scraper breaker state change", "from", from.String(), "to", to.String())
		},
	})

	return &Runner{
		scraperRepo:  scraperRepo,
		productRepo:  productRepo,
		favoriteRepo: favoriteRepo,
		userRepo:     userRepo,
		notifRepo:    notifRepo,
		client:       &http.Client{Timeout: fetchTimeout},
		breaker:      breaker,
		limiter:      rate.NewLimiter(rate.Limit(requestsPerSec), 1),
		userAgent:    userAgent,
		tick:         time.Duration(tickSecs) * time.Second,
	}
}

// Start launches the runner loop. Call Stop to shut it down.
func (r *Runner) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ticker := time.NewTicker(r.tick)
		defer ticker.Stop()

		logger.Info("scraper runner started", "tick", r.tick.String())
		for {
			select {
			case <-ctx.Done():
				logger.Info("scraper runner stopped")
				return
			case <-ticker.C:
				r.runDue(ctx)
			}
		}
	}()
}

// Stop cancels the loop and waits for the in-flight pass to finish.
func (r *Runner) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
}

func (r *Runner) runDue(ctx context.Context) {
	jobs, err := r.scraperRepo.FindDue(ctx, time.Now())
	if err != nil {
		logger.Error("Failed to load due scraper jobs", err)
		return
	}

	for _, job := range jobs {
		if ctx.Err() != nil {
			return
		}
		r.runJob(ctx, job)
	}
}

func (r *Runner) runJob(ctx context.Context, job domain.ScraperJob) {
	price, err := r.scrapePrice(ctx, job.SourceURL, job.PriceSelector)

	now := time.Now()
	job.LastRunAt = &now

	if err != nil {
		metrics.ScraperRuns.WithLabelValues("failure").Inc()
		job.FailCount++
		if job.FailCount >= maxFailCount {
			job.Status = domain.ScraperJobFailed
			logger.Warn("scraper job disabled after repeated failures", "job_id", job.ID, "fail_count", job.FailCount)
		}
		logger.Warn("scraper job run failed", "job_id", job.ID, "url", job.SourceURL, "error", err)

		if err := r.scraperRepo.Update(ctx, &job); err != nil {
			logger.Error("Failed to persist scraper job failure", err)
		}
		return
	}

	metrics.ScraperRuns.WithLabelValues("success").Inc()
	previous := job.LastPrice
	job.LastPrice = price
	job.FailCount = 0

	if err := r.scraperRepo.Update(ctx, &job); err != nil {
		logger.Error("Failed to persist scraper job result", err)
		return
	}

	if err := r.scraperRepo.SavePricePoint(ctx, &domain.PricePoint{
		JobID:     job.ID,
		ProductID: job.ProductID,
		Price:     price,
	}); err != nil {
		logger.Error("Failed to save price point", err)
	}

	if err := r.productRepo.UpdatePrice(ctx, job.ProductID, price); err != nil {
		logger.Error("Failed to sync product price", err)
	}

	if previous > 0 && price < previous*(1-historyDropPct) {
		r.notifyPriceDrop(ctx, job.ProductID, previous, price)
	}
}

func (r *Runner) scrapePrice(ctx context.Context, sourceURL, selector string) (float64, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("rate limiter: %w", err)
	}

	body, err := r.breaker.Execute(func() ([]byte, error) {
		return r.fetch(ctx, sourceURL)
	})
	if err != nil {
		return 0, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return 0, fmt.Errorf("parse html: %w", err)
	}

	text := strings.TrimSpace(doc.Find(selector).First().Text())
	if text == "" {
		return 0, fmt.Errorf("selector %q matched no text", selector)
	}

	price, err := parsePrice(text)
	if err != nil {
		return 0, fmt.Errorf("parse price from %q: %w", text, err)
	}

	return price, nil
}

func (r *Runner) fetch(ctx context.Context, sourceURL string) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return body, nil
}

var priceRe = regexp.MustCompile(`[0-9][0-9.,]*`)

// parsePrice extracts the first numeric run from scraped text and normalizes
// thousands separators. "1.299,99" and "1,299.99" both parse to 1299.99.
func parsePrice(text string) (float64, error) {
	raw := priceRe.FindString(text)
	if raw == "" {
		return 0, fmt.Errorf("no numeric value")
	}

	lastComma := strings.LastIndex(raw, ",")
	lastDot := strings.LastIndex(raw, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			// European style: dot thousands, comma decimal.
			raw = strings.ReplaceAll(raw, ".", "")
			raw = strings.Replace(raw, ",", ".", 1)
		} else {
			raw = strings.ReplaceAll(raw, ",", "")
		}
	case lastComma >= 0:
		if len(raw)-lastComma-1 == 3 {
			// Comma as thousands separator.
			raw = strings.ReplaceAll(raw, ",", "")
		} else {
			raw = strings.Replace(raw, ",", ".", 1)
		}
	}

	price, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if price <= 0 {
		return 0, fmt.Errorf("non-positive price %v", price)
	}

	return price, nil
}

func (r *Runner) notifyPriceDrop(ctx context.Context, productID uint64, oldPrice, newPrice float64) {
	product, err := r.productRepo.FindByID(ctx, productID)
	if err != nil {
		logger.Error("Failed to load product for price drop notice", err)
		return
	}

	userIDs, err := r.favoriteRepo.UserIDsByProduct(ctx, productID)
	if err != nil {
		logger.Error("Failed to load favoriting users", err)
		return
	}

	for _, userID := range userIDs {
		user, err := r.userRepo.FindByID(ctx, userID)
		if err != nil {
			continue
		}

		err = r.notifRepo.SendEmail(user.FullName, user.Email, SubjectPriceDrop,
			fmt.Sprintf(EmailBodyPriceDrop, user.FullName, product.Name, oldPrice, newPrice))
		if err != nil {
			logger.Warn("Failed to send price drop email", "user_id", userID, "error", err)
		}
	}

	logger.Info("price drop notifications sent", "product_id", productID, "recipients", len(userIDs), "old", oldPrice, "new", newPrice)
}
