package matcher

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"github.com/jspinak/brobot-sub003/api/schemas"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Browser locates elements in a live Chrome instance via chromedp. An
// Element's Query is treated as a CSS selector; an attempt succeeds when
// at least one matching node becomes visible within the find timeout.
// Successive attempts are rate limited so a tight retry loop cannot
// hammer the browser.
type Browser struct {
	ctx         context.Context
	cancel      context.CancelFunc
	findTimeout time.Duration
	limiter     *rate.Limiter
	log         *zap.Logger
}

var _ schemas.Matcher = (*Browser)(nil)

// NewBrowser launches a browser context rooted at the given allocator
// context (use chromedp.NewExecAllocator for a real Chrome).
func NewBrowser(allocCtx context.Context, findTimeout time.Duration, attemptsPerSecond float64, logger *zap.Logger) (*Browser, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if findTimeout <= 0 {
		return nil, fmt.Errorf("find timeout must be positive, got %s", findTimeout)
	}
	if attemptsPerSecond <= 0 {
		return nil, fmt.Errorf("attempts per second must be positive, got %f", attemptsPerSecond)
	}

	ctx, cancel := chromedp.NewContext(allocCtx)
	// Start the browser eagerly so the first Attempt isn't charged for
	// process startup.
	if err := chromedp.Run(ctx); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}
	return &Browser{
		ctx:         ctx,
		cancel:      cancel,
		findTimeout: findTimeout,
		limiter:     rate.NewLimiter(rate.Limit(attemptsPerSecond), 1),
		log:         logger.Named("browser_matcher"),
	}, nil
}

// Navigate loads a URL in the matcher's browser tab. Guard functions use
// it to drive the application between match attempts.
func (b *Browser) Navigate(ctx context.Context, url string) error {
	runCtx, cancel := mergeContexts(b.ctx, ctx)
	defer cancel()
	if err := chromedp.Run(runCtx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	return nil
}

// Attempt waits for the element's selector to become visible. It reports
// false on timeout or when the caller's context is cancelled; it never
// returns an error because absence is an expected outcome.
func (b *Browser) Attempt(ctx context.Context, element schemas.Element) bool {
	if err := b.limiter.Wait(ctx); err != nil {
		return false
	}

	runCtx, cancel := mergeContexts(b.ctx, ctx)
	defer cancel()
	runCtx, cancelTimeout := context.WithTimeout(runCtx, b.findTimeout)
	defer cancelTimeout()

	var nodes []*cdp.Node
	err := chromedp.Run(runCtx,
		chromedp.WaitVisible(element.Query, chromedp.ByQuery),
		chromedp.Nodes(element.Query, &nodes, chromedp.ByQuery),
	)
	if err != nil {
		b.log.Debug("Element not found",
			zap.String("element", element.Name),
			zap.String("query", element.Query),
			zap.Error(err))
		return false
	}
	b.log.Debug("Element found",
		zap.String("element", element.Name),
		zap.Int("nodes", len(nodes)))
	return len(nodes) > 0
}

// Close tears down the browser context.
func (b *Browser) Close() {
	b.cancel()
}

// mergeContexts returns a child of primary that is also cancelled when
// secondary is done. chromedp actions must run on the browser's context
// chain, but callers still need their own cancellation respected.
func mergeContexts(primary, secondary context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(primary)
	stop := context.AfterFunc(secondary, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}
