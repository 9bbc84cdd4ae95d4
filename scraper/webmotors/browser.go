package webmotors

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"vehicle-insights/config"
	"vehicle-insights/utils"
)

// BrowserFetcher loads search pages in headless Chrome. It is the fallback
// when the API rejects plain HTTP clients.
type BrowserFetcher struct {
	logger  *utils.Logger
	cookie  string
	timeout time.Duration
	retry   *utils.RetryConfig

	browserCtx    context.Context
	cancelAlloc   context.CancelFunc
	cancelBrowser context.CancelFunc
}

// NewBrowserFetcher starts a headless browser that stays up until Close.
func NewBrowserFetcher(cfg *config.Config, logger *utils.Logger) (*BrowserFetcher, error) {
	chromeBin := cfg.ChromeBin
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	logger.Info("[browser] Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.UserAgent(userAgent),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	// Suppress chromedp log noise
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("browser: start: %w", err)
	}

	return &BrowserFetcher{
		logger:  logger,
		cookie:  cfg.Cookie,
		timeout: time.Duration(cfg.HTTPTimeoutSec) * time.Second,
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
		browserCtx:    browserCtx,
		cancelAlloc:   cancelAlloc,
		cancelBrowser: cancelBrowser,
	}, nil
}

// Fetch opens url in a fresh tab with the session cookie and returns the
// document text, which for the search API is the JSON payload.
func (f *BrowserFetcher) Fetch(ctx context.Context, url string) (int, []byte, error) {
	var status int
	var text string

	err := f.retry.Do("browser-fetch", func() error {
		tabCtx, cancel := chromedp.NewContext(f.browserCtx)
		defer cancel()
		tabCtx, cancelTimeout := context.WithTimeout(tabCtx, f.timeout)
		defer cancelTimeout()
		stop := context.AfterFunc(ctx, cancelTimeout)
		defer stop()

		if err := chromedp.Run(tabCtx,
			network.Enable(),
			network.SetExtraHTTPHeaders(network.Headers{
				"Cookie":           f.cookie,
				"X-Requested-With": "XMLHttpRequest",
			}),
		); err != nil {
			return fmt.Errorf("set headers: %w", err)
		}

		resp, err := chromedp.RunResponse(tabCtx, chromedp.Navigate(url))
		if err != nil {
			return fmt.Errorf("navigate: %w", err)
		}
		status = int(resp.Status)
		if status != 200 {
			return nil
		}
		return chromedp.Run(tabCtx, chromedp.Evaluate(`document.body ? document.body.innerText : ""`, &text))
	})
	if err != nil {
		return 0, nil, err
	}
	return status, []byte(text), nil
}

func (f *BrowserFetcher) Close() error {
	f.cancelBrowser()
	f.cancelAlloc()
	return nil
}

// findChromeBinary locates a Chrome/Chromium executable on the system.
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
