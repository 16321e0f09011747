// Package snapshot renders the dashboard page in headless Chrome and saves
// one full-page PNG per college.
package snapshot

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/chromedp/chromedp"

	"rmp-dashboard/config"
	"rmp-dashboard/utils"
)

// readyExpr is truthy once the page has rendered every chart.
const readyExpr = `!document.getElementById('dashboard-ready').hidden`

// pngQuality is the only quality at which chromedp encodes PNG; any
// other value yields JPEG.
const pngQuality = 100

// Result describes one saved screenshot.
type Result struct {
	College string `json:"college" yaml:"college"`
	Path    string `json:"path" yaml:"path"`
	Bytes   int    `json:"bytes" yaml:"bytes"`
}

// Renderer drives a shared browser allocator and captures pages through a
// worker pool.
type Renderer struct {
	cfg      *config.Config
	logger   *utils.Logger
	baseURL  string
	pool     *utils.WorkerPool
	captured *utils.KeySet
	retry    *utils.RetryConfig
	timeout  time.Duration

	mu      sync.Mutex
	results []Result
}

// New creates a Renderer for the dashboard served at baseURL.
func New(cfg *config.Config, logger *utils.Logger, baseURL string) *Renderer {
	return &Renderer{
		cfg:      cfg,
		logger:   logger,
		baseURL:  strings.TrimRight(baseURL, "/"),
		pool:     utils.NewWorkerPool(cfg.MaxConcurrency, cfg.RateLimitMs),
		captured: utils.NewKeySet(),
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   time.Second,
			Logger:      logger,
		},
		timeout: 60 * time.Second,
	}
}

// Capture saves a screenshot of the dashboard for each college. Duplicate
// colleges are captured once. Failures for individual colleges are joined
// into the returned error; the successful results are still returned.
func (r *Renderer) Capture(ctx context.Context, colleges []string) ([]Result, error) {
	if err := os.MkdirAll(r.cfg.SnapshotDir, 0o755); err != nil {
		return nil, fmt.Errorf("snapshot: create %s: %w", r.cfg.SnapshotDir, err)
	}

	chromeBin := findChromeBinary(r.cfg.ChromeBin)
	r.logger.Info("[snapshot] Using browser binary: %s", chromeBin)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocatorOptions(chromeBin)...)
	defer cancelAlloc()

	// Suppress chromedp log noise
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	// Start the browser before fanning out so tabs share one process.
	if err := chromedp.Run(browserCtx); err != nil {
		return nil, fmt.Errorf("snapshot: start browser: %w", err)
	}

	for _, college := range colleges {
		c := college
		if !r.captured.Add(c) {
			r.logger.Debug("[snapshot] Skipping duplicate: %s", c)
			continue
		}
		r.pool.SubmitErr(func() error {
			res, err := r.capture(browserCtx, c)
			if err != nil {
				r.logger.Warn("[snapshot] %s failed: %v", c, err)
				return fmt.Errorf("%s: %w", c, err)
			}
			r.mu.Lock()
			r.results = append(r.results, res)
			r.mu.Unlock()
			r.logger.Info("[snapshot] Saved %s (%d bytes)", res.Path, res.Bytes)
			return nil
		})
	}
	err := r.pool.Wait()

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.results, err
}

func (r *Renderer) capture(browserCtx context.Context, college string) (Result, error) {
	target := PageURL(r.baseURL, college)
	var shot []byte

	err := r.retry.Do(browserCtx, "snapshot-"+FileName(college), func(context.Context) error {
		tabCtx, cancel := chromedp.NewContext(browserCtx)
		defer cancel()

		tabCtx, cancelTimeout := context.WithTimeout(tabCtx, r.timeout)
		defer cancelTimeout()

		var ready bool
		err := chromedp.Run(tabCtx,
			chromedp.EmulateViewport(1400, 900),
			chromedp.Navigate(target),
			chromedp.Poll(readyExpr, &ready, chromedp.WithPollingInterval(250*time.Millisecond)),
			chromedp.FullScreenshot(&shot, pngQuality),
		)
		if err != nil {
			return fmt.Errorf("chromedp capture %s: %w", target, err)
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	path := filepath.Join(r.cfg.SnapshotDir, FileName(college))
	if err := os.WriteFile(path, shot, 0o644); err != nil {
		return Result{}, fmt.Errorf("write %s: %w", path, err)
	}
	return Result{College: college, Path: path, Bytes: len(shot)}, nil
}

// PageURL returns the dashboard URL preselecting college.
func PageURL(base, college string) string {
	base = strings.TrimRight(base, "/")
	if college == "" {
		return base + "/"
	}
	return base + "/?college=" + url.QueryEscape(college)
}

// FileName returns a filesystem-safe PNG name for college.
func FileName(college string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(college) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	name := strings.TrimSuffix(b.String(), "-")
	if name == "" {
		name = "all-colleges"
	}
	return name + ".png"
}

func allocatorOptions(chromeBin string) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.WindowSize(1400, 900),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}
	return opts
}

// findChromeBinary locates Chrome/Chromium. An explicit override wins,
// then CHROME_BIN, then PATH, then well-known install locations.
func findChromeBinary(override string) string {
	if override != "" {
		return override
	}
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
