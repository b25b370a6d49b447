// Package inspector captures Element Descriptors from a live page. It
// drives Chrome through Rod, selects the target element, and reads back
// the element's tag, attributes in document order, and the source line
// hint left by build-time instrumentation — everything the patch locator
// needs to re-find the element in source.
//
// The inspector observes, it does not edit: its output is the input of an
// edit request.
package inspector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// ErrNoElement is returned when the selector matches nothing on the page.
var ErrNoElement = errors.New("inspector: selector matched no element")

// Config configures the inspector's browser.
type Config struct {
	// RemoteURL is the WebSocket URL of an external Chrome instance.
	// Empty = launch a local headless Chrome via launcher.
	RemoteURL string `yaml:"remote_url"`

	// Stealth opens pages through the stealth patch set. Dev servers do
	// not care, but pages behind bot walls do.
	Stealth bool `yaml:"stealth"`

	// NavTimeout bounds navigation plus load wait. Default: 30s.
	NavTimeout time.Duration `yaml:"nav_timeout"`
}

func (c *Config) defaults() {
	if c.NavTimeout <= 0 {
		c.NavTimeout = 30 * time.Second
	}
}

// Inspector manages the browser connection and answers Describe calls.
type Inspector struct {
	cfg     Config
	logger  *slog.Logger
	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
}

// New creates an Inspector. Call Start to launch or connect the browser.
func New(cfg Config, logger *slog.Logger) *Inspector {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Inspector{cfg: cfg, logger: logger}
}

// Start launches a local Chrome (or connects to the configured remote)
// and verifies the connection.
func (i *Inspector) Start(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	wsURL := i.cfg.RemoteURL
	if wsURL == "" {
		l := launcher.New().
			Headless(true).
			Set("disable-blink-features", "AutomationControlled")
		u, err := l.Launch()
		if err != nil {
			return fmt.Errorf("inspector: launch: %w", err)
		}
		wsURL = u
		i.lnch = l
		i.logger.Info("inspector: launched local chrome", "url", wsURL)
	} else {
		i.logger.Info("inspector: connecting to remote", "url", wsURL)
	}

	b := rod.New().ControlURL(wsURL).Context(ctx)
	if err := b.Connect(); err != nil {
		return fmt.Errorf("inspector: connect: %w", err)
	}
	if err := b.IgnoreCertErrors(true); err != nil {
		i.logger.Warn("inspector: ignore cert errors failed", "error", err)
	}
	i.browser = b
	return nil
}

// Close shuts down the browser. A remote browser is only disconnected.
func (i *Inspector) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	var err error
	if i.browser != nil {
		err = i.browser.Close()
		i.browser = nil
	}
	if i.lnch != nil {
		i.lnch.Cleanup()
		i.lnch = nil
	}
	return err
}

// Describe navigates to pageURL, selects the first element matching the
// CSS selector, and returns its Descriptor plus instrumentation hints.
func (i *Inspector) Describe(ctx context.Context, pageURL, selector string) (*Description, error) {
	i.mu.Lock()
	b := i.browser
	i.mu.Unlock()
	if b == nil {
		return nil, fmt.Errorf("inspector: not started")
	}

	var page *rod.Page
	var err error
	if i.cfg.Stealth {
		page, err = stealth.Page(b)
	} else {
		page, err = b.Page(proto.TargetCreateTarget{URL: ""})
	}
	if err != nil {
		return nil, fmt.Errorf("inspector: create tab: %w", err)
	}
	defer page.Close()

	navCtx, cancel := context.WithTimeout(ctx, i.cfg.NavTimeout)
	defer cancel()

	if err := page.Context(navCtx).Navigate(pageURL); err != nil {
		return nil, fmt.Errorf("inspector: navigate %s: %w", pageURL, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		i.logger.Warn("inspector: wait load timeout", "url", pageURL, "error", err)
	}

	res, err := page.Context(ctx).Eval(describeJS, selector)
	if err != nil {
		return nil, fmt.Errorf("inspector: eval: %w", err)
	}

	raw := res.Value.Str()
	if raw == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoElement, selector)
	}
	desc, err := decodeDescription([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("inspector: decode: %w", err)
	}
	return desc, nil
}
