// Package browser adapts a live chat tab into the collaborators the core
// needs: an evidence snapshot provider, an input surface, a submission
// trigger, and a mutation-driven tick source. It speaks to Chrome over the
// DevTools Protocol via rod, either attaching to an already-running browser
// or launching one.
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Config holds browser attachment settings.
type Config struct {
	// DebuggerURL is the DevTools websocket of a running Chrome. When empty,
	// a browser is launched.
	DebuggerURL string `json:"debugger_url"`
	// Bin is the Chrome binary used when launching.
	Bin      string `json:"bin"`
	Headless bool   `json:"headless"`
	// PageURL selects the chat tab: the first page whose URL contains this
	// substring is attached. When empty the first page wins.
	PageURL string `json:"page_url"`
	// InputSelector locates the chat input (CSS, comma-separated fallbacks).
	InputSelector string `json:"input_selector"`
	// SubmitSelector locates the submit control.
	SubmitSelector string `json:"submit_selector"`
	// NavigationTimeoutMs bounds attach-time page operations.
	NavigationTimeoutMs int `json:"navigation_timeout_ms"`
	// PollMs is the mutation poll interval for observation ticks.
	PollMs int `json:"poll_ms"`
}

// DefaultConfig returns sensible defaults for mainstream chat UIs.
func DefaultConfig() Config {
	return Config{
		InputSelector:       `textarea, [contenteditable="true"][role="textbox"], [contenteditable="true"]`,
		SubmitSelector:      `button[type="submit"], button[data-testid*="send"], button[aria-label*="Send"], button[aria-label*="send"]`,
		NavigationTimeoutMs: 30000,
		PollMs:              250,
	}
}

// NavigationTimeout returns the attach-time operation timeout.
func (c Config) NavigationTimeout() time.Duration {
	if c.NavigationTimeoutMs == 0 {
		return 30 * time.Second
	}
	return time.Duration(c.NavigationTimeoutMs) * time.Millisecond
}

// PollInterval returns the mutation poll interval.
func (c Config) PollInterval() time.Duration {
	if c.PollMs <= 0 {
		return 250 * time.Millisecond
	}
	return time.Duration(c.PollMs) * time.Millisecond
}

// Surface is one attached chat tab. The zero-value-ish unattached state is
// legal: every operation degrades to "no evidence" or an unavailable error
// rather than panicking, so the daemon keeps running across page churn.
type Surface struct {
	cfg Config
	log zerolog.Logger

	mu        sync.RWMutex
	browser   *rod.Browser
	page      *rod.Page
	sessionID string
	url       string
}

// New builds an unattached Surface.
func New(cfg Config, log zerolog.Logger) *Surface {
	return &Surface{cfg: cfg, log: log}
}

// Attach connects to Chrome and binds the chat tab. Safe to call again after
// the tab or browser goes away.
func (s *Surface) Attach(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.browser != nil {
		if _, err := s.browser.Version(); err != nil {
			s.log.Debug().Msg("stale browser connection, reconnecting")
			_ = s.browser.Close()
			s.browser = nil
			s.page = nil
		}
	}

	if s.browser == nil {
		controlURL := s.cfg.DebuggerURL
		if controlURL == "" {
			launch := launcher.New().Headless(s.cfg.Headless)
			if s.cfg.Bin != "" {
				launch = launch.Bin(s.cfg.Bin)
			}
			url, err := launch.Launch()
			if err != nil {
				return fmt.Errorf("launch chrome: %w", err)
			}
			controlURL = url
		}
		browser := rod.New().ControlURL(controlURL).Context(ctx)
		if err := browser.Connect(); err != nil {
			return fmt.Errorf("connect to chrome: %w", err)
		}
		s.browser = browser
	}

	page, url, err := s.findPageLocked()
	if err != nil {
		return err
	}
	s.page = page
	s.url = url
	s.sessionID = uuid.NewString()
	s.log.Info().Str("session", s.sessionID).Str("url", url).Msg("attached to chat surface")
	return nil
}

func (s *Surface) findPageLocked() (*rod.Page, string, error) {
	pages, err := s.browser.Pages()
	if err != nil {
		return nil, "", fmt.Errorf("list pages: %w", err)
	}
	if len(pages) == 0 {
		return nil, "", errors.New("no open pages")
	}
	for _, p := range pages {
		info, err := p.Info()
		if err != nil {
			continue
		}
		if s.cfg.PageURL == "" || strings.Contains(info.URL, s.cfg.PageURL) {
			return p, info.URL, nil
		}
	}
	return nil, "", fmt.Errorf("no page matching %q", s.cfg.PageURL)
}

// Attached reports whether a chat tab is currently bound.
func (s *Surface) Attached() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.page != nil
}

// PageURL returns the bound tab's URL at attach time.
func (s *Surface) PageURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.url
}

// SessionID identifies the current attachment for logs and status.
func (s *Surface) SessionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionID
}

// Close detaches and, when the browser was launched by us, closes it.
func (s *Surface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.page = nil
	s.url = ""
	var err error
	if s.browser != nil {
		err = s.browser.Close()
		s.browser = nil
	}
	return err
}

// currentPage returns the bound page or nil.
func (s *Surface) currentPage() *rod.Page {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.page
}
