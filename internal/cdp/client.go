// Package cdp attaches to a running Chromium over the DevTools protocol,
// installs the media observer in every matching tab and feeds network and
// media events into the capture pipeline.
package cdp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"github.com/dgnsrekt/video_agent/internal/capture"
	"github.com/dgnsrekt/video_agent/internal/config"
)

// Client manages CDP connections to browser tabs.
type Client struct {
	cfg         *config.Config
	media       *capture.MediaObserver
	net         *capture.NetworkObserver
	tabRegistry *TabRegistry

	allocCtx    context.Context
	allocCancel context.CancelFunc

	tabs   map[target.ID]*TabContext
	tabsMu sync.RWMutex
	done   chan struct{}
}

type TabContext struct {
	ID     target.ID
	URL    string
	ctx    context.Context
	cancel context.CancelFunc
}

func NewClient(cfg *config.Config, media *capture.MediaObserver, net *capture.NetworkObserver, tabRegistry *TabRegistry) *Client {
	return &Client{
		cfg:         cfg,
		media:       media,
		net:         net,
		tabRegistry: tabRegistry,
		tabs:        make(map[target.ID]*TabContext),
		done:        make(chan struct{}),
	}
}

// Connect attaches to every page target matching the configured URL filter.
func (c *Client) Connect(ctx context.Context) error {
	_ = ctx
	cdpURL := c.cfg.GetCDPURL()
	slog.Info("connecting to Chromium", "url", cdpURL)

	c.allocCtx, c.allocCancel = chromedp.NewRemoteAllocator(context.Background(), cdpURL)

	tempCtx, tempCancel := chromedp.NewContext(c.allocCtx)
	defer tempCancel()

	if err := chromedp.Run(tempCtx); err != nil {
		return fmt.Errorf("failed to connect to browser: %w", err)
	}

	targets, err := chromedp.Targets(tempCtx)
	if err != nil {
		return fmt.Errorf("failed to enumerate targets: %w", err)
	}

	slog.Info("found browser targets", "count", len(targets))

	attachedCount := 0
	for _, t := range targets {
		if t.Type != "page" {
			continue
		}
		if !c.matchesTabURL(t.URL) {
			slog.Debug("skipping tab (url filter)", "url", t.URL)
			continue
		}
		if err := c.attachToTab(t.TargetID, t.URL); err != nil {
			slog.Error("failed to attach to tab", "target_id", t.TargetID, "url", t.URL, "error", err)
			continue
		}
		attachedCount++
	}

	if attachedCount == 0 {
		return fmt.Errorf("no tabs found matching SNIFFER_TAB_URL_FILTER=%q", c.cfg.TabURLFilter)
	}

	slog.Info("attached to tabs", "count", attachedCount, "tab_url_filter", c.cfg.TabURLFilter)
	return nil
}

func (c *Client) attachToTab(targetID target.ID, url string) error {
	c.tabRegistry.Register(targetID, url)

	tabCtx, tabCancel := chromedp.NewContext(c.allocCtx, chromedp.WithTargetID(targetID))
	tab := &TabContext{ID: targetID, URL: url, ctx: tabCtx, cancel: tabCancel}

	c.tabsMu.Lock()
	c.tabs[targetID] = tab
	c.tabsMu.Unlock()

	err := chromedp.Run(tabCtx,
		network.Enable(),
		network.SetCacheDisabled(true),
		page.Enable(),
		runtime.Enable(),
		runtime.AddBinding(capture.BindingName),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(capture.MediaObserverScript).Do(ctx)
			return err
		}),
	)
	if err != nil {
		tabCancel()
		c.tabRegistry.Remove(targetID)
		return fmt.Errorf("failed to prepare tab: %w", err)
	}

	slog.Info("attached to tab", "target_id", targetID, "url", truncateURL(url))
	chromedp.ListenTarget(tabCtx, c.createEventHandler(string(targetID)))

	if c.cfg.ReloadOnAttach {
		// The observer script only covers documents loaded after injection.
		reloadCtx, reloadCancel := context.WithTimeout(tabCtx, 30*time.Second)
		defer reloadCancel()
		if err := chromedp.Run(reloadCtx, chromedp.Reload()); err != nil {
			slog.Warn("failed to reload tab (continuing)", "target_id", targetID, "error", err)
		} else {
			slog.Info("reloaded tab after attach", "target_id", targetID, "url", truncateURL(url))
		}
	}

	return nil
}

func (c *Client) createEventHandler(tabID string) func(ev interface{}) {
	return func(ev interface{}) {
		switch e := ev.(type) {
		case *page.EventFrameNavigated:
			if e.Frame.ParentID == "" {
				c.tabRegistry.Register(target.ID(tabID), e.Frame.URL)
				slog.Info("tab navigated", "tab_id", tabID, "url", truncateURL(e.Frame.URL))
			}
		case *page.EventNavigatedWithinDocument:
			c.tabRegistry.Register(target.ID(tabID), e.URL)
		case *network.EventRequestWillBeSent:
			c.net.OnRequestWillBeSent(tabID, e)
		case *runtime.EventBindingCalled:
			c.media.OnBindingCalled(tabID, c.tabRegistry.URLFor(tabID), e)
		}
	}
}

func (c *Client) Close() error {
	close(c.done)

	c.tabsMu.Lock()
	defer c.tabsMu.Unlock()
	c.tabs = make(map[target.ID]*TabContext)

	if c.allocCancel != nil {
		c.allocCancel()
	}

	slog.Info("CDP client closed")
	return nil
}

func (c *Client) GetTabCount() int {
	c.tabsMu.RLock()
	defer c.tabsMu.RUnlock()
	return len(c.tabs)
}

func (c *Client) matchesTabURL(url string) bool {
	if c.cfg.TabURLFilter == "" {
		return true
	}
	return strings.Contains(strings.ToLower(url), strings.ToLower(c.cfg.TabURLFilter))
}

func truncateURL(url string) string {
	if len(url) > 120 {
		return url[:120] + "..."
	}
	return url
}
