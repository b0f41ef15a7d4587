package cdp

import (
	"sync"

	"github.com/chromedp/cdproto/target"
)

// TabInfo holds metadata about an attached browser tab.
type TabInfo struct {
	TargetID string
	URL      string
}

// TabRegistry maps CDP target IDs to tab metadata. Navigation events update
// the stored URL so sessions record the page they were discovered on.
type TabRegistry struct {
	tabs map[target.ID]*TabInfo
	mu   sync.RWMutex
}

func NewTabRegistry() *TabRegistry {
	return &TabRegistry{tabs: make(map[target.ID]*TabInfo)}
}

func (r *TabRegistry) Register(targetID target.ID, url string) *TabInfo {
	info := &TabInfo{TargetID: string(targetID), URL: url}
	r.mu.Lock()
	r.tabs[targetID] = info
	r.mu.Unlock()
	return info
}

func (r *TabRegistry) Get(targetID target.ID) (*TabInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.tabs[targetID]
	return info, ok
}

func (r *TabRegistry) URLFor(tabID string) string {
	info, ok := r.Get(target.ID(tabID))
	if !ok {
		return ""
	}
	return info.URL
}

func (r *TabRegistry) Remove(targetID target.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tabs, targetID)
}

func (r *TabRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tabs)
}
