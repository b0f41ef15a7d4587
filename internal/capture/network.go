package capture

import (
	"strings"

	"github.com/chromedp/cdproto/network"
	"github.com/dgnsrekt/video_agent/internal/engine"
	"github.com/dgnsrekt/video_agent/internal/media"
)

// NetworkObserver forwards video-like network requests to the engine. URLs
// without any streaming signal are filtered out here so the engine only sees
// traffic worth attributing.
type NetworkObserver struct {
	obs Observer
}

func NewNetworkObserver(obs Observer) *NetworkObserver {
	return &NetworkObserver{obs: obs}
}

// OnRequestWillBeSent handles one Network.requestWillBeSent event.
func (n *NetworkObserver) OnRequestWillBeSent(tabID string, ev *network.EventRequestWillBeSent) {
	url := ev.Request.URL
	if !media.VideoLikeURL(url) {
		return
	}
	n.obs.Observe(engine.Observation{
		Kind:          engine.KindNetRequest,
		URL:           url,
		InitiatorType: strings.ToLower(string(ev.Type)),
	})
}
