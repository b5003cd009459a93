package embed

import (
	"time"

	"personafeed/internal/logger"
)

// Registry hands out the adapter for a source URL. All adapters share one
// Page so provider scripts are injected once.
type Registry struct {
	page     *Page
	adapters map[SourceType]Adapter
}

func NewRegistry(page *Page, prober Prober, readyTimeout time.Duration, log logger.Logger) *Registry {
	if page == nil {
		page = NewPage()
	}
	if readyTimeout <= 0 {
		readyTimeout = DefaultReadyTimeout
	}
	if log == nil {
		log = logger.NewNop()
	}

	base := func(src SourceType, script string) *provider {
		return &provider{source: src, script: script, page: page, prober: prober, timeout: readyTimeout, log: log}
	}

	tt := base(SourceTikTok, TikTokScript)
	tt.build, tt.probe = tiktokNode, tiktokProbe

	ig := base(SourceInstagram, InstagramScript)
	ig.build, ig.probe = instagramNode, headProbe

	vid := base(SourceVideo, "")
	vid.build, vid.probe = videoNode, headProbe

	return &Registry{
		page: page,
		adapters: map[SourceType]Adapter{
			SourceTikTok:    tt,
			SourceInstagram: ig,
			SourceVideo:     vid,
		},
	}
}

func (r *Registry) For(sourceURL string) Adapter {
	return r.adapters[Select(sourceURL)]
}

func (r *Registry) Page() *Page {
	return r.page
}
