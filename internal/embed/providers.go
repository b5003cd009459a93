package embed

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

const (
	TikTokScript    = "https://www.tiktok.com/embed.js"
	InstagramScript = "https://www.instagram.com/embed.js"

	tiktokOEmbed = "https://www.tiktok.com/oembed?url="
)

// --------- TikTok ---------

func tiktokNode(sourceURL string, _ MountOptions) *Node {
	attrs := map[string]string{
		"class": "tiktok-embed",
		"cite":  sourceURL,
	}
	if id := tiktokVideoID(sourceURL); id != "" {
		attrs["data-video-id"] = id
	}
	link := NewNode("a", map[string]string{"href": sourceURL})
	link.Text = sourceURL
	return NewNode("blockquote", attrs, NewNode("section", nil, link))
}

// tiktokVideoID pulls the numeric id out of .../video/<id>.
func tiktokVideoID(sourceURL string) string {
	u, err := url.Parse(sourceURL)
	if err != nil {
		return ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+1 < len(parts); i++ {
		if parts[i] == "video" {
			return parts[i+1]
		}
	}
	return ""
}

func tiktokProbe(ctx context.Context, p Prober, sourceURL string) error {
	return p.Probe(ctx, http.MethodGet, tiktokOEmbed+url.QueryEscape(sourceURL))
}

// --------- Instagram ---------

func instagramNode(sourceURL string, _ MountOptions) *Node {
	link := NewNode("a", map[string]string{"href": sourceURL})
	link.Text = sourceURL
	return NewNode("blockquote", map[string]string{
		"class":                  "instagram-media",
		"data-instgrm-permalink": sourceURL,
		"data-instgrm-version":   "14",
	}, link)
}

// --------- Native video ---------

func videoNode(sourceURL string, opts MountOptions) *Node {
	attrs := map[string]string{
		"src":         sourceURL,
		"playsinline": "",
		"muted":       "",
		"loop":        "",
		"preload":     "metadata",
	}
	if opts.Autoplay {
		attrs["autoplay"] = ""
	}
	if opts.Poster != "" {
		attrs["poster"] = opts.Poster
	}
	return NewNode("video", attrs)
}

func headProbe(ctx context.Context, p Prober, sourceURL string) error {
	return p.Probe(ctx, http.MethodHead, sourceURL)
}
