package embed

import "strings"

type SourceType string

const (
	SourceVideo     SourceType = "video"
	SourceTikTok    SourceType = "tiktok"
	SourceInstagram SourceType = "instagram"
)

// Select picks the playback strategy for a content URL. Anything that is not
// a known provider is treated as a direct video file.
func Select(sourceURL string) SourceType {
	u := strings.ToLower(sourceURL)
	switch {
	case strings.Contains(u, "tiktok.com"):
		return SourceTikTok
	case strings.Contains(u, "instagram.com"):
		return SourceInstagram
	}
	return SourceVideo
}
