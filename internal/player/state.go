package player

import (
	"personafeed/internal/embed"
	"personafeed/internal/feed"
)

// FeedState is the state of the list as a whole.
type FeedState string

const (
	FeedIdle    FeedState = "idle"
	FeedLoading FeedState = "loading"
	FeedReady   FeedState = "ready"
	FeedEmpty   FeedState = "empty"  // no content for persona + company
	FeedFailed  FeedState = "failed" // anything else; Retry is offered
	FeedClosed  FeedState = "closed"
)

// PlaybackState is per item. Error is terminal for that item.
type PlaybackState string

const (
	PlaybackLoading PlaybackState = "loading"
	PlaybackReady   PlaybackState = "ready"
	PlaybackPlaying PlaybackState = "playing"
	PlaybackPaused  PlaybackState = "paused"
	PlaybackError   PlaybackState = "error"
)

// item is the player's bookkeeping for one feed row. It outlives filter
// changes so an errored item stays errored.
type item struct {
	row       feed.FeedRow
	source    embed.SourceType
	state     PlaybackState
	err       error
	container *embed.Container
	adapter   embed.Adapter
	handle    *embed.Handle
	viewed    bool
}

func newItem(row feed.FeedRow) *item {
	return &item{
		row:       row,
		source:    embed.Select(row.ContentURL),
		state:     PlaybackPaused,
		container: embed.NewContainer(),
	}
}

// ItemView is what a renderer gets for one row.
type ItemView struct {
	ContentID int64            `json:"content_id"`
	Title     string           `json:"title"`
	URL       string           `json:"url"`
	Source    embed.SourceType `json:"source"`
	Platforms []string         `json:"platforms"`
	State     PlaybackState    `json:"state"`
	Active    bool             `json:"active"`
	Error     string           `json:"error,omitempty"`
	HTML      string           `json:"html,omitempty"`
}

// Snapshot is an immutable copy of the player. Seq increases with every
// change; observers may drop a snapshot older than one already seen.
type Snapshot struct {
	Seq       uint64     `json:"seq"`
	Feed      FeedState  `json:"feed"`
	PersonaID int64      `json:"persona_id"`
	CompanyID int64      `json:"company_id"`
	Active    int        `json:"active"`
	Filter    []string   `json:"filter,omitempty"`
	Message   string     `json:"message,omitempty"`
	Items     []ItemView `json:"items"`
	Total     int        `json:"total"`
}

// Playing returns the indexes of items currently playing.
func (s Snapshot) Playing() []int {
	var out []int
	for i, it := range s.Items {
		if it.State == PlaybackPlaying {
			out = append(out, i)
		}
	}
	return out
}

func (s Snapshot) ActiveItem() (ItemView, bool) {
	if s.Active < 0 || s.Active >= len(s.Items) {
		return ItemView{}, false
	}
	return s.Items[s.Active], true
}
