package player

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"sync"

	"personafeed/internal/common"
	"personafeed/internal/embed"
	"personafeed/internal/feed"
	"personafeed/internal/logger"
)

var (
	ErrClosed = errors.New("player closed")
	// ErrStale is returned to a fetch whose result was dropped because a
	// newer persona switch superseded it.
	ErrStale = errors.New("feed response superseded")
)

// Loader fetches the feed for a persona and company.
type Loader interface {
	Feed(ctx context.Context, personaID, companyID int64) ([]feed.FeedRow, error)
}

// Embeds picks the adapter for a content URL.
type Embeds interface {
	For(sourceURL string) embed.Adapter
}

// Tracker receives engagement events for the active item.
type Tracker interface {
	RecordEngagement(ctx context.Context, contentID int64, kind common.EngagementType) error
}

type Options struct {
	// ViewportHeight is the height of one row; one item fills the screen.
	ViewportHeight float64
	Tracker        Tracker
	Log            logger.Logger
}

type feedKey struct {
	persona, company int64
}

// Player owns the feed list, the active index and therefore the only
// playing slot. Items never see each other; they are told whether they are
// active.
type Player struct {
	loader   Loader
	embeds   Embeds
	tracker  Tracker
	log      logger.Logger
	viewport float64

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	state       FeedState
	key         feedKey
	gen         uint64
	fetchCancel context.CancelFunc
	message     string
	fetchErr    error
	all         []feed.FeedRow
	cache       map[int64]*item
	filter      map[string]struct{}
	view        []*item
	active      int
	seq         uint64
	observers   map[int]func(Snapshot)
	nextObs     int
}

func New(loader Loader, embeds Embeds, opts Options) *Player {
	if opts.ViewportHeight <= 0 {
		opts.ViewportHeight = 1
	}
	if opts.Log == nil {
		opts.Log = logger.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Player{
		loader:    loader,
		embeds:    embeds,
		tracker:   opts.Tracker,
		log:       opts.Log,
		viewport:  opts.ViewportHeight,
		ctx:       ctx,
		cancel:    cancel,
		state:     FeedIdle,
		active:    -1,
		cache:     map[int64]*item{},
		observers: map[int]func(Snapshot){},
	}
}

// Subscribe registers fn for every snapshot. Observers are called outside
// the player lock and may call back into the player.
func (p *Player) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	p.mu.Lock()
	id := p.nextObs
	p.nextObs++
	p.observers[id] = fn
	p.mu.Unlock()
	return func() {
		p.mu.Lock()
		delete(p.observers, id)
		p.mu.Unlock()
	}
}

func (p *Player) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

// SwitchPersona fetches the feed for persona+company and resets the view to
// the first item. A call superseded by a later switch returns ErrStale and
// leaves the player alone.
func (p *Player) SwitchPersona(ctx context.Context, personaID, companyID int64) error {
	if personaID <= 0 || companyID <= 0 {
		return common.NewValidationError("persona and company ids must be positive")
	}

	// Step 1: supersede whatever is in flight and clear the view
	p.mu.Lock()
	if p.state == FeedClosed {
		p.mu.Unlock()
		return ErrClosed
	}
	if p.fetchCancel != nil {
		p.fetchCancel()
	}
	p.gen++
	gen := p.gen
	key := feedKey{persona: personaID, company: companyID}
	fetchCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(p.ctx, cancel)
	p.fetchCancel = func() {
		stop()
		cancel()
	}
	p.key = key
	p.state = FeedLoading
	p.message = ""
	p.fetchErr = nil
	p.resetViewLocked(nil)
	p.all = nil
	p.cache = map[int64]*item{}
	notify := p.changedLocked()
	p.mu.Unlock()
	notify()

	p.log.Debug(ctx, "switching persona feed",
		logger.F("persona_id", personaID),
		logger.F("company_id", companyID),
	)

	// Step 2: fetch with no lock held
	rows, err := p.loader.Feed(fetchCtx, personaID, companyID)

	// Step 3: apply unless superseded
	p.mu.Lock()
	if p.gen != gen || p.key != key || p.state == FeedClosed {
		p.mu.Unlock()
		return ErrStale
	}
	p.fetchCancel()
	p.fetchCancel = nil

	switch {
	case err == nil && len(rows) > 0:
		p.state = FeedReady
		p.all = rows
		p.resetViewLocked(p.filtered())
	case err == nil || errors.Is(err, common.ErrEmptyFeed):
		p.state = FeedEmpty
		p.message = feed.EmptyFeedMessage
		if err != nil {
			p.message = err.Error()
		}
		err = nil
	default:
		p.state = FeedFailed
		p.fetchErr = err
		p.message = "Could not load the feed"
	}
	notify = p.changedLocked()
	p.mu.Unlock()
	notify()

	if err != nil {
		p.log.Warn(ctx, "feed fetch failed",
			logger.F("persona_id", personaID),
			logger.F("company_id", companyID),
			logger.Err(err),
		)
	}
	return err
}

// Retry re-fetches after a failed load. It is a no-op in any other state.
func (p *Player) Retry(ctx context.Context) error {
	p.mu.Lock()
	state, key := p.state, p.key
	p.mu.Unlock()
	if state != FeedFailed {
		return nil
	}
	return p.SwitchPersona(ctx, key.persona, key.company)
}

// Err is the last fetch failure, nil unless the feed is in FeedFailed.
func (p *Player) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fetchErr
}

// SetPlatformFilter shows only rows on at least one of platforms. No
// platforms means no filter. The view is re-derived from the loaded feed
// and the first item becomes active.
func (p *Player) SetPlatformFilter(platforms ...string) {
	p.mu.Lock()
	if p.state == FeedClosed {
		p.mu.Unlock()
		return
	}
	p.filter = nil
	if len(platforms) > 0 {
		p.filter = make(map[string]struct{}, len(platforms))
		for _, name := range platforms {
			p.filter[strings.ToLower(strings.TrimSpace(name))] = struct{}{}
		}
	}
	if p.state == FeedReady {
		p.resetViewLocked(p.filtered())
	}
	notify := p.changedLocked()
	p.mu.Unlock()
	notify()
}

// Scroll recomputes the active row from a scroll offset.
func (p *Player) Scroll(offset float64) int {
	p.mu.Lock()
	if len(p.view) == 0 || p.state == FeedClosed {
		p.mu.Unlock()
		return -1
	}
	idx := int(math.Round(offset / p.viewport))
	if idx < 0 {
		idx = 0
	}
	if idx > len(p.view)-1 {
		idx = len(p.view) - 1
	}
	changed := p.activateLocked(idx)
	notify := func() {}
	if changed {
		notify = p.changedLocked()
	}
	p.mu.Unlock()
	notify()
	return idx
}

// Play resumes the active item. Only the active item can play.
func (p *Player) Play() bool {
	p.mu.Lock()
	it := p.activeLocked()
	if it == nil || it.handle == nil || (it.state != PlaybackReady && it.state != PlaybackPaused) {
		p.mu.Unlock()
		return false
	}
	p.playLocked(it)
	notify := p.changedLocked()
	p.mu.Unlock()
	notify()
	return true
}

// Pause pauses the active item.
func (p *Player) Pause() bool {
	p.mu.Lock()
	it := p.activeLocked()
	if it == nil || it.state != PlaybackPlaying {
		p.mu.Unlock()
		return false
	}
	it.handle.Pause()
	it.state = PlaybackPaused
	notify := p.changedLocked()
	p.mu.Unlock()
	notify()
	return true
}

// Engage records a like, comment or share for the active item.
func (p *Player) Engage(ctx context.Context, kind common.EngagementType) error {
	if !kind.IsValid() {
		return common.NewInvalidEngagementTypeError(string(kind))
	}
	p.mu.Lock()
	it := p.activeLocked()
	p.mu.Unlock()
	if it == nil {
		return common.NewNotFoundError("no active item")
	}
	if p.tracker == nil {
		return nil
	}
	return p.tracker.RecordEngagement(ctx, it.row.ID, kind)
}

// Close cancels any fetch and unmounts everything. The player is unusable
// afterwards.
func (p *Player) Close() {
	p.mu.Lock()
	if p.state == FeedClosed {
		p.mu.Unlock()
		return
	}
	if p.fetchCancel != nil {
		p.fetchCancel()
		p.fetchCancel = nil
	}
	p.resetViewLocked(nil)
	p.state = FeedClosed
	notify := p.changedLocked()
	p.mu.Unlock()
	p.cancel()
	notify()
}

// --------- internals, p.mu held ---------

func (p *Player) filtered() []*item {
	view := make([]*item, 0, len(p.all))
	for _, row := range p.all {
		if !p.matches(row) {
			continue
		}
		it, ok := p.cache[row.ID]
		if !ok {
			it = newItem(row)
			p.cache[row.ID] = it
		}
		view = append(view, it)
	}
	return view
}

func (p *Player) matches(row feed.FeedRow) bool {
	if len(p.filter) == 0 {
		return true
	}
	for _, name := range row.Platforms {
		if _, ok := p.filter[strings.ToLower(name)]; ok {
			return true
		}
	}
	return false
}

// resetViewLocked swaps in a new view and activates its first row.
func (p *Player) resetViewLocked(view []*item) {
	p.activateLocked(-1)
	p.view = view
	if len(view) > 0 {
		p.activateLocked(0)
	}
}

// activateLocked moves the active slot to idx. The old item is paused and
// unmounted before the new one is mounted.
func (p *Player) activateLocked(idx int) bool {
	if idx == p.active && idx >= 0 && idx < len(p.view) {
		return false
	}
	if old := p.activeLocked(); old != nil {
		p.deactivateLocked(old)
	}
	p.active = idx
	if it := p.activeLocked(); it != nil {
		p.mountLocked(it)
	}
	return true
}

func (p *Player) activeLocked() *item {
	if p.active < 0 || p.active >= len(p.view) {
		return nil
	}
	return p.view[p.active]
}

func (p *Player) deactivateLocked(it *item) {
	if it.state == PlaybackError {
		// keep the fallback link on screen
		return
	}
	if it.handle != nil {
		it.handle.Pause()
		it.adapter.Unmount(it.handle)
		it.handle = nil
	}
	it.state = PlaybackPaused
}

func (p *Player) mountLocked(it *item) {
	if it.state == PlaybackError || p.embeds == nil {
		return
	}
	it.adapter = p.embeds.For(it.row.ContentURL)
	it.state = PlaybackLoading
	it.handle = it.adapter.Mount(p.ctx, it.container, it.row.ContentURL, embed.MountOptions{
		Autoplay: it.source == embed.SourceVideo,
		Poster:   it.row.ThumbnailURL,
		OnReady:  p.onReady,
		OnError:  p.onError,
	})
}

func (p *Player) playLocked(it *item) {
	it.handle.Play()
	it.state = PlaybackPlaying
	if it.viewed || p.tracker == nil {
		return
	}
	it.viewed = true
	id := it.row.ID
	go func() {
		if err := p.tracker.RecordEngagement(p.ctx, id, common.EngagementView); err != nil {
			p.log.Warn(p.ctx, "record view failed", logger.F("content_id", id), logger.Err(err))
		}
	}()
}

// itemForLocked finds the item a handle was mounted for. Callbacks from a
// handle that has since been replaced resolve to nil.
func (p *Player) itemForLocked(h *embed.Handle) *item {
	for _, it := range p.view {
		if it.handle == h {
			return it
		}
	}
	return nil
}

func (p *Player) onReady(h *embed.Handle) {
	p.mu.Lock()
	it := p.itemForLocked(h)
	if it == nil || it.state != PlaybackLoading {
		p.mu.Unlock()
		return
	}
	it.state = PlaybackReady
	// only native video autoplays, and only while active
	if it == p.activeLocked() && it.source == embed.SourceVideo {
		p.playLocked(it)
	}
	notify := p.changedLocked()
	p.mu.Unlock()
	notify()
}

func (p *Player) onError(h *embed.Handle, err error) {
	p.mu.Lock()
	it := p.itemForLocked(h)
	if it == nil {
		p.mu.Unlock()
		return
	}
	it.handle.Pause()
	it.state = PlaybackError
	it.err = err
	notify := p.changedLocked()
	p.mu.Unlock()

	p.log.Warn(p.ctx, "feed item failed to load",
		logger.F("content_id", it.row.ID),
		logger.Err(err),
	)
	notify()
}

// changedLocked bumps the sequence and returns a function that delivers the
// new snapshot. Call the result after unlocking.
func (p *Player) changedLocked() func() {
	p.seq++
	snap := p.snapshotLocked()
	fns := make([]func(Snapshot), 0, len(p.observers))
	ids := make([]int, 0, len(p.observers))
	for id := range p.observers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		fns = append(fns, p.observers[id])
	}
	return func() {
		for _, fn := range fns {
			fn(snap)
		}
	}
}

func (p *Player) snapshotLocked() Snapshot {
	s := Snapshot{
		Seq:       p.seq,
		Feed:      p.state,
		PersonaID: p.key.persona,
		CompanyID: p.key.company,
		Active:    p.active,
		Message:   p.message,
		Items:     make([]ItemView, len(p.view)),
		Total:     len(p.all),
	}
	for name := range p.filter {
		s.Filter = append(s.Filter, name)
	}
	sort.Strings(s.Filter)
	for i, it := range p.view {
		v := ItemView{
			ContentID: it.row.ID,
			Title:     it.row.Title,
			URL:       it.row.ContentURL,
			Source:    it.source,
			Platforms: append([]string(nil), it.row.Platforms...),
			State:     it.state,
			Active:    i == p.active,
			HTML:      it.container.HTML(),
		}
		if it.err != nil {
			v.Error = it.err.Error()
		}
		s.Items[i] = v
	}
	return s
}
