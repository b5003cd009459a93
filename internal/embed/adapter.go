package embed

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"personafeed/internal/common"
	"personafeed/internal/logger"
)

const DefaultReadyTimeout = 5 * time.Second

// ErrReadyTimeout is reported when a provider neither loads nor fails in time.
var ErrReadyTimeout = errors.New("embed did not become ready in time")

type MountOptions struct {
	Autoplay bool
	Poster   string

	// Exactly one of these fires per mount, unless the handle is unmounted
	// first. They run on the adapter's goroutine and never under its locks.
	OnReady func(h *Handle)
	OnError func(h *Handle, err error)
}

type Adapter interface {
	Source() SourceType
	Mount(ctx context.Context, c *Container, sourceURL string, opts MountOptions) *Handle
	Unmount(h *Handle)
}

const (
	handlePending int32 = iota
	handleSettled
	handleUnmounted
)

var handleSeq atomic.Uint64

// Handle is one mount of one URL into one container.
type Handle struct {
	ID     uint64
	Source SourceType
	URL    string

	container *Container
	node      atomic.Pointer[Node]
	cancel    context.CancelFunc
	state     atomic.Int32
	unmounted atomic.Bool
	playing   atomic.Bool
	done      chan struct{}
}

func newHandle(src SourceType, url string, c *Container, cancel context.CancelFunc) *Handle {
	return &Handle{
		ID:        handleSeq.Add(1),
		Source:    src,
		URL:       url,
		container: c,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
}

// settle runs fn if nothing else has settled or unmounted the handle.
func (h *Handle) settle(fn func()) bool {
	if !h.state.CompareAndSwap(handlePending, handleSettled) {
		return false
	}
	fn()
	close(h.done)
	return true
}

// Done is closed once ready or error has been delivered.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

func (h *Handle) Unmounted() bool {
	return h.unmounted.Load()
}

func (h *Handle) Play() {
	if h.unmounted.Load() {
		return
	}
	h.playing.Store(true)
}

func (h *Handle) Pause() {
	h.playing.Store(false)
}

func (h *Handle) Playing() bool {
	return h.playing.Load()
}

// provider implements Adapter for every source. The differences between
// sources are the markup, the script and the readiness probe.
type provider struct {
	source  SourceType
	script  string
	page    *Page
	prober  Prober
	timeout time.Duration
	log     logger.Logger

	build func(sourceURL string, opts MountOptions) *Node
	probe func(ctx context.Context, p Prober, sourceURL string) error
}

func (a *provider) Source() SourceType {
	return a.source
}

func (a *provider) Mount(ctx context.Context, c *Container, sourceURL string, opts MountOptions) *Handle {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	h := newHandle(a.source, sourceURL, c, cancel)

	if a.script != "" {
		a.page.InjectScript(a.script)
	}
	// A remount after an error replaces the fallback link rather than
	// stacking a second element next to it.
	node := a.build(sourceURL, opts)
	h.node.Store(node)
	c.Replace(node)

	go a.await(ctx, h, opts)
	return h
}

func (a *provider) await(ctx context.Context, h *Handle, opts MountOptions) {
	defer h.cancel()

	errc := make(chan error, 1)
	go func() {
		errc <- a.probe(ctx, a.prober, h.URL)
	}()

	var err error
	select {
	case err = <-errc:
	case <-ctx.Done():
		err = ctx.Err()
	}
	if h.unmounted.Load() {
		return
	}
	if errors.Is(err, context.DeadlineExceeded) {
		err = ErrReadyTimeout
	}

	if err == nil {
		h.settle(func() {
			if opts.OnReady != nil {
				opts.OnReady(h)
			}
		})
		return
	}

	embedErr := common.NewEmbedError(string(a.source), err)
	h.settle(func() {
		fb := fallbackNode(h.URL)
		h.node.Store(fb)
		h.container.Replace(fb)
		a.log.Warn(ctx, "embed failed, rendering fallback",
			logger.F("source", a.source),
			logger.F("url", h.URL),
			logger.Err(err),
		)
		if opts.OnError != nil {
			opts.OnError(h, embedErr)
		}
	})
}

// Unmount stops the handle. Callbacks that have not fired yet never will.
func (a *provider) Unmount(h *Handle) {
	if h == nil || !h.unmounted.CompareAndSwap(false, true) {
		return
	}
	h.playing.Store(false)
	h.state.CompareAndSwap(handlePending, handleUnmounted)
	h.cancel()
	// The container may already belong to a newer mount.
	h.container.Remove(h.node.Load())
}

// Node is the element currently rendered for this handle.
func (h *Handle) Node() *Node {
	return h.node.Load()
}

func fallbackNode(sourceURL string) *Node {
	link := NewNode("a", map[string]string{
		"class":  "embed-fallback",
		"href":   sourceURL,
		"target": "_blank",
		"rel":    "noopener noreferrer",
	})
	link.Text = "Open original"
	return link
}
