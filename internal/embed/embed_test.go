package embed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"personafeed/internal/common"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type outcome struct {
	ready bool
	err   error
}

// collect returns mount options that push every callback into a channel.
func collect() (MountOptions, chan outcome, *atomic.Int32) {
	ch := make(chan outcome, 4)
	calls := &atomic.Int32{}
	return MountOptions{
		Autoplay: true,
		OnReady: func(*Handle) {
			calls.Add(1)
			ch <- outcome{ready: true}
		},
		OnError: func(_ *Handle, err error) {
			calls.Add(1)
			ch <- outcome{err: err}
		},
	}, ch, calls
}

func wait(t *testing.T, ch chan outcome) outcome {
	t.Helper()
	select {
	case o := <-ch:
		return o
	case <-time.After(2 * time.Second):
		t.Fatal("no callback")
	}
	return outcome{}
}

func okProber() Prober {
	return ProbeFunc(func(context.Context, string, string) error { return nil })
}

func TestSelect(t *testing.T) {
	tests := map[string]SourceType{
		"https://www.tiktok.com/@brand/video/7301":   SourceTikTok,
		"https://vm.TikTok.com/ZMabc/":               SourceTikTok,
		"https://www.instagram.com/p/Cx1/":           SourceInstagram,
		"https://cdn.example.com/clips/launch.mp4":   SourceVideo,
		"":                                           SourceVideo,
	}
	for in, want := range tests {
		assert.Equal(t, want, Select(in), in)
	}
}

func TestMount_ReadyFiresOnce(t *testing.T) {
	reg := NewRegistry(nil, okProber(), time.Second, nil)
	c := NewContainer()
	opts, ch, calls := collect()

	h := reg.For("https://www.tiktok.com/@brand/video/7301").Mount(context.Background(), c, "https://www.tiktok.com/@brand/video/7301", opts)

	o := wait(t, ch)
	assert.True(t, o.ready)
	<-h.Done()
	time.Sleep(20 * time.Millisecond)
	assert.EqualValues(t, 1, calls.Load())

	nodes := c.Nodes()
	require.Len(t, nodes, 1)
	assert.Equal(t, "blockquote", nodes[0].Tag)
	assert.Equal(t, "tiktok-embed", nodes[0].Attr("class"))
	assert.Equal(t, "7301", nodes[0].Attr("data-video-id"))
}

func TestMount_ScriptInjectedOncePerPage(t *testing.T) {
	reg := NewRegistry(NewPage(), okProber(), time.Second, nil)

	for i := 0; i < 3; i++ {
		opts, ch, _ := collect()
		reg.For("https://instagram.com/p/x").Mount(context.Background(), NewContainer(), "https://instagram.com/p/x", opts)
		wait(t, ch)
	}
	opts, ch, _ := collect()
	reg.For("https://tiktok.com/v").Mount(context.Background(), NewContainer(), "https://tiktok.com/v", opts)
	wait(t, ch)

	assert.Equal(t, []string{InstagramScript, TikTokScript}, reg.Page().Scripts())
}

func TestMount_NativeVideoHasNoScript(t *testing.T) {
	reg := NewRegistry(nil, okProber(), time.Second, nil)
	c := NewContainer()
	opts, ch, _ := collect()
	opts.Poster = "https://cdn.example.com/p.jpg"

	reg.For("https://cdn.example.com/a.mp4").Mount(context.Background(), c, "https://cdn.example.com/a.mp4", opts)
	wait(t, ch)

	assert.Empty(t, reg.Page().Scripts())
	html := c.HTML()
	assert.Contains(t, html, "<video")
	assert.Contains(t, html, " autoplay")
	assert.Contains(t, html, `poster="https://cdn.example.com/p.jpg"`)
}

func TestMount_TimeoutBecomesErrorWithFallback(t *testing.T) {
	hang := ProbeFunc(func(ctx context.Context, _, _ string) error {
		<-ctx.Done()
		return ctx.Err()
	})
	reg := NewRegistry(nil, hang, 50*time.Millisecond, nil)
	c := NewContainer()
	opts, ch, calls := collect()

	reg.For("https://www.instagram.com/p/x/").Mount(context.Background(), c, "https://www.instagram.com/p/x/", opts)

	o := wait(t, ch)
	require.Error(t, o.err)
	assert.True(t, errors.Is(o.err, common.ErrEmbed))
	assert.True(t, errors.Is(o.err, ErrReadyTimeout))
	assert.EqualValues(t, 1, calls.Load())

	nodes := c.Nodes()
	require.Len(t, nodes, 1)
	assert.Equal(t, "a", nodes[0].Tag)
	assert.Equal(t, "embed-fallback", nodes[0].Attr("class"))
	assert.Equal(t, "https://www.instagram.com/p/x/", nodes[0].Attr("href"))
}

func TestMount_IgnoresProbeThatIgnoresContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	stuck := ProbeFunc(func(context.Context, string, string) error {
		<-release
		return nil
	})
	reg := NewRegistry(nil, stuck, 30*time.Millisecond, nil)
	opts, ch, _ := collect()

	reg.For("https://cdn.example.com/a.mp4").Mount(context.Background(), NewContainer(), "https://cdn.example.com/a.mp4", opts)

	o := wait(t, ch)
	assert.True(t, errors.Is(o.err, ErrReadyTimeout))
}

func TestUnmount_SuppressesPendingCallbacks(t *testing.T) {
	release := make(chan struct{})
	probe := ProbeFunc(func(context.Context, string, string) error {
		<-release
		return nil
	})
	reg := NewRegistry(nil, probe, time.Second, nil)
	c := NewContainer()
	opts, ch, calls := collect()

	a := reg.For("https://cdn.example.com/a.mp4")
	h := a.Mount(context.Background(), c, "https://cdn.example.com/a.mp4", opts)
	h.Play()
	a.Unmount(h)
	close(release)

	select {
	case o := <-ch:
		t.Fatalf("unexpected callback after unmount: %+v", o)
	case <-time.After(100 * time.Millisecond):
	}
	assert.Zero(t, calls.Load())
	assert.True(t, h.Unmounted())
	assert.False(t, h.Playing())
	assert.Zero(t, c.Len())

	h.Play()
	assert.False(t, h.Playing())
}

func TestMount_RemountAfterErrorReplacesFallback(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	probe := ProbeFunc(func(context.Context, string, string) error {
		if fail.Load() {
			return errors.New("gone")
		}
		return nil
	})
	reg := NewRegistry(nil, probe, time.Second, nil)
	c := NewContainer()

	opts, ch, _ := collect()
	reg.For("https://www.tiktok.com/@a/video/1").Mount(context.Background(), c, "https://www.tiktok.com/@a/video/1", opts)
	require.Error(t, wait(t, ch).err)
	require.Equal(t, "a", c.Nodes()[0].Tag)

	fail.Store(false)
	opts, ch, _ = collect()
	reg.For("https://www.tiktok.com/@a/video/2").Mount(context.Background(), c, "https://www.tiktok.com/@a/video/2", opts)
	require.True(t, wait(t, ch).ready)

	nodes := c.Nodes()
	require.Len(t, nodes, 1)
	assert.Equal(t, "2", nodes[0].Attr("data-video-id"))
}

func TestUnmount_LeavesNewerMountInPlace(t *testing.T) {
	reg := NewRegistry(nil, okProber(), time.Second, nil)
	c := NewContainer()
	a := reg.For("https://cdn.example.com/a.mp4")

	opts, ch, _ := collect()
	old := a.Mount(context.Background(), c, "https://cdn.example.com/a.mp4", opts)
	wait(t, ch)
	opts, ch, _ = collect()
	cur := a.Mount(context.Background(), c, "https://cdn.example.com/b.mp4", opts)
	wait(t, ch)

	a.Unmount(old)

	require.Equal(t, 1, c.Len())
	assert.Same(t, cur.Node(), c.Nodes()[0])
}

func TestTikTokProbeUsesOEmbed(t *testing.T) {
	var got string
	probe := ProbeFunc(func(_ context.Context, method, target string) error {
		got = method + " " + target
		return nil
	})
	reg := NewRegistry(nil, probe, time.Second, nil)
	opts, ch, _ := collect()
	src := "https://www.tiktok.com/@brand/video/7301"

	reg.For(src).Mount(context.Background(), NewContainer(), src, opts)
	wait(t, ch)

	assert.Equal(t, "GET "+tiktokOEmbed+url.QueryEscape(src), got)
}

func TestNodeHTML_EscapesAttributes(t *testing.T) {
	html := fallbackNode(`https://x.test/?a=1&b="2"`).HTML()
	assert.True(t, strings.HasPrefix(html, `<a class="embed-fallback" href="https://x.test/?a=1&amp;b=&#34;2&#34;"`))
	assert.True(t, strings.HasSuffix(html, ">Open original</a>"))
}

func TestHTTPProber(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.mp4" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		assert.Equal(t, http.MethodHead, r.Method)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewHTTPProber(srv.Client(), nil)

	require.NoError(t, p.Probe(context.Background(), http.MethodHead, srv.URL+"/a.mp4"))

	err := p.Probe(context.Background(), http.MethodHead, srv.URL+"/missing.mp4")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.Code)

	assert.Error(t, p.Probe(context.Background(), http.MethodHead, "not a url"))
}

func TestHTTPProber_BreakerOpensOnUnreachableHost(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	target := srv.URL + "/a.mp4"
	host := srv.Listener.Addr().String()
	srv.Close()

	p := NewHTTPProber(&http.Client{Timeout: time.Second}, nil)
	for i := 0; i < 5; i++ {
		require.Error(t, p.Probe(context.Background(), http.MethodHead, target))
	}

	err := p.Probe(context.Background(), http.MethodHead, target)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, "open", p.State(host))
}

func TestHTTPProber_NotFoundDoesNotTrip(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	p := NewHTTPProber(srv.Client(), nil)
	for i := 0; i < 8; i++ {
		err := p.Probe(context.Background(), http.MethodHead, srv.URL+"/gone.mp4")
		var se *StatusError
		require.ErrorAs(t, err, &se)
	}
	assert.Equal(t, "closed", p.State(srv.Listener.Addr().String()))
}
