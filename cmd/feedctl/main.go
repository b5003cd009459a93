// Command feedctl drives the feed player headlessly against a running
// content service: it loads a persona feed, walks it one screen at a time
// and prints every player snapshot as a JSON line.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"personafeed/internal/config"
	"personafeed/internal/embed"
	"personafeed/internal/feedclient"
	"personafeed/internal/logger"
	"personafeed/internal/player"

	"github.com/goccy/go-json"
)

const viewport = 1000.0

func main() {
	cfg := config.LoadConfig()

	api := flag.String("api", "http://localhost:"+cfg.Server.Port+"/api/v1", "content service base URL")
	token := flag.String("token", os.Getenv("FEED_TOKEN"), "bearer token")
	personaID := flag.Int64("persona", 0, "persona id")
	companyID := flag.Int64("company", 0, "company id")
	platforms := flag.String("platforms", "", "comma separated platform filter")
	dwell := flag.Duration("dwell", 3*time.Second, "time spent on each item")
	flag.Parse()

	lg, err := logger.New(cfg.Logging.Level, "console")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer lg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, lg, cfg, *api, *token, *personaID, *companyID, *platforms, *dwell); err != nil {
		lg.Error(ctx, "feedctl failed", logger.Err(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, lg logger.Logger, cfg *config.Config, api, token string, personaID, companyID int64, platforms string, dwell time.Duration) error {
	client := feedclient.New(api,
		feedclient.WithToken(token),
		feedclient.WithEngagementRate(200*time.Millisecond, 5),
	)
	prober := embed.NewHTTPProber(&http.Client{Timeout: cfg.Embed.ReadyTimeout}, lg)
	registry := embed.NewRegistry(embed.NewPage(), prober, cfg.Embed.ReadyTimeout, lg)

	p := player.New(client, registry, player.Options{
		ViewportHeight: viewport,
		Tracker:        client,
		Log:            lg,
	})
	defer p.Close()

	enc := json.NewEncoder(os.Stdout)
	var (
		mu   sync.Mutex
		last uint64
	)
	// snapshots arrive from adapter goroutines too
	unsubscribe := p.Subscribe(func(s player.Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		if s.Seq <= last {
			return
		}
		last = s.Seq
		_ = enc.Encode(s)
	})
	defer unsubscribe()

	if err := p.SwitchPersona(ctx, personaID, companyID); err != nil {
		return err
	}
	if platforms != "" {
		p.SetPlatformFilter(strings.Split(platforms, ",")...)
	}

	snap := p.Snapshot()
	switch snap.Feed {
	case player.FeedEmpty:
		lg.Info(ctx, snap.Message)
		return nil
	case player.FeedReady:
	default:
		return fmt.Errorf("feed is %s", snap.Feed)
	}

	for i := range snap.Items {
		p.Scroll(float64(i) * viewport)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(dwell):
		}
	}
	return nil
}
