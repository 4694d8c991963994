package services

import (
	"context"
	"log"
	"time"

	"despacho_app_go/models"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	feedReconnectMin = time.Second
	feedReconnectMax = 30 * time.Second
)

// PromotionsFeed is the realtime subscription to the remote promotions
// collection. The remote side pushes full snapshots of the collection;
// snapshot order relative to local mutations is not guaranteed and the
// last snapshot wins.
type PromotionsFeed struct {
	URL string
}

func NewPromotionsFeed(url string) *PromotionsFeed {
	return &PromotionsFeed{URL: url}
}

// Subscribe connects to the feed and invokes onSnapshot for every pushed
// promotions snapshot. It reconnects with backoff until ctx is
// cancelled. Returns immediately; the subscription runs in its own
// goroutine.
func (f *PromotionsFeed) Subscribe(ctx context.Context, onSnapshot func([]models.Promotion)) {
	if f.URL == "" {
		log.Println("[INFO] No promotions feed URL configured, realtime updates disabled")
		return
	}

	go func() {
		backoff := feedReconnectMin
		for {
			if err := f.listen(ctx, onSnapshot); err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Printf("[WARNING] Promotions feed disconnected: %v (reconnecting in %v)", err, backoff)
			}

			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > feedReconnectMax {
				backoff = feedReconnectMax
			}
		}
	}()
}

func (f *PromotionsFeed) listen(ctx context.Context, onSnapshot func([]models.Promotion)) error {
	conn, _, err := websocket.Dial(ctx, f.URL, nil)
	if err != nil {
		return err
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	log.Printf("Promotions feed connected (%s)", f.URL)

	for {
		var snapshot []models.Promotion
		if err := wsjson.Read(ctx, conn, &snapshot); err != nil {
			return err
		}
		onSnapshot(snapshot)
	}
}
