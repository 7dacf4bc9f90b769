package adapter

import (
	"context"
	"log/slog"

	checkoutapp "github.com/dwikikusuma/boutique-storefront/internal/checkout/app"
)

// LogOpener records the chat link. The buyer's client opens it from the confirm response.
type LogOpener struct {
	log *slog.Logger
}

var _ checkoutapp.Opener = (*LogOpener)(nil)

func NewLogOpener(log *slog.Logger) *LogOpener {
	return &LogOpener{log: log}
}

func (o *LogOpener) Open(ctx context.Context, sessionID, url string) error {
	o.log.InfoContext(ctx, "chat link ready", slog.String("session_id", sessionID), slog.Int("url_len", len(url)))
	return nil
}
