package biz

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// ThumbnailGenerator produces a thumbnail URL for a freshly uploaded
// video. Server-side frame extraction is out of reach without a
// transcoding pipeline, so the default implementation stores a colored
// placeholder.
type ThumbnailGenerator interface {
	Generate(ctx context.Context, ownerID int64) (string, error)
}

var placeholderColors = []string{"FF6B6B", "4ECDC4", "45B7D1", "F7B731", "5F27CD"}

// PlaceholderThumbnailer writes a small SVG rectangle in a random brand
// color and returns a presigned URL for it.
type PlaceholderThumbnailer struct {
	store      ObjectStore
	presignTTL time.Duration
}

func NewPlaceholderThumbnailer(store ObjectStore, presignTTL time.Duration) *PlaceholderThumbnailer {
	if presignTTL <= 0 {
		presignTTL = 7 * 24 * time.Hour
	}
	return &PlaceholderThumbnailer{store: store, presignTTL: presignTTL}
}

func (g *PlaceholderThumbnailer) Generate(ctx context.Context, ownerID int64) (string, error) {
	color := placeholderColors[rand.Intn(len(placeholderColors))]
	svg := fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" width="640" height="360"><rect width="100%%" height="100%%" fill="#%s"/></svg>`,
		color)

	key, err := NewKey(KindThumbnail, ownerID, "svg")
	if err != nil {
		return "", err
	}
	reader := strings.NewReader(svg)
	if err := g.store.Put(ctx, key, reader, int64(len(svg)), "image/svg+xml"); err != nil {
		return "", err
	}
	return g.store.PresignedURL(ctx, key, g.presignTTL)
}
