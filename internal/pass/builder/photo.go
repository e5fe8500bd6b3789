package builder

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"campuspass/pkg/requestcontext"
)

// maxPhotoBytes caps how much of a photo response is read.
const maxPhotoBytes = 5 << 20

// defaultPhotoTimeout bounds a single photo fetch.
const defaultPhotoTimeout = 10 * time.Second

// PhotoFetcher retrieves subject photos over HTTP with an optional Redis
// cache in front. Every failure path degrades to a generated placeholder
// image; fetching a photo never fails a pass build.
type PhotoFetcher struct {
	client  *http.Client
	cache   *redis.Client
	ttl     time.Duration
	timeout time.Duration
	logger  *slog.Logger
}

// NewPhotoFetcher builds a fetcher. cache may be nil, which disables
// caching; timeout and ttl fall back to defaults when zero.
func NewPhotoFetcher(client *http.Client, cache *redis.Client, ttl, timeout time.Duration, logger *slog.Logger) *PhotoFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if timeout == 0 {
		timeout = defaultPhotoTimeout
	}
	return &PhotoFetcher{
		client:  client,
		cache:   cache,
		ttl:     ttl,
		timeout: timeout,
		logger:  logger,
	}
}

// Fetch returns the photo at url, or the placeholder when url is empty or
// anything goes wrong. The returned bool reports whether a real photo came
// back.
func (f *PhotoFetcher) Fetch(ctx context.Context, url string) ([]byte, bool) {
	if url == "" {
		return placeholderPhoto(), false
	}

	if photo := f.cacheGet(ctx, url); photo != nil {
		return photo, true
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		f.logger.WarnContext(ctx, "photo request build failed, using placeholder",
			"request_id", requestcontext.RequestID(ctx),
			"photo_url", url,
			"error", err,
		)
		return placeholderPhoto(), false
	}

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.WarnContext(ctx, "photo fetch failed, using placeholder",
			"request_id", requestcontext.RequestID(ctx),
			"photo_url", url,
			"error", err,
		)
		return placeholderPhoto(), false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		f.logger.WarnContext(ctx, "photo fetch returned non-200, using placeholder",
			"request_id", requestcontext.RequestID(ctx),
			"photo_url", url,
			"status", resp.StatusCode,
		)
		return placeholderPhoto(), false
	}

	photo, err := io.ReadAll(io.LimitReader(resp.Body, maxPhotoBytes))
	if err != nil || len(photo) == 0 {
		f.logger.WarnContext(ctx, "photo read failed, using placeholder",
			"request_id", requestcontext.RequestID(ctx),
			"photo_url", url,
			"error", err,
		)
		return placeholderPhoto(), false
	}

	f.cacheSet(ctx, url, photo)
	return photo, true
}

// cacheGet reads through the Redis cache; a cache error is logged and
// treated as a miss so Redis being down never blocks a build.
func (f *PhotoFetcher) cacheGet(ctx context.Context, url string) []byte {
	if f.cache == nil {
		return nil
	}
	photo, err := f.cache.Get(ctx, photoCacheKey(url)).Bytes()
	if err != nil {
		if err != redis.Nil {
			f.logger.WarnContext(ctx, "photo cache read failed",
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
		}
		return nil
	}
	return photo
}

func (f *PhotoFetcher) cacheSet(ctx context.Context, url string, photo []byte) {
	if f.cache == nil {
		return
	}
	ttl := f.ttl
	if ttl == 0 {
		ttl = 15 * time.Minute
	}
	if err := f.cache.Set(ctx, photoCacheKey(url), photo, ttl).Err(); err != nil {
		f.logger.WarnContext(ctx, "photo cache write failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
}

func photoCacheKey(url string) string {
	return "campuspass:photo:" + url
}

// placeholderPhoto renders a neutral grey square used whenever a subject
// photo is missing or unreachable.
func placeholderPhoto() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 90, 120))
	grey := color.RGBA{R: 0xBD, G: 0xBD, B: 0xBD, A: 0xFF}
	for y := img.Rect.Min.Y; y < img.Rect.Max.Y; y++ {
		for x := img.Rect.Min.X; x < img.Rect.Max.X; x++ {
			img.SetRGBA(x, y, grey)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}
