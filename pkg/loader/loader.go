package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/legodom/lego/pkg/component"
)

// DefaultMaxSize caps the size of a loaded component source.
const DefaultMaxSize = 1 << 20

// ErrTooLarge is returned when a source exceeds the loader's size limit.
var ErrTooLarge = errors.New("loader: component source too large")

// Loader fetches single-file component source by tag. A missing component
// yields "" and a nil error.
type Loader interface {
	Load(ctx context.Context, tag string) (string, error)
}

// Func adapts l to the component manager's loader callback.
func Func(l Loader) component.LoaderFunc { return l.Load }

// Chain tries each loader in order and returns the first non-empty source.
// Errors stop the chain.
func Chain(loaders ...Loader) component.LoaderFunc {
	return func(ctx context.Context, tag string) (string, error) {
		for _, l := range loaders {
			src, err := l.Load(ctx, tag)
			if err != nil || src != "" {
				return src, err
			}
		}
		return "", nil
	}
}

// Resolve builds a loader from fn, which maps a tag to either component
// source or a location. Locations (http(s) URLs, or paths ending in the
// component extension) are fetched with fetch; anything else is returned
// as source.
func Resolve(fn func(tag string) string, fetch *HTTP) component.LoaderFunc {
	return func(ctx context.Context, tag string) (string, error) {
		v := strings.TrimSpace(fn(tag))
		if v == "" || !IsLocation(v) {
			return v, nil
		}
		if fetch == nil {
			return "", fmt.Errorf("loader: %s resolved to %s but no fetcher is configured", tag, v)
		}
		return fetch.Fetch(ctx, v)
	}
}

// IsLocation reports whether s names a place to fetch source from rather
// than being source itself.
func IsLocation(s string) bool {
	if strings.ContainsAny(s, "<\n") {
		return false
	}
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") || strings.HasSuffix(s, ".lego")
}

// readLimited reads r, failing if it holds more than limit bytes.
func readLimited(r io.Reader, limit int64) (string, error) {
	b, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return "", err
	}
	if int64(len(b)) > limit {
		return "", ErrTooLarge
	}
	return string(b), nil
}
