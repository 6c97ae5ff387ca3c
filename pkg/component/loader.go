package component

import (
	"context"
	"slices"

	"github.com/agnivade/levenshtein"

	"github.com/legodom/lego/internal/errors"
	"github.com/legodom/lego/pkg/sfc"
)

// LoaderFunc fetches the single-file component source for tag. An empty
// source with a nil error means the tag is not a component.
type LoaderFunc func(ctx context.Context, tag string) (string, error)

// unknown handles a hyphenated element with no definition. With a loader
// the tag is requested once; otherwise a warning naming the closest
// registered tag is logged once.
func (m *Manager) unknown(tag string) {
	if m.cfg.Loader == nil {
		if m.warned[tag] {
			return
		}
		m.warned[tag] = true
		attrs := []any{"tag", tag}
		if s := m.Suggest(tag); s != "" {
			attrs = append(attrs, "suggestion", s)
		}
		m.logger.Warn("unknown component", attrs...)
		return
	}
	if m.requested[tag] {
		return
	}
	m.requested[tag] = true

	load := func() (string, error) {
		ctx, cancel := context.WithTimeout(context.Background(), m.cfg.LoadTimeout)
		defer cancel()
		return m.cfg.Loader(ctx, tag)
	}
	if m.cfg.Post == nil {
		src, err := load()
		m.loaded(tag, src, err)
		return
	}
	go func() {
		src, err := load()
		if !m.cfg.Post(func() { m.loaded(tag, src, err) }) {
			m.logger.Debug("component load dropped", "tag", tag)
		}
	}()
}

func (m *Manager) loaded(tag, src string, err error) {
	if err != nil {
		m.logger.Error("component load failed", "tag", tag, "error", errors.New("L050").Wrap(err))
		return
	}
	if src == "" {
		m.logger.Warn("component loader returned no source", "tag", tag)
		return
	}
	f, err := sfc.Parse(src, tag+sfc.Ext)
	if err != nil {
		m.logger.Error("component load failed", "tag", tag, "error", err)
		return
	}
	if err := m.Define(FromSFC(f)); err != nil {
		m.logger.Error("component load failed", "tag", tag, "error", err)
		return
	}
	m.logger.Info("component loaded", "tag", tag)
}

// Suggest returns the registered tag closest to tag by edit distance, or
// "" when none is close enough.
func (m *Manager) Suggest(tag string) string {
	limit := max(2, len(tag)/3)
	best, bestDist := "", limit+1
	for _, t := range slices.Sorted(slices.Values(m.cfg.Registry.Tags())) {
		if d := levenshtein.ComputeDistance(tag, t); d < bestDist {
			best, bestDist = t, d
		}
	}
	return best
}
