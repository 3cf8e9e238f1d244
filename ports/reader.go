package ports

import (
	"context"
	"sort"

	"nocturna/domain/core"
	"nocturna/domain/series"
)

// SeriesReader provides read-only access to daily series data for the
// analysis layer. Adapters own all file-format concerns; the bundle they
// return is plain domain data.
type SeriesReader interface {
	Read(ctx context.Context) (*SeriesBundle, error)
}

// SeriesBundle is one loaded data source: every value column keyed by name.
type SeriesBundle struct {
	Source string
	Series map[core.SeriesKey]series.Series
}

// Keys returns the series keys in stable sorted order.
func (b *SeriesBundle) Keys() []core.SeriesKey {
	keys := make([]core.SeriesKey, 0, len(b.Series))
	for k := range b.Series {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Get returns the series for a key, or nil when absent.
func (b *SeriesBundle) Get(key core.SeriesKey) series.Series {
	if b == nil {
		return nil
	}
	return b.Series[key]
}
