package main

import (
	"context"
	"fmt"
	"time"

	"github.com/odvcencio/dereference/cache"
)

var demoContent = map[string]cache.Available{
	"1": {ID: "1", Name: "Luke Skywalker", Payload: []string{"A New Hope", "The Empire Strikes Back"}},
	"2": {ID: "2", Name: "C-3PO", Payload: []string{"A New Hope", "The Phantom Menace"}},
	"3": {ID: "3", Name: "R2-D2", Payload: []string{"Return of the Jedi"}},
	"4": {ID: "4", Name: "Darth Vader", Payload: []string{"A New Hope", "Revenge of the Sith"}},
	// Stored under the wrong id so the client classifies it as invalid.
	"5": {ID: "50", Name: "Leia Organa"},
}

// catalog is an in-memory fetch boundary with artificial latency.
type catalog struct {
	content map[string]cache.Available
	latency time.Duration
}

func newCatalog(content map[string]cache.Available, latency time.Duration) *catalog {
	return &catalog{content: content, latency: latency}
}

func (c *catalog) Fetch(ctx context.Context, key string) (cache.Entry, error) {
	if c.latency > 0 {
		timer := time.NewTimer(c.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	entry, ok := c.content[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", cache.ErrNotFound, key)
	}
	return entry, nil
}
