// Package cache tracks per-route data versions so HTTP caches and clients
// can detect staleness after a mutation. Invalidation is advisory:
// correctness of the stored data never depends on it.
package cache

import (
	"log/slog"
	"sync"
)

// Invalidator is the collaborator services call after a successful
// mutation. Calls are fire-and-forget.
type Invalidator interface {
	Invalidate(route string)
}

// RouteVersions is an in-process Invalidator keeping a version counter per
// route path. Handlers expose the counter as an ETag-style header.
type RouteVersions struct {
	mu       sync.RWMutex
	versions map[string]uint64
	logger   *slog.Logger
}

func NewRouteVersions(logger *slog.Logger) *RouteVersions {
	return &RouteVersions{
		versions: make(map[string]uint64),
		logger:   logger,
	}
}

func (c *RouteVersions) Invalidate(route string) {
	c.mu.Lock()
	c.versions[route]++
	version := c.versions[route]
	c.mu.Unlock()

	c.logger.Debug("route invalidated", "route", route, "version", version)
}

// Version returns the current version for a route; zero means the route
// has never been invalidated.
func (c *RouteVersions) Version(route string) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.versions[route]
}
