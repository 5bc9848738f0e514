package main

import "log/slog"

// slogFromHandler wraps a configured [log/slog.Handler] into a
// [*slog.Logger], the shape every library package in this module
// (modelmanager, serializer, instancegen) accepts via its WithLogger
// option.
func slogFromHandler(h slog.Handler) *slog.Logger {
	return slog.New(h)
}
