// SPDX-License-Identifier: Unlicense OR MIT

package router

import (
	"context"
	"log/slog"
)

// nopHandler is a slog.Handler that discards all records. Enabled
// returns false so callers skip building attributes.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

func (r *Router) debugEnabled() bool {
	return r.logger.Enabled(context.Background(), slog.LevelDebug)
}
