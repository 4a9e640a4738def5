// SPDX-License-Identifier: Unlicense OR MIT

package main

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"

	"github.com/cotsog/mir/internal/config"
	"github.com/cotsog/mir/io/event"
	"github.com/cotsog/mir/io/router"
	"github.com/cotsog/mir/io/trace"
	"github.com/cotsog/mir/scene"
)

// source produces events until its context is done.
type source interface {
	Run(ctx context.Context, emit func(e event.Event)) error
}

// daemon owns the scene and the router. All dispatching happens on
// the goroutine running dispatchLoop.
type daemon struct {
	logger *slog.Logger
	scene  *scene.List
	router *router.Router
	record *trace.Encoder

	delivered map[string]int
	dropped   map[router.Reason]int
}

func newDaemon(cfg config.Config, logger *slog.Logger) *daemon {
	d := &daemon{
		logger:    logger,
		delivered: make(map[string]int),
		dropped:   make(map[router.Reason]int),
	}
	var rects []*scene.Rect
	d.scene, rects = cfg.Scene(d.deliver)
	d.router = router.New(d.scene,
		router.WithLogger(logger.With("component", "router")),
		router.WithDropHook(func(e event.Event, why router.Reason) {
			d.dropped[why]++
		}),
	)
	for _, r := range rects {
		if r.Name == cfg.Focus {
			d.router.SetFocus(r)
		}
	}
	return d
}

func (d *daemon) deliver(s *scene.Rect, e event.Event) {
	d.delivered[s.Name]++
	d.logger.Debug("deliver", "surface", s.Name, "event", e)
}

// run dispatches the events of all sources until they are exhausted
// or ctx is done.
func (d *daemon) run(ctx context.Context, sources []source) error {
	events := make(chan event.Event, 64)
	g, gctx := errgroup.WithContext(ctx)
	for _, src := range sources {
		src := src
		g.Go(func() error {
			return src.Run(gctx, func(e event.Event) {
				select {
				case events <- e:
				case <-gctx.Done():
				}
			})
		})
	}
	d.router.Start()
	done := make(chan struct{})
	go func() {
		defer close(done)
		d.dispatchLoop(events)
	}()
	err := g.Wait()
	close(events)
	<-done
	d.router.Stop()
	d.report()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	if d.record != nil {
		if ferr := d.record.Flush(); err == nil {
			err = ferr
		}
	}
	return err
}

func (d *daemon) dispatchLoop(events <-chan event.Event) {
	for e := range events {
		if d.record != nil {
			if err := d.record.Encode(e); err != nil {
				d.logger.Error("record", "err", err)
				d.record = nil
			}
		}
		ok := d.router.Dispatch(e)
		d.logger.Debug("dispatch", "event", e, "delivered", ok)
	}
}

// report logs the delivery and drop counts.
func (d *daemon) report() {
	names := maps.Keys(d.delivered)
	slices.Sort(names)
	for _, n := range names {
		d.logger.Info("delivered", "surface", n, "events", d.delivered[n])
	}
	reasons := maps.Keys(d.dropped)
	slices.Sort(reasons)
	for _, r := range reasons {
		d.logger.Info("dropped", "reason", r, "events", d.dropped[r])
	}
}

func (d *daemon) close() {
	d.router.Close()
}

// replay is a source reading a recorded trace.
type replay struct {
	r io.Reader
}

func (p replay) Run(ctx context.Context, emit func(e event.Event)) error {
	dec := trace.NewDecoder(p.r)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		e, err := dec.Decode()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		emit(e)
	}
}
