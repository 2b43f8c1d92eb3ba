package simulate

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/nullishamy/dakko/internal/config"
	"github.com/nullishamy/dakko/internal/engine"
	"github.com/nullishamy/dakko/internal/engine/batch"
	"github.com/nullishamy/dakko/internal/logging"
)

// initLabel is the event label of the window emitted at construction.
const initLabel = "init"

// Frame is one window emitted by the engine.
type Frame struct {
	// Step is the 1-based index of the event that caused the emission, 0 for construction.
	Step      int              `json:"step"`
	Event     string           `json:"event"`
	Window    engine.Window    `json:"window"`
	Direction engine.Direction `json:"direction"`
	Mode      engine.SizeMode  `json:"mode"`
}

// Result is the outcome of running one trace.
type Result struct {
	Name         string          `json:"name"`
	Frames       []Frame         `json:"frames"`
	Final        engine.Window   `json:"final"`
	Items        int             `json:"items"`
	Mode         engine.SizeMode `json:"mode"`
	EstimateSize float64         `json:"estimate_size"`
}

// runner holds the state of a single trace run. It is confined to one goroutine.
type runner struct {
	trace  *Trace
	eng    *engine.Engine[ulid.ULID]
	logger zerolog.Logger

	keys  []ulid.ULID
	sizes map[ulid.ULID]float64
	// created counts every item ever generated and drives the size cycle.
	created int

	step   int
	label  string
	frames []Frame
}

// Run drives a fresh engine through the trace and records every emitted window.
func Run(ctx context.Context, tr *Trace) (*Result, error) {
	if tr == nil {
		return nil, errors.New("nil trace")
	}
	if err := tr.Validate(); err != nil {
		return nil, err
	}

	logger := logging.ComponentLogger(*logging.FromContext(ctx), "simulate").
		With().Str("trace", tr.Name).Logger()

	r := &runner{
		trace:  tr,
		logger: logger,
		sizes:  make(map[ulid.ULID]float64),
		label:  initLabel,
	}
	r.keys = r.newKeys(tr.Items.Count)

	cfg := config.ToEngineConfig(tr.Engine, r.keys)
	eng, err := engine.New(&cfg, r.record, engine.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("creating engine: %w", err)
	}
	defer eng.Destroy()
	r.eng = eng

	if err = r.autoMeasure(); err != nil {
		return nil, err
	}

	for i, ev := range tr.Events {
		if err = ctx.Err(); err != nil {
			return nil, err
		}

		r.step = i + 1
		r.label = ev.String()
		if err = r.apply(ctx, ev); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", r.step, r.label, err)
		}
		if err = r.autoMeasure(); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", r.step, r.label, err)
		}
	}

	r.logger.Debug().
		Int("events", len(tr.Events)).
		Int("frames", len(r.frames)).
		Msg("trace finished")

	return &Result{
		Name:         tr.Name,
		Frames:       r.frames,
		Final:        eng.Window(),
		Items:        eng.Len(),
		Mode:         eng.Mode(),
		EstimateSize: eng.EstimateSize(),
	}, nil
}

// RunAll runs independent traces concurrently, at most limit at a time when
// limit > 0. Results are returned in input order; the first failure cancels
// the remaining runs.
func RunAll(ctx context.Context, traces []*Trace, limit int) ([]*Result, error) {
	results := make([]*Result, len(traces))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, tr := range traces {
		i, tr := i, tr
		g.Go(func() error {
			res, err := Run(gctx, tr)
			if err != nil {
				name := "<nil>"
				if tr != nil {
					name = tr.Name
				}
				return fmt.Errorf("trace %q: %w", name, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// record is the engine's update callback.
func (r *runner) record(w engine.Window) {
	frame := Frame{Step: r.step, Event: r.label, Window: w}
	// the construction emission happens before r.eng is assigned
	if r.eng != nil {
		frame.Direction = r.eng.Direction()
		frame.Mode = r.eng.Mode()
	}
	r.frames = append(r.frames, frame)
}

func (r *runner) apply(ctx context.Context, ev Event) error {
	switch {
	case ev.Scroll != nil:
		r.eng.HandleScroll(*ev.Scroll)
		return nil

	case ev.Measure != nil:
		return r.measure(ev.Measure.From, ev.Measure.To)

	case ev.Append != nil:
		return r.appendItems(ctx, *ev.Append)

	case ev.Truncate != nil:
		n := min(*ev.Truncate, len(r.keys))
		for _, k := range r.keys[n:] {
			delete(r.sizes, k)
		}
		r.keys = slices.Clip(r.keys[:n])
		if err := r.eng.SetKeys(r.keys); err != nil {
			return err
		}
		return r.eng.HandleDataSourcesChange()

	case ev.Header != nil:
		if err := r.eng.SetHeaderOffset(*ev.Header); err != nil {
			return err
		}
		return r.eng.HandleSlotSizeChange()
	}
	return nil
}

// measure reports the true sizes of items [from, to], clamped to the collection.
func (r *runner) measure(from, to int) error {
	from = max(from, 0)
	to = min(to, len(r.keys)-1)
	for i := from; i <= to; i++ {
		k := r.keys[i]
		if err := r.eng.SaveSize(k, r.sizes[k]); err != nil {
			return fmt.Errorf("measuring item %d: %w", i, err)
		}
	}
	return nil
}

// appendItems grows the collection page by page, revalidating after each page.
func (r *runner) appendItems(ctx context.Context, req Append) error {
	proc := batch.NewProcessorWithDefaults[ulid.ULID]()
	if req.PageSize > 0 {
		var err error
		if proc, err = batch.NewProcessor[ulid.ULID](req.PageSize); err != nil {
			return err
		}
	}

	proc.WithProgressCallback(func(p batch.Progress) {
		r.logger.Debug().
			Int("step", r.step).
			Int("page", p.DeliveredPages).
			Int("pages", p.TotalPages).
			Float64("percent", p.PercentComplete()).
			Int("remaining", p.Remaining()).
			Msg("append page delivered")
	})

	base := r.label
	return proc.Process(ctx, r.newKeys(req.Count), func(_ context.Context, page []ulid.ULID, pageIndex int) error {
		r.label = fmt.Sprintf("%s page %d", base, pageIndex+1)
		r.keys = append(r.keys, page...)
		if err := r.eng.SetKeys(r.keys); err != nil {
			return err
		}
		return r.eng.HandleDataSourcesChange()
	})
}

// autoMeasure reports the sizes of every item in the current window.
func (r *runner) autoMeasure() error {
	if !r.trace.AutoMeasure {
		return nil
	}
	w := r.eng.Window()
	return r.measure(w.Start, w.End)
}

func (r *runner) newKeys(n int) []ulid.ULID {
	keys := make([]ulid.ULID, 0, n)
	for _i := 0; _i < n; _i++ {
		k := ulid.Make()
		r.sizes[k] = r.trace.Items.SizeOf(r.created)
		r.created++
		keys = append(keys, k)
	}
	return keys
}
