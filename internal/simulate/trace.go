package simulate

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/nullishamy/dakko/internal/config"
)

// SupportedVersions is the semver constraint a trace's version must satisfy.
const SupportedVersions = "^1.0"

// ErrInvalidTrace is returned for traces that decode but cannot be run.
var ErrInvalidTrace = errors.New("invalid trace")

// Trace is a scripted session against one engine.
type Trace struct {
	Version     string              `yaml:"version"`
	Name        string              `yaml:"name"`
	Engine      config.EngineConfig `yaml:"engine"`
	Items       Items               `yaml:"items"`
	AutoMeasure bool                `yaml:"auto_measure"`
	Events      []Event             `yaml:"events"`
}

// Items describes the synthetic collection. Item i has size
// Sizes[i % len(Sizes)]; appended items continue the cycle.
type Items struct {
	Count int       `yaml:"count"`
	Sizes []float64 `yaml:"sizes"`
}

// SizeOf returns the true size of the item created at position i.
func (it Items) SizeOf(i int) float64 {
	return it.Sizes[i%len(it.Sizes)]
}

// Event is a single step of a trace. Exactly one field is set.
type Event struct {
	Scroll   *float64 `yaml:"scroll,omitempty"`
	Measure  *Range   `yaml:"measure,omitempty"`
	Append   *Append  `yaml:"append,omitempty"`
	Truncate *int     `yaml:"truncate,omitempty"`
	Header   *float64 `yaml:"header,omitempty"`
}

// Range is an inclusive span of item positions.
type Range struct {
	From int `yaml:"from"`
	To   int `yaml:"to"`
}

// Append adds Count items delivered PageSize at a time.
type Append struct {
	Count    int `yaml:"count"`
	PageSize int `yaml:"page_size"`
}

// Kind names the action of the event.
func (ev Event) Kind() string {
	switch {
	case ev.Scroll != nil:
		return "scroll"
	case ev.Measure != nil:
		return "measure"
	case ev.Append != nil:
		return "append"
	case ev.Truncate != nil:
		return "truncate"
	case ev.Header != nil:
		return "header"
	default:
		return ""
	}
}

// String renders the event the way it would be written in a trace.
func (ev Event) String() string {
	switch ev.Kind() {
	case "scroll":
		return "scroll " + strconv.FormatFloat(*ev.Scroll, 'f', -1, 64)
	case "measure":
		return fmt.Sprintf("measure %d..%d", ev.Measure.From, ev.Measure.To)
	case "append":
		return fmt.Sprintf("append %d/%d", ev.Append.Count, ev.Append.PageSize)
	case "truncate":
		return "truncate " + strconv.Itoa(*ev.Truncate)
	case "header":
		return "header " + strconv.FormatFloat(*ev.Header, 'f', -1, 64)
	default:
		return "empty"
	}
}

func (ev Event) actions() int {
	n := 0
	for _, set := range []bool{
		ev.Scroll != nil, ev.Measure != nil, ev.Append != nil, ev.Truncate != nil, ev.Header != nil,
	} {
		if set {
			n++
		}
	}
	return n
}

// Load reads and validates the trace at path.
func Load(path string) (*Trace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading trace %s: %w", path, err)
	}

	tr, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("loading trace %s: %w", path, err)
	}
	return tr, nil
}

// Parse decodes and validates a trace. Unknown fields are rejected.
func Parse(data []byte) (*Trace, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var tr Trace
	if err := dec.Decode(&tr); err != nil {
		return nil, fmt.Errorf("parsing trace YAML: %w", err)
	}

	if err := tr.Validate(); err != nil {
		return nil, err
	}
	return &tr, nil
}

// Validate checks the version constraint, the engine section, the item
// description and that every event carries exactly one action.
func (tr *Trace) Validate() error {
	v, err := semver.NewVersion(tr.Version)
	if err != nil {
		return fmt.Errorf("%w: version %q: %w", ErrInvalidTrace, tr.Version, err)
	}
	constraint, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return fmt.Errorf("parsing version constraint: %w", err)
	}
	if !constraint.Check(v) {
		return fmt.Errorf("%w: version %s does not satisfy %s", ErrInvalidTrace, v, SupportedVersions)
	}

	if err = tr.Engine.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTrace, err)
	}

	if tr.Items.Count < 0 {
		return fmt.Errorf("%w: items.count must be >= 0, got %d", ErrInvalidTrace, tr.Items.Count)
	}
	if len(tr.Items.Sizes) == 0 {
		return fmt.Errorf("%w: items.sizes must not be empty", ErrInvalidTrace)
	}
	for i, size := range tr.Items.Sizes {
		if size < 0 || math.IsNaN(size) || math.IsInf(size, 0) {
			return fmt.Errorf("%w: items.sizes[%d] must be a finite value >= 0, got %v", ErrInvalidTrace, i, size)
		}
	}

	for i, ev := range tr.Events {
		if n := ev.actions(); n != 1 {
			return fmt.Errorf("%w: event %d has %d actions, want exactly one", ErrInvalidTrace, i, n)
		}
		if err = ev.validate(); err != nil {
			return fmt.Errorf("%w: event %d: %w", ErrInvalidTrace, i, err)
		}
	}
	return nil
}

func (ev Event) validate() error {
	switch {
	case ev.Measure != nil && ev.Measure.From > ev.Measure.To:
		return fmt.Errorf("measure range %d..%d is inverted", ev.Measure.From, ev.Measure.To)
	case ev.Append != nil && ev.Append.Count < 1:
		return fmt.Errorf("append count must be >= 1, got %d", ev.Append.Count)
	case ev.Append != nil && ev.Append.PageSize < 0:
		return fmt.Errorf("append page_size must be >= 0, got %d", ev.Append.PageSize)
	case ev.Truncate != nil && *ev.Truncate < 0:
		return fmt.Errorf("truncate length must be >= 0, got %d", *ev.Truncate)
	}
	return nil
}
