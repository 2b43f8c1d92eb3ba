// Package simulate replays scroll traces against the window engine.
//
// A trace is a YAML document describing an engine configuration, a synthetic
// collection of items with known sizes, and an ordered list of events:
// scroll offsets, measurement reports, appended pages, truncations and header
// changes. Run drives a fresh engine through the events and records every
// window the engine emits, which makes traces useful both as regression
// fixtures and as a way to explore how keeps, buffer and estimates interact.
//
// Item keys are generated ULIDs, so traces only ever talk about positions.
package simulate
