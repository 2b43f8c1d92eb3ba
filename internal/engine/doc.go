// Package engine provides the windowing engine behind virtualized lists.
//
// Given an ordered collection of items identified by stable keys, the engine
// decides which contiguous range of items should be materialized and how much
// space the unrendered items before and after that range occupy. Key features:
//   - Fixed/dynamic size classification from reported measurements
//   - O(1) offset lookup for fixed-size lists, binary search over cached
//     cumulative offsets for dynamic ones
//   - Buffered, direction-aware window shifts to avoid re-rendering on every scroll tick
//   - Leading and trailing padding so a small render window keeps scrollbar proportions
//
// The engine is synchronous and single-threaded: every handler runs to
// completion and notifies the registered UpdateFunc at most once. Callers on a
// multi-goroutine host must confine an Engine to one goroutine.
package engine
