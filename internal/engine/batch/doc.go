// Package batch delivers a growing collection to the windowing engine in
// fixed-size pages.
//
// A virtual list rarely receives its whole collection at once: items arrive a
// page at a time as the user scrolls toward the tail. This package splits a
// slice of new items into pages and hands them, in order, to a PageFunc that
// appends them to the key list and revalidates the window. Key features:
//   - Configurable page size (default 50 items per page)
//   - Progress reporting after each delivered page
//   - Context cancellation checked between pages
//
// Pages are delivered sequentially on the caller's goroutine because the
// engine they feed is single-threaded.
package batch
