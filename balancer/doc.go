// Package balancer implements the page-rebalancing control loop for a
// slab-allocating cache server.
//
// # Reading Guide
//
// Start with these three files to understand the decision pipeline:
//   - delta.go: per-class counter deltas and totals between two stats polls
//   - engine.go: the rebalancing heuristic (dirty marking, smoothed age,
//     free-to-global precedence, oldest/youngest ratio comparison)
//   - session.go: the connect/poll/reconnect loop that owns all mutable state
//
// # Architecture
//
// The balancer package is pure decision logic plus the session loop; the
// wire protocol lives in the memcache sub-package behind the StatsClient
// interface. Each poll tick flows snapshot -> delta -> decision, with a
// bounded rolling History (history.go) supplying the hysteresis that
// keeps pages from ping-ponging between two classes on single-tick
// noise. The engine never performs I/O and never fails on bad input;
// classes with missing counters are simply skipped for the tick.
package balancer
