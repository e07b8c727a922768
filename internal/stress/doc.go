// Package stress drives a sigslot.Signal under concurrent load and checks
// that every handler saw every emission.
//
// A run registers the configured synchronous and asynchronous handlers,
// starts Emitters goroutines that share Emits calls between them (optionally
// paced by a token bucket), and optionally clones or moves the signal halfway
// through. When all emitters are done it waits for outstanding asynchronous
// work, collects statistics and metrics, tears the signal down and returns a
// Report. Report.Check verifies the invocation counts.
package stress
