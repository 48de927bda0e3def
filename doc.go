// Package async is a suspension-driven asynchronous task runtime: a future
// primitive (package future), a coroutine engine built on it (package
// coroutine), an execution environment that carries ambient state across
// suspension boundaries (package taskenv), a work-stealing dispatch pool
// and timer factory (packages dispatch, clock), and an expiring keyed set
// for TTL-based caches (package expiring).
//
// This package collects the small set of combinators that compose futures
// without blocking a thread: Join, Alt, Sleep, and From, plus RunAll, Map,
// and ForEach convenience wrappers built on top of them.
package async
