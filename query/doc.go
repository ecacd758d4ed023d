// Package query keeps client-side copies of API reads consistent across
// every consumer in the process.
//
// A Client is a process-wide keyed store. Reads are described by a Spec and
// executed either once with Get or continuously by an Observer, which plays
// the role of a UI query hook: it fetches when its key changes, serves cached
// data, retains the previous page as placeholder, and refetches when a
// mutation invalidates its key. Writes go through a Mutation, which validates
// input, calls the API, and on success invalidates every key under its
// declared prefixes. Nothing outside a Mutation can change cached data.
//
// Concurrent reads of one key share a single fetch. A fetch that started
// before an invalidation never marks the entry fresh again.
package query
