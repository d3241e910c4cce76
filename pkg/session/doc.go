/*
Package session hosts compiled trees across requests.

A Manager keeps one root state per session ID in a ports.SnapshotStore. Every dispatch
loads the snapshot, runs the provider's reducer and saves the result while holding a
per-session lock, so concurrent dispatches to one session are applied one at a time.
With a ports.DistributedLocker the same guarantee holds across replicas.
*/
package session
