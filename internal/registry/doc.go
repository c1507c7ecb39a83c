// Package registry defines the shared work registry: the on-disk record of
// every work item and its claim state.
//
// The registry is a single pretty-printed JSON file mutated by multiple
// independent agent processes. [Store] deliberately has no internal
// locking; every load-mutate-save sequence must run inside the exclusive
// file lock guarding the registry (see the flock package), as one logical
// unit per operation. Reads outside the lock are permitted for display
// purposes but may observe a snapshot that is already stale.
package registry
