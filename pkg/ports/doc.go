/*
Package ports defines the driven ports of the session host.

These interfaces decouple session handling from storage and coordination backends,
so the same session manager runs against memory, the filesystem or Redis.

# Key Interfaces

  - SnapshotStore: persists encoded root states by session ID.
  - DistributedLocker: serializes access to a session across replicas.
*/
package ports
