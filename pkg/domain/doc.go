/*
Package domain contains the vocabulary shared by every layer of shrub.

It defines the Action value dispatched into a compiled reducer, the error taxonomy
raised while building or dispatching into a tree, the lifecycle events emitted by the
host layer, and helpers for reading action payloads. The package has no knowledge of
how trees are compiled and is free of I/O.

# Key Entities

  - Action: a {Type, Payload} pair routed by the compiled reducer.
  - ConstructionError: raised synchronously while building a node.
  - DispatchError: raised by a single dispatch; the host decides recovery.
  - DispatchEvent: what the session layer reports to LifecycleHooks after a dispatch.
*/
package domain
