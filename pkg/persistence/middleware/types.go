// Package middleware decorates snapshot stores.
//
// Middlewares see the serialized snapshot (the JSON document produced by Provider.ToJSON),
// so they apply to every store backend alike.
package middleware

import "github.com/denizsokullu/redux-shrub/pkg/ports"

// Middleware allows wrapping a SnapshotStore to add behavior.
type Middleware func(ports.SnapshotStore) ports.SnapshotStore

// Chain wraps store so that the first middleware sees a Save first.
func Chain(store ports.SnapshotStore, mws ...Middleware) ports.SnapshotStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
