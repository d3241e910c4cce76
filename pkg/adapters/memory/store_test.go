package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/denizsokullu/redux-shrub/pkg/adapters/memory"
	"github.com/denizsokullu/redux-shrub/pkg/ports"
)

func TestStore_Contract(t *testing.T) {
	ports.RunSnapshotStoreContract(t, memory.NewStore())
}

func TestStore_SnapshotsAreCopied(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	in := []byte(`{"count":1}`)
	require.NoError(t, store.Save(ctx, "s1", in))
	in[2] = 'X'

	out, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":1}`, string(out))

	out[2] = 'Y'
	again, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":1}`, string(again))
}
