package cache

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/motiontwin/internal/dynamo"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := NewMemory[*plan]()
	defer store.Close()
	runStoreContract(t, store)
}

func TestMemoryStore_SharesPointer(t *testing.T) {
	ctx := context.Background()
	store := NewMemory[*plan]()
	p := &plan{Overall: 1}

	require.NoError(t, store.Put(ctx, "k", p))
	got, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Same(t, p, got)
}

func TestMemoryStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	store := NewMemory[int]()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%4)
			_ = store.Put(ctx, key, i)
			_, _, _ = store.Get(ctx, key)
		}(i)
	}
	wg.Wait()

	n, err := store.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestPoseKey(t *testing.T) {
	a := PoseKey(dynamo.Vec3{0, 0, 0}, dynamo.Vec3{100, 0, 0})

	assert.Equal(t, a, PoseKey(dynamo.Vec3{0, 0, 0}, dynamo.Vec3{100, 0, 0}))
	assert.NotEqual(t, a, PoseKey(dynamo.Vec3{100, 0, 0}, dynamo.Vec3{0, 0, 0}), "direction matters")
	assert.NotEqual(t, a, PoseKey(dynamo.Vec3{0, 0, 0}, dynamo.Vec3{math.Nextafter(100, 101), 0, 0}), "no tolerance bucketing")
	assert.NotEqual(t, a, PoseKey(dynamo.Vec3{math.Copysign(0, -1), 0, 0}, dynamo.Vec3{100, 0, 0}), "signed zero is distinct")
}
