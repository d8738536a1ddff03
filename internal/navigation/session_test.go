package navigation

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storebot/internal/catalog"
)

func TestPushPop(t *testing.T) {
	s := NewSession(10)
	s.Push(Frame{State: StateCategories})
	s.Push(Frame{State: StateOptions, Dimension: catalog.DeviceBrand, Selection: catalog.Selection{catalog.Category: 1}})
	s.Push(Frame{State: StateProduct, ProductID: 3})
	assert.Equal(t, 3, s.Depth())

	f, ok := s.Pop()
	require.True(t, ok)
	assert.Equal(t, StateOptions, f.State)
	assert.Equal(t, uint(1), f.Selection[catalog.Category])

	f, ok = s.Pop()
	require.True(t, ok)
	assert.Equal(t, StateCategories, f.State)

	f, ok = s.Pop()
	require.True(t, ok)
	assert.Equal(t, StateMain, f.State)

	_, ok = s.Pop()
	assert.False(t, ok)
}

func TestPushCapsHistory(t *testing.T) {
	s := NewSession(3)
	for i := 1; i <= 5; i++ {
		s.Push(Frame{State: StateProducts, Page: i})
	}
	require.Equal(t, 3, s.Depth())
	// main, 1 were dropped; 2, 3, 4 remain under current 5.
	assert.Equal(t, 2, s.History[0].Page)
	assert.Equal(t, 5, s.Current.Page)
}

func TestFramesDoNotShareSelection(t *testing.T) {
	s := NewSession(10)
	sel := catalog.Selection{catalog.Category: 1}
	s.Push(Frame{State: StateOptions, Selection: sel})
	sel[catalog.Brand] = 2
	assert.False(t, s.Current.Selection.Has(catalog.Brand))
}

func TestReplaceAndReset(t *testing.T) {
	s := NewSession(10)
	s.Push(Frame{State: StateProducts, Page: 0})
	s.Replace(Frame{State: StateProducts, Page: 2})
	assert.Equal(t, 1, s.Depth())
	assert.Equal(t, 2, s.Current.Page)

	s.Quantity = 4
	s.Reset()
	assert.Equal(t, StateMain, s.Current.State)
	assert.Zero(t, s.Depth())
	assert.Zero(t, s.Quantity)
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)

	missing, err := store.Load(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, missing)

	s := NewSession(10)
	s.Push(Frame{State: StateOptions, Dimension: catalog.Color, Selection: catalog.Selection{catalog.Category: 1, catalog.Series: 0}})
	s.Quantity = 2
	require.NoError(t, store.Save(ctx, 42, s))

	loaded, err := store.Load(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, catalog.Color, loaded.Current.Dimension)
	assert.True(t, loaded.Current.Selection.Has(catalog.Series))
	assert.Equal(t, 2, loaded.Quantity)
	assert.Equal(t, 1, loaded.Depth())

	require.NoError(t, store.Delete(ctx, 42))
	loaded, err = store.Load(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestMemoryStoreExpires(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(time.Millisecond)
	require.NoError(t, store.Save(ctx, 1, NewSession(10)))
	time.Sleep(5 * time.Millisecond)

	loaded, err := store.Load(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestManagerLoadDefaults(t *testing.T) {
	m := NewManager(NewMemoryStore(time.Hour), 2)
	s, err := m.Load(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, StateMain, s.Current.State)

	for i := 0; i < 4; i++ {
		s.Push(Frame{State: StateProducts, Page: i})
	}
	require.NoError(t, m.Save(context.Background(), 7, s))

	s, err = m.Load(context.Background(), 7)
	require.NoError(t, err)
	s.Push(Frame{State: StateProduct})
	assert.Equal(t, 2, s.Depth())
}

func TestManagerLockSerialises(t *testing.T) {
	m := NewManager(NewMemoryStore(time.Hour), 10)
	var (
		wg      sync.WaitGroup
		counter int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := m.Lock(1)
			defer unlock()
			v := counter
			time.Sleep(time.Microsecond)
			counter = v + 1
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
	assert.Empty(t, m.locks)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR is not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: os.Getenv("REDIS_PASS")})
	defer client.Close()
	store := NewStore(client, time.Minute)

	ctx := context.Background()
	s := NewSession(10)
	s.Push(Frame{State: StateCart})
	require.NoError(t, store.Save(ctx, -1001, s))
	defer store.Delete(ctx, -1001)

	loaded, err := store.Load(ctx, -1001)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, StateCart, loaded.Current.State)
}
