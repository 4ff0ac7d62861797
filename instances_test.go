package precinct

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/eringen/precinct/auth"
	"github.com/eringen/precinct/site"
)

func newTestInstance(a *App) *site.Instance {
	return site.NewInstance(uuid.NewString(), auth.NewGate(a.Auth), a.coord, zap.NewNop())
}

func TestRegistryGetTouchesAndExpires(t *testing.T) {
	a := newTestApp(t)
	clock := &fakeClock{t: time.Date(2025, 3, 21, 9, 0, 0, 0, time.UTC)}
	r := NewRegistry(30*time.Minute, nil)
	r.now = clock.now

	in := newTestInstance(a)
	r.Put(in)

	clock.advance(20 * time.Minute)
	got, ok := r.Get(in.ID)
	require.True(t, ok)
	assert.Same(t, in, got)

	// The Get above reset the idle timer.
	clock.advance(20 * time.Minute)
	assert.Equal(t, 0, r.Evict())
	_, ok = r.Get(in.ID)
	assert.True(t, ok)

	clock.advance(31 * time.Minute)
	_, ok = r.Get(in.ID)
	assert.False(t, ok)
	assert.Equal(t, 1, r.Evict())
	assert.Equal(t, 0, r.Len())
}

func TestRegistryUnknownAndCloseAll(t *testing.T) {
	a := newTestApp(t)
	r := NewRegistry(time.Minute, nil)

	_, ok := r.Get("")
	assert.False(t, ok)
	_, ok = r.Get("missing")
	assert.False(t, ok)

	r.Put(newTestInstance(a))
	r.Put(newTestInstance(a))
	assert.Equal(t, 2, r.Len())
	r.CloseAll()
	assert.Equal(t, 0, r.Len())
}

func TestCleanupSchedulerEvictsAndStops(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	a := newTestApp(t)
	clock := &fakeClock{t: time.Now()}
	a.Instances.now = clock.now
	a.Instances.Put(newTestInstance(a))
	a.Instances.Put(newTestInstance(a))
	clock.advance(a.Config.InstanceTTL + time.Second)

	stop := a.StartCleanupScheduler(5 * time.Millisecond)
	assert.Eventually(t, func() bool { return a.Instances.Len() == 0 }, time.Second, 5*time.Millisecond)
	stop()
	require.NoError(t, a.Close())
}
