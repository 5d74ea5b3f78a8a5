package reload

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/robinbraemer/event"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "users.yml")
	require.NoError(t, os.WriteFile(path, []byte("users: {}"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	err := Watch(ctx, []string{path, filepath.Join(dir, "missing.yml")}, 20*time.Millisecond, func() error {
		calls.Inc()
		return nil
	})
	require.NoError(t, err)

	// a burst of writes is one reload
	for i := range 3 {
		require.NoError(t, os.WriteFile(path, []byte("users: {a"+string(rune('0'+i))+": {}}"), 0o644))
	}
	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 5*time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	require.Equal(t, int32(1), calls.Load())

	cancel()
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("users: {}"), 0o644))
	time.Sleep(100 * time.Millisecond)
	require.Equal(t, int32(1), calls.Load())
}

func TestWatch_Directory(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	require.NoError(t, Watch(ctx, []string{dir}, 20*time.Millisecond, func() error {
		calls.Inc()
		return nil
	}))

	require.NoError(t, os.Mkdir(filepath.Join(dir, "world_nether"), 0o755))
	require.Eventually(t, func() bool { return calls.Load() == 1 }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.Remove(filepath.Join(dir, "world_nether")))
	require.Eventually(t, func() bool { return calls.Load() == 2 }, 5*time.Second, 10*time.Millisecond)
}

func TestWatch_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, Watch(ctx, []string{"/does/not/matter"}, 0, func() error {
		t.Fatal("unexpected reload")
		return nil
	}))
}

func TestUpdateEvent(t *testing.T) {
	mgr := event.New()
	var got *UpdateEvent[string]
	unsub := Subscribe(mgr, func(e *UpdateEvent[string]) { got = e })
	defer unsub()

	FireUpdate(mgr, "a", "b")
	require.NotNil(t, got)
	require.Equal(t, "a", got.Previous)
	require.Equal(t, "b", got.Current)
}
