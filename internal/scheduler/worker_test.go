package scheduler

import (
	"context"
	"testing"
	"time"

	"fdpg_backend/platform/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingSyncer struct {
	started chan struct{}
	release chan struct{}
}

func (s *blockingSyncer) Run(ctx context.Context) error {
	close(s.started)
	select {
	case <-s.release:
	case <-ctx.Done():
	}
	return nil
}

func TestRenewLeaseExtendsUntilCancelled(t *testing.T) {
	lock, s := newTestLock(t)
	w := &Worker{lock: lock, log: logger.Discard()}
	ctx, cancel := context.WithCancel(context.Background())

	lease, err := lock.Acquire(ctx, TaskLocationSync, time.Minute)
	require.NoError(t, err)
	require.NotNil(t, lease)

	done := make(chan struct{})
	go func() {
		w.renewLease(ctx, lease, 10*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return s.TTL("joblock:"+TaskLocationSync) > time.Minute
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("renewal did not stop")
	}
}

func TestRenewLeaseStopsWhenLost(t *testing.T) {
	lock, s := newTestLock(t)
	w := &Worker{lock: lock, log: logger.Discard()}

	lease, err := lock.Acquire(context.Background(), TaskLocationSync, time.Minute)
	require.NoError(t, err)
	require.NotNil(t, lease)
	s.Del("joblock:" + TaskLocationSync)

	done := make(chan struct{})
	go func() {
		w.renewLease(context.Background(), lease, 10*time.Millisecond)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("renewal kept running after the lease was lost")
	}
	assert.False(t, s.Exists("joblock:"+TaskLocationSync))
}

func TestLocationSyncReleasesLease(t *testing.T) {
	lock, s := newTestLock(t)
	syncer := &blockingSyncer{started: make(chan struct{}), release: make(chan struct{})}
	w := &Worker{lock: lock, syncer: syncer, log: logger.Discard()}

	errCh := make(chan error, 1)
	go func() { errCh <- w.handleLocationSync(context.Background(), nil) }()

	<-syncer.started
	assert.True(t, s.Exists("joblock:"+TaskLocationSync))
	close(syncer.release)

	require.NoError(t, <-errCh)
	assert.False(t, s.Exists("joblock:"+TaskLocationSync))
}
