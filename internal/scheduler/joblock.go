package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

var extendScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0`)

// JobLock provides mutual exclusion for singleton jobs shared by several
// instances. A lock expires on its own after the lease.
type JobLock struct {
	client *redis.Client
	prefix string
}

// Lease is a held lock.
type Lease struct {
	JobType string
	token   string
}

// NewJobLock creates a lock backed by client.
func NewJobLock(client *redis.Client) *JobLock {
	return &JobLock{client: client, prefix: "joblock:"}
}

// Acquire takes the lock for jobType. It returns nil when another holder
// has it.
func (l *JobLock) Acquire(ctx context.Context, jobType string, lease time.Duration) (*Lease, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.prefix+jobType, token, lease).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire job lock %s: %w", jobType, err)
	}
	if !ok {
		return nil, nil
	}
	return &Lease{JobType: jobType, token: token}, nil
}

// Release frees a lease if it is still held by its owner.
func (l *JobLock) Release(ctx context.Context, lease *Lease) error {
	if lease == nil {
		return nil
	}
	if err := releaseScript.Run(ctx, l.client, []string{l.prefix + lease.JobType}, lease.token).Err(); err != nil {
		return fmt.Errorf("release job lock %s: %w", lease.JobType, err)
	}
	return nil
}

// Extend pushes the expiry of a held lease to d from now. It reports false
// when the lease has expired or was taken over by another holder.
func (l *JobLock) Extend(ctx context.Context, lease *Lease, d time.Duration) (bool, error) {
	if lease == nil {
		return false, nil
	}
	n, err := extendScript.Run(ctx, l.client, []string{l.prefix + lease.JobType}, lease.token, d.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("extend job lock %s: %w", lease.JobType, err)
	}
	return n == 1, nil
}
