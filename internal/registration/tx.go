package registration

import (
	"context"
	"sync"
	"time"

	"campuspass/internal/registration/store"
	dErrors "campuspass/pkg/domain-errors"
	"campuspass/pkg/requestcontext"
)

// shardedTx provides fine-grained locking using sharded mutexes. Instead of
// a single global lock, operations are distributed across N shards based on
// a hash of the serial number, so mutations on different serials proceed in
// parallel while two mutations on the same serial always serialize.
const numTxShards = 128

// defaultTxTimeout is the maximum duration for a registration transaction.
const defaultTxTimeout = 5 * time.Second

type shardedTx struct {
	shards  [numTxShards]sync.Mutex
	store   store.Store
	timeout time.Duration
}

// NewShardedTx wraps an in-memory store with serial-sharded locking. The
// serial is read from the request context, so callers must set it with
// requestcontext.WithSerial before RunInTx.
func NewShardedTx(s store.Store) Tx {
	return &shardedTx{store: s}
}

func (t *shardedTx) RunInTx(ctx context.Context, fn func(store store.Store) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	shard := t.selectShard(ctx)
	t.shards[shard].Lock()
	defer t.shards[shard].Unlock()

	// Check again after acquiring the lock.
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	return fn(t.store)
}

// selectShard picks a shard from the serial carried in the context, or
// defaults to shard 0.
func (t *shardedTx) selectShard(ctx context.Context) int {
	if serial := requestcontext.Serial(ctx); serial != "" {
		return int(hashSerial(serial) % numTxShards)
	}
	return 0
}

// hashSerial uses FNV-1a for even distribution across shards.
func hashSerial(s string) uint32 {
	const (
		fnvOffset = 2166136261
		fnvPrime  = 16777619
	)
	h := uint32(fnvOffset)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= fnvPrime
	}
	return h
}
