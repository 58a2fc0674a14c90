package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/turtacn/LitiDocket/internal/infrastructure/monitoring/logging"
)

// AdmissionGuard is the distributed single-flight claim behind triage job
// admission.  Each (case, job type) key maps to one Redis string whose value
// is the owning job ID; SETNX grants the claim and a compare-and-delete
// script releases it.  The TTL is a crash backstop: a worker that dies mid-job
// loses the claim once the TTL lapses, so the case is not locked forever.
type AdmissionGuard struct {
	client *Client
	logger logging.Logger
	prefix string
}

// NewAdmissionGuard builds a guard with the given key prefix.
func NewAdmissionGuard(client *Client, log logging.Logger, prefix string) *AdmissionGuard {
	if prefix == "" {
		prefix = "docket:"
	}
	return &AdmissionGuard{client: client, logger: log, prefix: prefix}
}

// releaseScript deletes the claim only when owner still holds it, so a
// slow job whose TTL lapsed cannot release its successor's claim.
var releaseScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	else
		return 0
	end
`)

func (g *AdmissionGuard) key(name string) string {
	return g.prefix + "admission:" + name
}

// TryAcquire claims key for owner.  It never waits: admission is a yes/no
// answer, not a queue.
func (g *AdmissionGuard) TryAcquire(ctx context.Context, key, owner string, ttl time.Duration) (bool, error) {
	ok, err := g.client.Underlying().SetNX(ctx, g.key(key), owner, ttl).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

// Release drops the claim if owner still holds it.
func (g *AdmissionGuard) Release(ctx context.Context, key, owner string) error {
	res, err := releaseScript.Run(ctx, g.client.Underlying(), []string{g.key(key)}, owner).Result()
	if err != nil {
		return err
	}
	if n, ok := res.(int64); ok && n == 0 {
		g.logger.Debug("admission claim already released or reassigned",
			logging.String("key", key))
	}
	return nil
}
