package main

import (
	"context"

	"github.com/turtacn/LitiDocket/internal/infrastructure/database/postgres"
	"github.com/turtacn/LitiDocket/internal/infrastructure/database/redis"
	"github.com/turtacn/LitiDocket/internal/infrastructure/search/opensearch"
)

// Readiness adapters plugging infrastructure clients into the health handler.

type postgresHealthAdapter struct {
	pool *postgres.Pool
}

func (a *postgresHealthAdapter) Name() string { return "postgres" }

func (a *postgresHealthAdapter) Check(ctx context.Context) error {
	return a.pool.HealthCheck(ctx)
}

type redisHealthAdapter struct {
	client *redis.Client
}

func (a *redisHealthAdapter) Name() string { return "redis" }

func (a *redisHealthAdapter) Check(ctx context.Context) error {
	return a.client.Ping(ctx)
}

type opensearchHealthAdapter struct {
	client *opensearch.Client
}

func (a *opensearchHealthAdapter) Name() string { return "opensearch" }

func (a *opensearchHealthAdapter) Check(ctx context.Context) error {
	return a.client.Ping(ctx)
}
