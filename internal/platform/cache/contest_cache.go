package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math/rand"
	"time"

	"contest_arena/internal/domain/model"
	"contest_arena/internal/domain/repository"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const loadTimeout = 5 * time.Second

// ContestCache is a read-through Redis cache in front of a ContestRepository.
// Contests are immutable once created, so entries never need invalidation;
// the TTL only bounds memory.
//
// Layout: SET contest:{id} <json> EX ttl(+jitter)
type ContestCache struct {
	repository.ContestRepository
	client *redis.Client
	ttl    time.Duration
	sf     singleflight.Group
}

func NewContestCache(next repository.ContestRepository, client *redis.Client, ttl time.Duration) *ContestCache {
	return &ContestCache{
		ContestRepository: next,
		client:            client,
		ttl:               ttl,
	}
}

func (c *ContestCache) FindContestByID(ctx context.Context, id string) (*model.Contest, error) {
	if contest, ok := c.get(ctx, id); ok {
		return contest, nil
	}

	// The shared load outlives any single caller; each caller only waits on
	// its own context.
	ch := c.sf.DoChan(id, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		// Re-check cache in case another caller filled it.
		if contest, ok := c.get(loadCtx, id); ok {
			return contest, nil
		}
		contest, err := c.ContestRepository.FindContestByID(loadCtx, id)
		if err != nil {
			return nil, err
		}
		c.put(loadCtx, contest)
		return contest, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		contest := *res.Val.(*model.Contest)
		return &contest, nil
	}
}

func (c *ContestCache) FindContestBySlug(ctx context.Context, slug string) (*model.Contest, error) {
	contest, err := c.ContestRepository.FindContestBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	c.put(ctx, contest)
	return contest, nil
}

func (c *ContestCache) get(ctx context.Context, id string) (*model.Contest, bool) {
	raw, err := c.client.Get(ctx, contestKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("WARN: contest cache read for %s failed: %v", id, err)
		}
		return nil, false
	}
	var contest model.Contest
	if err := json.Unmarshal(raw, &contest); err != nil {
		log.Printf("WARN: contest cache entry for %s is corrupt: %v", id, err)
		return nil, false
	}
	return &contest, true
}

func (c *ContestCache) put(ctx context.Context, contest *model.Contest) {
	raw, err := json.Marshal(contest)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, contestKey(contest.ID), raw, c.ttlWithJitter()).Err(); err != nil {
		log.Printf("WARN: contest cache write for %s failed: %v", contest.ID, err)
	}
}

func (c *ContestCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(rand.Int63n(jitterMax+1))
}

func contestKey(id string) string {
	return "contest:" + id
}
