package queue

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// JudgeQueue hands DSA submission ids to the external judge, which pops them
// from the right end of a Redis list.
type JudgeQueue struct {
	rdb  *redis.Client
	name string
}

func NewJudgeQueue(rdb *redis.Client, name string) *JudgeQueue {
	return &JudgeQueue{rdb: rdb, name: name}
}

func (q *JudgeQueue) Enqueue(ctx context.Context, submissionID string) error {
	if err := q.rdb.LPush(ctx, q.name, submissionID).Err(); err != nil {
		return fmt.Errorf("push submission %s to judge queue: %w", submissionID, err)
	}
	return nil
}
