package cache

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"contest_arena/internal/domain/model"

	"github.com/redis/go-redis/v9"
)

// invalidate drops the board and bumps its version so that a rebuild started
// before the bump cannot write its snapshot back.
var invalidate = redis.NewScript(`
redis.call("INCR", KEYS[2])
if tonumber(ARGV[1]) > 0 then
	redis.call("PEXPIRE", KEYS[2], ARGV[1])
end
redis.call("DEL", KEYS[1])
return 1
`)

// fillIfCurrent writes the board only while the version is still the one the
// snapshot was taken under. ARGV: version, ttl ms, then score/member pairs.
var fillIfCurrent = redis.NewScript(`
local current = redis.call("GET", KEYS[2]) or "0"
if current ~= ARGV[1] then
	return 0
end
redis.call("DEL", KEYS[1])
for i = 3, #ARGV, 2 do
	redis.call("ZADD", KEYS[1], ARGV[i], ARGV[i + 1])
end
if tonumber(ARGV[2]) > 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 1
`)

// Leaderboard keeps a per-contest snapshot of the store's totals in a sorted
// set. Every committed submission invalidates it; the next read rebuilds it.
//
// Layout:
//
//	ZSET contest:{id}:leaderboard          member=userID score=points
//	STR  contest:{id}:leaderboard:version  INCR on every invalidation
type Leaderboard struct {
	client *redis.Client
	ttl    time.Duration
}

func NewLeaderboard(client *redis.Client, ttl time.Duration) *Leaderboard {
	return &Leaderboard{client: client, ttl: ttl}
}

// Invalidate drops the cached board for a contest.
func (l *Leaderboard) Invalidate(ctx context.Context, contestID string) error {
	keys := []string{leaderboardKey(contestID), versionKey(contestID)}
	if err := invalidate.Run(ctx, l.client, keys, l.ttl.Milliseconds()).Err(); err != nil {
		return fmt.Errorf("leaderboard invalidate for contest %s: %w", contestID, err)
	}
	return nil
}

// Version must be read before the store snapshot that is later passed to Fill.
func (l *Leaderboard) Version(ctx context.Context, contestID string) (int64, error) {
	v, err := l.client.Get(ctx, versionKey(contestID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("leaderboard version for contest %s: %w", contestID, err)
	}
	return v, nil
}

// Top returns the n best entries, all of them when n <= 0. Users tied on
// points are ordered by id, including at the cutoff. ok is false when the
// board is cold.
func (l *Leaderboard) Top(ctx context.Context, contestID string, n int) (entries []model.LeaderboardEntry, ok bool, err error) {
	key := leaderboardKey(contestID)
	stop := int64(-1)
	if n > 0 {
		stop = int64(n - 1)
	}
	members, err := l.client.ZRevRangeWithScores(ctx, key, 0, stop).Result()
	if err != nil {
		return nil, false, fmt.Errorf("leaderboard range for contest %s: %w", contestID, err)
	}
	if n > 0 && len(members) == n {
		// Redis orders ties by member descending; take everyone at the
		// cutoff score and re-rank below.
		cutoff := strconv.FormatFloat(members[n-1].Score, 'f', -1, 64)
		members, err = l.client.ZRevRangeByScoreWithScores(ctx, key, &redis.ZRangeBy{Max: "+inf", Min: cutoff}).Result()
		if err != nil {
			return nil, false, fmt.Errorf("leaderboard range for contest %s: %w", contestID, err)
		}
	}
	// Fill never stores an empty board.
	if len(members) == 0 {
		return nil, false, nil
	}

	entries = make([]model.LeaderboardEntry, 0, len(members))
	for _, m := range members {
		userID, _ := m.Member.(string)
		entries = append(entries, model.LeaderboardEntry{UserID: userID, Points: int(m.Score)})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		return entries[i].UserID < entries[j].UserID
	})
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, true, nil
}

// Fill replaces the board with entries, which must hold every participant and
// be read after version was. It is a no-op when the board was invalidated in
// between.
func (l *Leaderboard) Fill(ctx context.Context, contestID string, version int64, entries []model.LeaderboardEntry) error {
	if len(entries) == 0 {
		return nil
	}
	args := make([]interface{}, 0, 2+2*len(entries))
	args = append(args, strconv.FormatInt(version, 10), l.ttl.Milliseconds())
	for _, e := range entries {
		args = append(args, e.Points, e.UserID)
	}
	keys := []string{leaderboardKey(contestID), versionKey(contestID)}
	if err := fillIfCurrent.Run(ctx, l.client, keys, args...).Err(); err != nil {
		return fmt.Errorf("leaderboard fill for contest %s: %w", contestID, err)
	}
	return nil
}

func leaderboardKey(contestID string) string {
	return "contest:" + contestID + ":leaderboard"
}

func versionKey(contestID string) string {
	return leaderboardKey(contestID) + ":version"
}
