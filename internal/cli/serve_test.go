package cli

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"contest_arena/internal/platform/config"

	"github.com/alicebob/miniredis/v2"
)

func memoryConfig(redisAddr string) *config.Config {
	return &config.Config{
		APIPort:                 "0",
		JWTKey:                  []byte("cli-test-secret"),
		StoreDriver:             config.StoreDriverMemory,
		RedisAddr:               redisAddr,
		ContestCacheTTL:         time.Minute,
		JudgeQueueName:          "judge_test",
		LeaderboardSize:         10,
		LeaderboardPushInterval: time.Second,
		RequestTimeout:          5 * time.Second,
	}
}

func TestBuildAppWithoutRedis(t *testing.T) {
	a, err := buildApp(context.Background(), memoryConfig(""))
	if err != nil {
		t.Fatalf("build app: %v", err)
	}
	defer a.close()

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /health, got %d", rec.Code)
	}
}

func TestBuildAppWiresRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	a, err := buildApp(context.Background(), memoryConfig(mr.Addr()))
	if err != nil {
		t.Fatalf("build app: %v", err)
	}
	defer a.close()

	body := `{"name":"Kim","email":"kim@example.com","password":"secret1","role":"creator"}`
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/signup", strings.NewReader(body)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup: %d %s", rec.Code, rec.Body.String())
	}
	var env struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode signup: %v", err)
	}

	now := time.Now().UTC()
	contest := `{"title":"Cached","startTime":"` + now.Format(time.RFC3339) + `","endTime":"` + now.Add(time.Hour).Format(time.RFC3339) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/contests", strings.NewReader(contest))
	req.Header.Set("Authorization", "Bearer "+env.Data.Token)
	rec = httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create contest: %d %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode contest: %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/contests/"+created.Data.ID, nil)
	req.Header.Set("Authorization", "Bearer "+env.Data.Token)
	rec = httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("get contest: %d %s", rec.Code, rec.Body.String())
	}
	if !mr.Exists("contest:" + created.Data.ID) {
		t.Fatalf("expected contest to be cached in redis")
	}
}

func TestMigrateRequiresPostgres(t *testing.T) {
	if err := runMigrations(context.Background(), memoryConfig("")); err == nil {
		t.Fatalf("expected error for memory store")
	}
}
