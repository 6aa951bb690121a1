package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"contest_arena/internal/app/service"
	"contest_arena/internal/common/security"
	"contest_arena/internal/domain/model"
	"contest_arena/internal/domain/repository/memory"

	"github.com/gorilla/websocket"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *string         `json:"error"`
}

type testServer struct {
	t      *testing.T
	srv    *httptest.Server
	tokens *security.TokenManager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewStore()
	tokens := security.NewTokenManager([]byte("router-test-secret"))
	leaderboard := service.NewLeaderboardService(store, store, nil, 10)
	services := Services{
		Auth:        service.NewAuthService(store, tokens),
		Contests:    service.NewContestService(store, store),
		Questions:   service.NewQuestionService(store, store),
		Submissions: service.NewSubmissionService(store, store, store, nil, leaderboard),
		Leaderboard: leaderboard,
	}
	router := NewRouter(security.NewGuard(tokens), services, RouterConfig{
		RequestTimeout:          5 * time.Second,
		LeaderboardPushInterval: 50 * time.Millisecond,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testServer{t: t, srv: srv, tokens: tokens}
}

func (s *testServer) token(userID, role string) string {
	s.t.Helper()
	token, err := s.tokens.Issue(userID, role)
	if err != nil {
		s.t.Fatalf("issue token: %v", err)
	}
	return token
}

func (s *testServer) do(method, path, token string, body interface{}) (int, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, s.srv.URL+path, &buf)
	if err != nil {
		s.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		s.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		s.t.Fatalf("decode envelope: %v", err)
	}
	if env.Success == (env.Error != nil) {
		s.t.Fatalf("envelope must carry exactly one of data/error: %+v", env)
	}
	return resp.StatusCode, env
}

func expectError(t *testing.T, status int, env envelope, wantStatus int, wantCode string) {
	t.Helper()
	if status != wantStatus || env.Error == nil || *env.Error != wantCode {
		got := "<nil>"
		if env.Error != nil {
			got = *env.Error
		}
		t.Fatalf("expected %d %s, got %d %s", wantStatus, wantCode, status, got)
	}
}

func (s *testServer) createContest(token string, start, end time.Time) model.Contest {
	s.t.Helper()
	status, env := s.do(http.MethodPost, "/api/contests", token, map[string]interface{}{
		"title":     "Sprint Quiz",
		"startTime": start.Format(time.RFC3339),
		"endTime":   end.Format(time.RFC3339),
	})
	if status != http.StatusCreated {
		s.t.Fatalf("create contest: %d %v", status, env.Error)
	}
	var c model.Contest
	if err := json.Unmarshal(env.Data, &c); err != nil {
		s.t.Fatalf("decode contest: %v", err)
	}
	return c
}

func (s *testServer) addMcq(token, contestID string, correct, points int) string {
	s.t.Helper()
	status, env := s.do(http.MethodPost, "/api/contests/"+contestID+"/mcq", token, map[string]interface{}{
		"questionText":       "2+2?",
		"options":            []string{"3", "4", "5"},
		"correctOptionIndex": correct,
		"points":             points,
	})
	if status != http.StatusCreated {
		s.t.Fatalf("add mcq: %d %v", status, env.Error)
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &created); err != nil {
		s.t.Fatalf("decode mcq: %v", err)
	}
	return created.ID
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	status, env := s.do(http.MethodGet, "/health", "", nil)
	if status != http.StatusOK || !env.Success {
		t.Fatalf("unexpected health response %d %+v", status, env)
	}
}

func TestAuthenticationAndRoleFailures(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(http.MethodPost, "/api/contests", "", map[string]string{"title": "x"})
	expectError(t, status, env, http.StatusUnauthorized, "UNAUTHORIZED")

	status, env = s.do(http.MethodPost, "/api/contests", "not-a-token", map[string]string{"title": "x"})
	expectError(t, status, env, http.StatusUnauthorized, "UNAUTHORIZED")

	contestee := s.token("u1", model.RoleContestee)
	status, env = s.do(http.MethodPost, "/api/contests", contestee, map[string]string{"title": "x"})
	expectError(t, status, env, http.StatusForbidden, "FORBIDDEN")

	creator := s.token("c1", model.RoleCreator)
	status, env = s.do(http.MethodPost, "/api/contests/x/mcq/y/submit", creator, map[string]int{"selectedOptionIndex": 0})
	expectError(t, status, env, http.StatusForbidden, "FORBIDDEN")
}

func TestMcqSubmissionFlow(t *testing.T) {
	s := newTestServer(t)
	creator := s.token("c1", model.RoleCreator)
	contestee := s.token("u1", model.RoleContestee)
	now := time.Now()

	c := s.createContest(creator, now.Add(-time.Hour), now.Add(time.Hour))
	qid := s.addMcq(creator, c.ID, 1, 5)
	submitPath := "/api/contests/" + c.ID + "/mcq/" + qid + "/submit"

	status, env := s.do(http.MethodPost, submitPath, contestee, map[string]int{"selectedOptionIndex": 1})
	if status != http.StatusCreated {
		t.Fatalf("submit: %d %v", status, env.Error)
	}
	var result model.McqResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if !result.IsCorrect || result.PointsEarned != 5 {
		t.Fatalf("expected {true 5}, got %+v", result)
	}

	status, env = s.do(http.MethodPost, submitPath, contestee, map[string]int{"selectedOptionIndex": 1})
	expectError(t, status, env, http.StatusBadRequest, "ALREADY_SUBMITTED")

	status, env = s.do(http.MethodGet, "/api/contests/"+c.Slug, contestee, nil)
	if status != http.StatusOK {
		t.Fatalf("get contest: %d %v", status, env.Error)
	}
	if strings.Contains(string(env.Data), "correctOptionIndex") {
		t.Fatalf("contestee view leaked the answer: %s", env.Data)
	}

	status, env = s.do(http.MethodGet, "/api/contests/"+c.ID+"/leaderboard", contestee, nil)
	if status != http.StatusOK {
		t.Fatalf("leaderboard: %d %v", status, env.Error)
	}
	var board model.Leaderboard
	if err := json.Unmarshal(env.Data, &board); err != nil {
		t.Fatalf("decode leaderboard: %v", err)
	}
	if len(board.Entries) != 1 || board.Entries[0].UserID != "u1" || board.Entries[0].Points != 5 {
		t.Fatalf("unexpected leaderboard %+v", board.Entries)
	}
}

func TestSubmitToClosedContest(t *testing.T) {
	s := newTestServer(t)
	creator := s.token("c1", model.RoleCreator)
	contestee := s.token("u1", model.RoleContestee)
	now := time.Now()

	c := s.createContest(creator, now.Add(-2*time.Hour), now.Add(-time.Hour))
	qid := s.addMcq(creator, c.ID, 0, 1)

	status, env := s.do(http.MethodPost, "/api/contests/"+c.ID+"/mcq/"+qid+"/submit", contestee, map[string]int{"selectedOptionIndex": 0})
	expectError(t, status, env, http.StatusBadRequest, "CONTEST_NOT_ACTIVE")
}

func TestRequestValidation(t *testing.T) {
	s := newTestServer(t)
	creator := s.token("c1", model.RoleCreator)
	now := time.Now()

	status, env := s.do(http.MethodPost, "/api/contests", creator, map[string]interface{}{
		"title":     "Backwards",
		"startTime": now.Add(time.Hour).Format(time.RFC3339),
		"endTime":   now.Format(time.RFC3339),
	})
	expectError(t, status, env, http.StatusBadRequest, "INVALID_REQUEST")

	status, env = s.do(http.MethodPost, "/api/contests", creator, map[string]interface{}{"startTime": "yesterday"})
	expectError(t, status, env, http.StatusBadRequest, "INVALID_REQUEST")

	status, env = s.do(http.MethodGet, "/api/contests/unknown-contest", creator, nil)
	expectError(t, status, env, http.StatusNotFound, "CONTEST_NOT_FOUND")

	status, env = s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "nobody@example.com", "password": "secret1"})
	expectError(t, status, env, http.StatusUnauthorized, "INVALID_CREDENTIALS")
}

func TestSignupThenUseToken(t *testing.T) {
	s := newTestServer(t)
	status, env := s.do(http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name": "Grace", "email": "grace@example.com", "password": "hopper1", "role": "creator",
	})
	if status != http.StatusCreated {
		t.Fatalf("signup: %d %v", status, env.Error)
	}
	status, env = s.do(http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name": "Grace", "email": "grace@example.com", "password": "hopper1",
	})
	expectError(t, status, env, http.StatusBadRequest, "EMAIL_ALREADY_EXISTS")

	status, env = s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "grace@example.com", "password": "hopper1"})
	if status != http.StatusOK {
		t.Fatalf("login: %d %v", status, env.Error)
	}
	var auth service.AuthResponse
	if err := json.Unmarshal(env.Data, &auth); err != nil {
		t.Fatalf("decode login: %v", err)
	}

	status, env = s.do(http.MethodGet, "/api/auth/me", auth.Token, nil)
	if status != http.StatusOK || !strings.Contains(string(env.Data), "grace@example.com") || strings.Contains(string(env.Data), "password") {
		t.Fatalf("me: %d %s", status, env.Data)
	}
	status, env = s.do(http.MethodGet, "/api/auth/me", s.token("ghost", model.RoleCreator), nil)
	expectError(t, status, env, http.StatusUnauthorized, "UNAUTHORIZED")

	now := time.Now()
	c := s.createContest(auth.Token, now, now.Add(time.Hour))
	if c.CreatorID != auth.User.ID {
		t.Fatalf("contest creator %s, want %s", c.CreatorID, auth.User.ID)
	}
}

func TestLiveLeaderboardPushesStandings(t *testing.T) {
	s := newTestServer(t)
	creator := s.token("c1", model.RoleCreator)
	contestee := s.token("u1", model.RoleContestee)
	now := time.Now()
	c := s.createContest(creator, now.Add(-time.Hour), now.Add(time.Hour))
	qid := s.addMcq(creator, c.ID, 0, 4)

	u := "ws" + strings.TrimPrefix(s.srv.URL, "http") + "/api/contests/" + c.ID + "/leaderboard/live"
	header := http.Header{}
	header.Set("Authorization", "Bearer "+contestee)
	conn, _, err := websocket.DefaultDialer.Dial(u, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	first := readBoard(t, conn)
	if len(first.Entries) != 0 {
		t.Fatalf("expected empty board, got %+v", first.Entries)
	}

	if status, env := s.do(http.MethodPost, "/api/contests/"+c.ID+"/mcq/"+qid+"/submit", contestee, map[string]int{"selectedOptionIndex": 0}); status != http.StatusCreated {
		t.Fatalf("submit: %d %v", status, env.Error)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		board := readBoard(t, conn)
		if len(board.Entries) == 1 && board.Entries[0].Points == 4 {
			return
		}
	}
	t.Fatalf("live leaderboard never reflected the submission")
}

func TestLiveLeaderboardRejectsAnonymous(t *testing.T) {
	s := newTestServer(t)
	u := "ws" + strings.TrimPrefix(s.srv.URL, "http") + "/api/contests/any/leaderboard/live"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatalf("expected handshake failure")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 handshake response, got %v", resp)
	}
}

func readBoard(t *testing.T, conn *websocket.Conn) model.Leaderboard {
	t.Helper()
	var msg struct {
		Type    string            `json:"type"`
		Payload model.Leaderboard `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != "leaderboard" {
		t.Fatalf("expected leaderboard message, got %s", msg.Type)
	}
	return msg.Payload
}
