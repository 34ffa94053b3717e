package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/shoutout/internal/auth"
	"github.com/lalith-99/shoutout/internal/config"
	"github.com/lalith-99/shoutout/internal/engine"
	"github.com/lalith-99/shoutout/internal/models"
	"github.com/lalith-99/shoutout/internal/repository"
	"github.com/lalith-99/shoutout/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

var testMilestones = config.Milestones{
	Streak: 7, Sent: 5, Received: 5,
	ReactionsGiven: 10, ReactionsReceived: 10,
	CommentsGiven: 10, CommentsReceived: 10,
	Tagged: 5, MonthlyContributor: 5,
}

// brokenStats fails every leaderboard read, standing in for a dead database.
type brokenStats struct {
	repository.StatsRepository
}

func (brokenStats) AllCounters(context.Context, time.Time) ([]models.Counters, error) {
	return nil, errors.New("query counters: connection refused")
}

type testServer struct {
	router *gin.Engine
	store  *memory.Store
	svc    *engine.Service
}

// withDefaultWindow rebuilds the router with a different DEFAULT_WINDOW.
func (s *testServer) withDefaultWindow(t *testing.T, w engine.Window) *testServer {
	t.Helper()
	s.router = NewRouter(RouterConfig{
		Service:       s.svc,
		JWTSecret:     testSecret,
		DefaultWindow: w,
		Logger:        zaptest.NewLogger(t),
	})
	return s
}

func newTestServer(t *testing.T, stats func(repository.StatsRepository) repository.StatsRepository) *testServer {
	t.Helper()
	store := memory.New()
	var statsRepo repository.StatsRepository = store.Stats()
	if stats != nil {
		statsRepo = stats(statsRepo)
	}
	svc := engine.NewService(engine.Repositories{
		Users:     store.Users(),
		ShoutOuts: store.ShoutOuts(),
		Reactions: store.Reactions(),
		Comments:  store.Comments(),
		Stats:     statsRepo,
		Reports:   store.Reports(),
	}, testMilestones, zaptest.NewLogger(t))

	return &testServer{
		router: NewRouter(RouterConfig{
			Service:       svc,
			JWTSecret:     testSecret,
			DefaultWindow: engine.WindowAll,
			Logger:        zaptest.NewLogger(t),
		}),
		store: store,
		svc:   svc,
	}
}

// do sends body as JSON with a bearer token for userID (0 means anonymous)
// and decodes the response into out when it is non-nil.
func (s *testServer) do(t *testing.T, method, path string, userID int64, body any, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		token, err := auth.GenerateToken(userID, testSecret, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	if out != nil && w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
	}
	return w.Code
}

func (s *testServer) createShoutOut(t *testing.T, giver, receiver *models.User, vis models.Visibility) int64 {
	t.Helper()
	var so models.ShoutOut
	code := s.do(t, http.MethodPost, "/v1/shoutouts", giver.ID, gin.H{
		"receiver_id": receiver.ID,
		"message":     "great demo",
		"visibility":  vis,
	}, &so)
	require.Equal(t, http.StatusCreated, code)
	return so.ID
}

func TestHealthIsPublic(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil)

	var body map[string]string
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/health", 0, nil, &body))
	assert.Equal(t, "ok", body["status"])
}

func TestRoutesRequireToken(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil)

	for _, path := range []string{"/v1/feed", "/v1/leaderboard", "/v1/achievements", "/v1/admin/reports"} {
		assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, path, 0, nil, nil), path)
	}
}

func TestShoutOutLifecycle(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil)
	alice := s.store.AddUser("alice", "eng", models.RoleEmployee)
	bob := s.store.AddUser("bob", "eng", models.RoleEmployee)

	id := s.createShoutOut(t, alice, bob, models.VisibilityPublic)

	var page engine.FeedPage
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/feed", bob.ID, nil, &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Shoutout from alice", page.Items[0].Title)

	path := fmt.Sprintf("/v1/shoutouts/%d", id)
	assert.Equal(t, http.StatusForbidden,
		s.do(t, http.MethodPut, path, bob.ID, gin.H{"message": "hijacked"}, nil))

	var edited models.ShoutOut
	require.Equal(t, http.StatusOK,
		s.do(t, http.MethodPut, path, alice.ID, gin.H{"message": "great demo, again"}, &edited))
	assert.Equal(t, "great demo, again", edited.Message)
	assert.NotNil(t, edited.EditedAt)

	var mine engine.MyShoutOuts
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/shoutouts/mine?days=30", alice.ID, nil, &mine))
	assert.Len(t, mine.Sent, 1)
	assert.Equal(t, "30d", mine.Stats.Window)

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, path, alice.ID, nil, nil))
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/feed", bob.ID, nil, &page))
	assert.Empty(t, page.Items)
}

func TestCreateShoutOutRejectsBadInput(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil)
	alice := s.store.AddUser("alice", "eng", models.RoleEmployee)

	tests := []struct {
		name string
		body any
	}{
		{"malformed json", "not an object"},
		{"empty message", gin.H{"message": "   "}},
		{"self receiver", gin.H{"message": "me", "receiver_id": alice.ID}},
		{"unknown visibility", gin.H{"message": "hi", "visibility": "friends"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body map[string]string
			assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/v1/shoutouts", alice.ID, tt.body, &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestPrivateShoutOutIsNotFoundForOutsiders(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil)
	alice := s.store.AddUser("alice", "eng", models.RoleEmployee)
	bob := s.store.AddUser("bob", "eng", models.RoleEmployee)
	carol := s.store.AddUser("carol", "eng", models.RoleEmployee)

	id := s.createShoutOut(t, alice, bob, models.VisibilityPrivate)
	path := fmt.Sprintf("/v1/shoutouts/%d/reactions", id)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, path, bob.ID, nil, nil))
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, path, carol.ID, nil, nil))
	assert.Equal(t, http.StatusNotFound,
		s.do(t, http.MethodPost, path, carol.ID, gin.H{"kind": "like"}, nil))
}

func TestReactionToggle(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil)
	alice := s.store.AddUser("alice", "eng", models.RoleEmployee)
	bob := s.store.AddUser("bob", "eng", models.RoleEmployee)
	path := fmt.Sprintf("/v1/shoutouts/%d/reactions", s.createShoutOut(t, alice, bob, models.VisibilityPublic))

	var state engine.ReactionState
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, path, bob.ID, gin.H{"kind": "clap"}, &state))
	assert.Equal(t, engine.ReactionAdded, state.Outcome)
	assert.Equal(t, 1, state.Counts[models.ReactionClap])

	state = engine.ReactionState{}
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, path, bob.ID, gin.H{"kind": "clap"}, &state))
	assert.Equal(t, engine.ReactionRemoved, state.Outcome)
	assert.Zero(t, state.Counts.Total())

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, path, bob.ID, gin.H{"kind": "shrug"}, nil))
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, path, bob.ID, gin.H{}, nil))
}

func TestCommentFlow(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil)
	alice := s.store.AddUser("alice", "eng", models.RoleEmployee)
	bob := s.store.AddUser("bob", "eng", models.RoleEmployee)
	id := s.createShoutOut(t, alice, bob, models.VisibilityPublic)

	var comment models.Comment
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost,
		fmt.Sprintf("/v1/shoutouts/%d/comments", id), bob.ID, gin.H{"content": "thank you!"}, &comment))

	commentPath := fmt.Sprintf("/v1/comments/%d", comment.ID)
	assert.Equal(t, http.StatusForbidden,
		s.do(t, http.MethodPut, commentPath, alice.ID, gin.H{"content": "edited by alice"}, nil))

	var edit engine.CommentEdit
	require.Equal(t, http.StatusOK,
		s.do(t, http.MethodPut, commentPath, bob.ID, gin.H{"content": "thank you!"}, &edit))
	assert.Equal(t, engine.CommentUnchanged, edit.Outcome)

	var comments []models.Comment
	require.Equal(t, http.StatusOK,
		s.do(t, http.MethodGet, fmt.Sprintf("/v1/shoutouts/%d/comments", id), alice.ID, nil, &comments))
	assert.Len(t, comments, 1)

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, commentPath, bob.ID, nil, nil))
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, commentPath, bob.ID, nil, nil))
}

func TestLeaderboardAndScore(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil)
	alice := s.store.AddUser("alice", "eng", models.RoleEmployee)
	bob := s.store.AddUser("bob", "sales", models.RoleEmployee)
	s.createShoutOut(t, alice, bob, models.VisibilityPublic)

	var board engine.Leaderboard
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/leaderboard?top_n=5", alice.ID, nil, &board))
	assert.Equal(t, engine.ScopeGlobal, board.Scope)
	assert.Equal(t, "all", board.Window)
	require.Len(t, board.Entries, 2)
	// Received is worth more than sent.
	assert.Equal(t, bob.ID, board.Entries[0].UserID)

	require.Equal(t, http.StatusOK,
		s.do(t, http.MethodGet, "/v1/leaderboard?scope=departments&window=7d", alice.ID, nil, &board))
	require.Len(t, board.Entries, 1)
	assert.Equal(t, "sales", board.Entries[0].Department)
	assert.Equal(t, "7d", board.Window)

	var score engine.UserScore
	require.Equal(t, http.StatusOK,
		s.do(t, http.MethodGet, fmt.Sprintf("/v1/users/%d/score", bob.ID), alice.ID, nil, &score))
	assert.Equal(t, engine.Score(models.Counters{Received: 1}), score.Score)

	var dash engine.DashboardStats
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/dashboard", alice.ID, nil, &dash))
	assert.Equal(t, "eng", dash.Department)
	assert.Equal(t, 1, dash.DepartmentUsers)
	assert.Equal(t, 1, dash.ShoutOutsSent)

	tests := []string{
		"/v1/leaderboard?scope=weekly",
		"/v1/leaderboard?scope=department",
		"/v1/leaderboard?top_n=-1",
		"/v1/leaderboard?top_n=1000",
		"/v1/leaderboard?window=forever",
		"/v1/users/abc/score",
	}
	for _, path := range tests {
		assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, path, alice.ID, nil, nil), path)
	}
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/v1/users/999/score", alice.ID, nil, nil))
}

func TestAchievements(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil)
	alice := s.store.AddUser("alice", "eng", models.RoleEmployee)
	bob := s.store.AddUser("bob", "eng", models.RoleEmployee)
	s.createShoutOut(t, alice, bob, models.VisibilityPublic)

	var body struct {
		UserID       int64                `json:"user_id"`
		Achievements []engine.Achievement `json:"achievements"`
	}
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/achievements", alice.ID, nil, &body))
	assert.Equal(t, alice.ID, body.UserID)
	assert.Len(t, body.Achievements, 9)

	require.Equal(t, http.StatusOK,
		s.do(t, http.MethodGet, fmt.Sprintf("/v1/users/%d/achievements", bob.ID), alice.ID, nil, &body))
	assert.Equal(t, bob.ID, body.UserID)
}

func TestModerationFlow(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil)
	alice := s.store.AddUser("alice", "eng", models.RoleEmployee)
	bob := s.store.AddUser("bob", "eng", models.RoleEmployee)
	root := s.store.AddUser("root", "it", models.RoleAdmin)
	id := s.createShoutOut(t, alice, bob, models.VisibilityPublic)

	var report models.Report
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost,
		fmt.Sprintf("/v1/shoutouts/%d/reports", id), bob.ID, gin.H{"reason": "spam"}, &report))
	assert.Equal(t, models.ReportPending, report.Status)

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/v1/admin/reports", bob.ID, nil, nil))

	var pending []models.Report
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/admin/reports", root.ID, nil, &pending))
	require.Len(t, pending, 1)

	resolvePath := fmt.Sprintf("/v1/admin/reports/%d/resolve", report.ID)
	assert.Equal(t, http.StatusBadRequest,
		s.do(t, http.MethodPut, resolvePath, root.ID, gin.H{"action": "ban"}, nil))
	require.Equal(t, http.StatusOK,
		s.do(t, http.MethodPut, resolvePath, root.ID, gin.H{"action": "delete"}, &report))
	assert.Equal(t, models.ReportResolved, report.Status)
	assert.Equal(t, http.StatusConflict,
		s.do(t, http.MethodPut, resolvePath, root.ID, gin.H{"action": "dismiss"}, nil))

	// Suppressed content disappears from normal reads.
	assert.Equal(t, http.StatusNotFound,
		s.do(t, http.MethodGet, fmt.Sprintf("/v1/shoutouts/%d/comments", id), bob.ID, nil, nil))
}

func TestStorageFailureIsGeneric500(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, func(inner repository.StatsRepository) repository.StatsRepository {
		return brokenStats{inner}
	})
	alice := s.store.AddUser("alice", "eng", models.RoleEmployee)

	var body map[string]string
	assert.Equal(t, http.StatusInternalServerError,
		s.do(t, http.MethodGet, "/v1/leaderboard", alice.ID, nil, &body))
	assert.Equal(t, "failed to build leaderboard", body["error"])
	assert.NotContains(t, body["error"], "connection refused")
}

func TestDefaultWindowAppliesWhenOmitted(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil).withDefaultWindow(t, engine.Window{Days: 7})
	alice := s.store.AddUser("alice", "eng", models.RoleEmployee)
	bob := s.store.AddUser("bob", "eng", models.RoleEmployee)

	s.store.SetClock(func() time.Time { return time.Now().UTC().AddDate(0, 0, -30) })
	s.createShoutOut(t, alice, bob, models.VisibilityPublic)
	s.store.SetClock(func() time.Time { return time.Now().UTC() })
	s.createShoutOut(t, alice, bob, models.VisibilityPublic)

	var page engine.FeedPage
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/feed", bob.ID, nil, &page))
	assert.Len(t, page.Items, 1)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/feed?window=all", bob.ID, nil, &page))
	assert.Len(t, page.Items, 2)

	var mine engine.MyShoutOuts
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/shoutouts/mine", alice.ID, nil, &mine))
	assert.Len(t, mine.Sent, 1)
	assert.Equal(t, "7d", mine.Stats.Window)

	var board engine.Leaderboard
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/leaderboard", alice.ID, nil, &board))
	assert.Equal(t, "7d", board.Window)
}

func TestMineReceiverDepartmentFilter(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, nil)
	alice := s.store.AddUser("alice", "eng", models.RoleEmployee)
	bob := s.store.AddUser("bob", "eng", models.RoleEmployee)
	olga := s.store.AddUser("olga", "sales", models.RoleEmployee)
	s.createShoutOut(t, alice, bob, models.VisibilityPublic)
	s.createShoutOut(t, alice, olga, models.VisibilityDepartmentOnly)

	var mine engine.MyShoutOuts
	require.Equal(t, http.StatusOK,
		s.do(t, http.MethodGet, "/v1/shoutouts/mine?receiver_department=sales", alice.ID, nil, &mine))
	require.Len(t, mine.Sent, 1)
	assert.Equal(t, olga.ID, *mine.Sent[0].ReceiverID)
	assert.Equal(t, 2, mine.Stats.Sent)

	// The department_only shout-out from eng is still olga's own.
	require.Equal(t, http.StatusOK,
		s.do(t, http.MethodGet, "/v1/shoutouts/mine?receiver_department=all", olga.ID, nil, &mine))
	assert.Len(t, mine.Received, 1)
	assert.Equal(t, 1, mine.Stats.Received)
}
