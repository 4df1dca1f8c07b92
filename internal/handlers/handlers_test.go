package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pointplay-backend/internal/handlers"
	"pointplay-backend/internal/models"
	"pointplay-backend/internal/services"
	"pointplay-backend/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router   *gin.Engine
	hub      *handlers.WebSocketHub
	sessions *services.SessionManager
	kv       *store.MemoryStore
}

func newTestServer(t *testing.T, opts ...services.SessionOption) *testServer {
	t.Helper()

	kv := store.NewMemoryStore()
	hub := handlers.NewWebSocketHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	sessions := services.NewSessionManager(kv, hub, opts...)
	router := handlers.NewRouter(handlers.RouterDeps{
		Sessions:      sessions,
		JWT:           services.NewJWTService("test-secret", time.Hour),
		Hub:           hub,
		Limiter:       kv,
		PlayRateLimit: 100,
	})

	return &testServer{router: router, hub: hub, sessions: sessions, kv: kv}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

type startResponse struct {
	Token   string                 `json:"token"`
	Session models.SessionSnapshot `json:"session"`
}

func (s *testServer) start(t *testing.T, profileID string) startResponse {
	t.Helper()

	var body interface{}
	if profileID != "" {
		body = gin.H{"profile_id": profileID}
	}
	rr := s.do(t, http.MethodPost, "/auth/session", "", body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp startResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func fixed(v float64) services.RandomSource {
	return func() float64 { return v }
}

func TestStartSession(t *testing.T) {
	srv := newTestServer(t, services.WithRandomSource(fixed(0)))

	resp := srv.start(t, "")
	assert.NotEmpty(t, resp.Token)
	assert.True(t, models.ValidProfileID(resp.Session.ProfileID))
	assert.Equal(t, int64(1000), resp.Session.Balance)
	assert.Equal(t, "Guest", resp.Session.Username)
	require.Len(t, resp.Session.Activity, 1)

	rr := srv.do(t, http.MethodPost, "/auth/session", "", gin.H{"profile_id": "bad id"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCoinFlipFlow(t *testing.T) {
	srv := newTestServer(t, services.WithRandomSource(fixed(0)))
	resp := srv.start(t, "profile-coin")

	rr := srv.do(t, http.MethodPost, "/api/coinflip/play", resp.Token, gin.H{"bet": "50"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, models.MsgSelectSide, body["error"])
	assert.Equal(t, "validation", body["kind"])
	assert.Equal(t, "coin", body["surface"])

	rr = srv.do(t, http.MethodPost, "/api/coinflip/choice", resp.Token, gin.H{"side": "heads"})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = srv.do(t, http.MethodPost, "/api/coinflip/play", resp.Token, gin.H{"bet": 50})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var play struct {
		Result models.CoinFlipOutcome `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &play))
	assert.Equal(t, int64(1100), play.Result.NewBalance)
	assert.Equal(t, models.SideHeads, play.Result.Outcome)

	rr = srv.do(t, http.MethodPost, "/api/coinflip/play", resp.Token, gin.H{"bet": "5000"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "insufficient_funds", decode(t, rr)["kind"])

	stored, _, err := srv.kv.Get(t.Context(), store.BalanceKey("profile-coin"))
	require.NoError(t, err)
	assert.Equal(t, "1100", stored)
}

func TestDiceFlow(t *testing.T) {
	srv := newTestServer(t, services.WithRandomSource(fixed(0.5)))
	resp := srv.start(t, "profile-dice")

	rr := srv.do(t, http.MethodPost, "/api/dice/play", resp.Token, gin.H{"bet": "10", "number": "4"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var play struct {
		Result models.DiceRollOutcome `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &play))
	assert.Equal(t, 4, play.Result.Rolled)
	assert.Equal(t, int64(1050), play.Result.NewBalance)

	rr = srv.do(t, http.MethodPost, "/api/dice/play", resp.Token, gin.H{"bet": "10", "number": 9})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, models.MsgInvalidDicePick, body["error"])
	assert.Equal(t, "dice", body["surface"])
}

func TestBonusResetAndProfile(t *testing.T) {
	srv := newTestServer(t, services.WithRandomSource(fixed(0)))
	resp := srv.start(t, "profile-bonus")

	rr := srv.do(t, http.MethodPut, "/api/username", resp.Token, gin.H{"username": "  "})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, models.MsgInvalidUsername, decode(t, rr)["error"])

	rr = srv.do(t, http.MethodPut, "/api/username", resp.Token, gin.H{"username": " erin "})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "erin", decode(t, rr)["username"])

	rr = srv.do(t, http.MethodPost, "/api/bonus", resp.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	bonus := decode(t, rr)["bonus"].(map[string]interface{})
	assert.Equal(t, true, bonus["claimed"])
	assert.Equal(t, float64(1100), bonus["new_balance"])

	rr = srv.do(t, http.MethodPost, "/api/bonus", resp.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	bonus = decode(t, rr)["bonus"].(map[string]interface{})
	assert.Equal(t, false, bonus["claimed"])
	assert.Equal(t, float64(1100), bonus["new_balance"])

	rr = srv.do(t, http.MethodPost, "/api/reset", resp.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = srv.do(t, http.MethodGet, "/api/me", resp.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var me struct {
		Session models.SessionSnapshot `json:"session"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &me))
	assert.Equal(t, int64(1000), me.Session.Balance)
	assert.Equal(t, "erin", me.Session.Username)
	assert.False(t, me.Session.BonusClaimed)

	rr = srv.do(t, http.MethodGet, "/api/activity", resp.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, float64(4), decode(t, rr)["count"])

	// a new session on the same profile sees the persisted name
	again := srv.start(t, "profile-bonus")
	assert.Equal(t, "erin", again.Session.Username)
	assert.Equal(t, int64(1000), again.Session.Balance)
}

func TestLogoutEndsSession(t *testing.T) {
	srv := newTestServer(t, services.WithRandomSource(fixed(0)))
	resp := srv.start(t, "profile-out")

	rr := srv.do(t, http.MethodPost, "/api/logout", resp.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = srv.do(t, http.MethodGet, "/api/me", resp.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = srv.do(t, http.MethodPost, "/api/logout", resp.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestFairnessAndVerify(t *testing.T) {
	srv := newTestServer(t)
	resp := srv.start(t, "profile-fair")

	rr := srv.do(t, http.MethodGet, "/api/fairness", resp.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	data := decode(t, rr)["data"].(map[string]interface{})
	assert.Equal(t, resp.Session.SessionID, data["client_seed"])

	rr = srv.do(t, http.MethodPost, "/api/dice/play", resp.Token, gin.H{"bet": 1, "number": 3})
	require.Equal(t, http.StatusOK, rr.Code)
	var play struct {
		Result models.DiceRollOutcome `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &play))

	rr = srv.do(t, http.MethodPost, "/api/reset", resp.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	reset := decode(t, rr)["reset"].(map[string]interface{})
	seed := reset["previous_server_seed"].(string)

	rr = srv.do(t, http.MethodPost, "/api/verify", resp.Token, gin.H{
		"server_seed": seed,
		"client_seed": resp.Session.SessionID,
		"nonce":       0,
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	verification := decode(t, rr)["verification"].(map[string]interface{})
	assert.Equal(t, float64(play.Result.Rolled), verification["die_face"])
}

func TestWebSocketPushesState(t *testing.T) {
	srv := newTestServer(t, services.WithRandomSource(fixed(0)))
	resp := srv.start(t, "profile-ws")

	ts := httptest.NewServer(srv.router)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws?token=" + resp.Token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var initial struct {
		Type string                 `json:"type"`
		Data models.SessionSnapshot `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&initial))
	assert.Equal(t, handlers.MessageStateUpdate, initial.Type)
	assert.Equal(t, int64(1000), initial.Data.Balance)

	rr := srv.do(t, http.MethodPost, "/api/bonus", resp.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var update struct {
		Type string                 `json:"type"`
		Data models.SessionSnapshot `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&update))
	assert.Equal(t, handlers.MessageStateUpdate, update.Type)
	assert.Equal(t, int64(1100), update.Data.Balance)
	assert.True(t, update.Data.BonusClaimed)

	require.NoError(t, conn.WriteJSON(handlers.Message{Type: handlers.MessagePing}))
	var pong handlers.Message
	require.NoError(t, conn.ReadJSON(&pong))
	assert.Equal(t, handlers.MessagePong, pong.Type)
}
