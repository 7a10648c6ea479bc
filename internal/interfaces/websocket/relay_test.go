package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/technexus/storefront-backend/internal/config"
	"github.com/technexus/storefront-backend/internal/pkg/auth"
	"github.com/technexus/storefront-backend/internal/pkg/logger"
)

type fakeTokens map[string]uuid.UUID

func (f fakeTokens) ValidateAccessToken(token string) (*auth.Claims, error) {
	id, ok := f[token]
	if !ok {
		return nil, auth.ErrInvalidToken
	}
	return &auth.Claims{UserID: id}, nil
}

type fakeRoles map[uuid.UUID]bool

func (f fakeRoles) IsAdmin(_ context.Context, id uuid.UUID) (bool, error) {
	return f[id], nil
}

type fakePresence struct {
	mu      sync.Mutex
	online  map[uuid.UUID]bool
	touches map[uuid.UUID]int
	err     error
}

func newFakePresence() *fakePresence {
	return &fakePresence{online: map[uuid.UUID]bool{}, touches: map[uuid.UUID]int{}}
}

func (p *fakePresence) Touch(_ context.Context, id uuid.UUID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.touches[id]++
	return nil
}

func (p *fakePresence) Members(context.Context) ([]uuid.UUID, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	out := make([]uuid.UUID, 0, len(p.online))
	for id := range p.online {
		out = append(out, id)
	}
	return out, nil
}

func (p *fakePresence) touchCount(id uuid.UUID) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.touches[id]
}

func (p *fakePresence) Online(_ context.Context, id uuid.UUID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.online[id] = true
	return nil
}

func (p *fakePresence) Offline(_ context.Context, id uuid.UUID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.online, id)
	return nil
}

func (p *fakePresence) isOnline(id uuid.UUID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.online[id]
}

type relayFixture struct {
	relay    *Relay
	server   *httptest.Server
	registry *Registry
	presence *fakePresence
	tokens   fakeTokens
}

func newRelayFixture(t *testing.T, users map[string]uuid.UUID, admins fakeRoles) *relayFixture {
	return newRelayFixtureWith(t, testChatConfig(), users, admins)
}

func newRelayFixtureWith(t *testing.T, chatCfg config.ChatConfig, users map[string]uuid.UUID, admins fakeRoles) *relayFixture {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{Chat: chatCfg}
	cfg.Security.CORSAllowedOrigins = []string{"*"}

	registry := NewRegistry()
	presence := newFakePresence()
	relay := NewRelay(registry, fakeTokens(users), admins, presence, cfg, logger.Discard())

	router := gin.New()
	router.GET("/ws", relay.Handle)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &relayFixture{relay: relay, server: srv, registry: registry, presence: presence, tokens: users}
}

func (f *relayFixture) dial(t *testing.T, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func (f *relayFixture) connect(t *testing.T, token string) *websocket.Conn {
	t.Helper()
	conn := f.dial(t, "?token="+token)
	id := f.tokens[token]
	require.Eventually(t, func() bool {
		_, ok := f.registry.Get(id)
		return ok
	}, 2*time.Second, 10*time.Millisecond)
	return conn
}

func readCloseCode(t *testing.T, conn *websocket.Conn) int {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	var ce *websocket.CloseError
	require.True(t, errors.As(err, &ce), "expected close error, got %v", err)
	return ce.Code
}

func TestRelayRejectsMissingToken(t *testing.T) {
	f := newRelayFixture(t, nil, nil)
	conn := f.dial(t, "")
	assert.Equal(t, CloseAuthRequired, readCloseCode(t, conn))
	assert.Equal(t, 0, f.registry.Len())
}

func TestRelayRejectsInvalidToken(t *testing.T) {
	f := newRelayFixture(t, map[string]uuid.UUID{"good": uuid.New()}, nil)
	conn := f.dial(t, "?token=forged")
	assert.Equal(t, CloseInvalidToken, readCloseCode(t, conn))
	assert.Equal(t, 0, f.registry.Len())
}

func TestRelayForwardsTyping(t *testing.T) {
	alice, bob := uuid.New(), uuid.New()
	f := newRelayFixture(t, map[string]uuid.UUID{"alice": alice, "bob": bob}, nil)

	aliceConn := f.connect(t, "alice")
	bobConn := f.connect(t, "bob")
	assert.True(t, f.presence.isOnline(alice))

	require.NoError(t, aliceConn.WriteJSON(map[string]any{"type": "typing", "receiverId": bob.String(), "isTyping": true}))

	_ = bobConn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got typingFrame
	require.NoError(t, bobConn.ReadJSON(&got))
	assert.Equal(t, "typing", got.Type)
	assert.Equal(t, alice, got.SenderID)
	assert.True(t, got.IsTyping)
}

func TestRelaySkipsBadFramesAndOfflineReceivers(t *testing.T) {
	alice, bob := uuid.New(), uuid.New()
	f := newRelayFixture(t, map[string]uuid.UUID{"alice": alice, "bob": bob}, nil)

	aliceConn := f.connect(t, "alice")
	bobConn := f.connect(t, "bob")

	require.NoError(t, aliceConn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	require.NoError(t, aliceConn.WriteJSON(map[string]any{"type": "typing", "receiverId": uuid.New().String(), "isTyping": true}))
	require.NoError(t, aliceConn.WriteJSON(map[string]any{"type": "typing", "receiverId": "nope"}))
	require.NoError(t, aliceConn.WriteJSON(map[string]any{"type": "typing", "receiverId": bob.String(), "isTyping": false}))

	_ = bobConn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got typingFrame
	require.NoError(t, bobConn.ReadJSON(&got), "connection survives bad frames")
	assert.Equal(t, alice, got.SenderID)
	assert.False(t, got.IsTyping)
}

func TestRelayDeliversNotificationsAndCleansUp(t *testing.T) {
	admin, customer := uuid.New(), uuid.New()
	f := newRelayFixture(t, map[string]uuid.UUID{"admin": admin, "customer": customer}, fakeRoles{admin: true})

	adminConn := f.connect(t, "admin")
	customerConn := f.connect(t, "customer")

	assert.Equal(t, 1, f.registry.SendToAdmins([]byte(`{"type":"message"}`)))
	_ = adminConn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := adminConn.ReadMessage()
	require.NoError(t, err)
	var frame map[string]any
	require.NoError(t, json.Unmarshal(data, &frame))
	assert.Equal(t, "message", frame["type"])

	require.NoError(t, customerConn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	require.Eventually(t, func() bool {
		_, ok := f.registry.Get(customer)
		return !ok
	}, 2*time.Second, 10*time.Millisecond)
	assert.False(t, f.presence.isOnline(customer))
}

func TestRelayReconnectReplacesHandle(t *testing.T) {
	alice := uuid.New()
	f := newRelayFixture(t, map[string]uuid.UUID{"alice": alice}, nil)

	first := f.connect(t, "alice")
	firstClient, _ := f.registry.Get(alice)

	f.dial(t, "?token=alice")
	require.Eventually(t, func() bool {
		c, ok := f.registry.Get(alice)
		return ok && c != firstClient
	}, 2*time.Second, 10*time.Millisecond)

	first.Close()
	time.Sleep(100 * time.Millisecond)
	_, ok := f.registry.Get(alice)
	assert.True(t, ok, "closing the old connection keeps the new one registered")
}

func TestRelayPongRefreshesPresence(t *testing.T) {
	alice := uuid.New()
	cfg := testChatConfig()
	cfg.PongWait = 200 * time.Millisecond
	f := newRelayFixtureWith(t, cfg, map[string]uuid.UUID{"alice": alice}, nil)

	conn := f.connect(t, "alice")
	// Reading lets the dialer answer server pings with pongs.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	require.Eventually(t, func() bool {
		return f.presence.touchCount(alice) >= 3
	}, 3*time.Second, 20*time.Millisecond)

	time.Sleep(2 * cfg.PongWait)
	_, ok := f.registry.Get(alice)
	assert.True(t, ok, "connection outlives several pong windows")
	assert.Equal(t, []uuid.UUID{alice}, f.relay.Online(context.Background()))
}

func TestRelayOnlineFallsBackToRegistry(t *testing.T) {
	alice, bob := uuid.New(), uuid.New()
	f := newRelayFixture(t, map[string]uuid.UUID{"alice": alice, "bob": bob}, nil)
	f.connect(t, "alice")
	f.connect(t, "bob")

	assert.ElementsMatch(t, []uuid.UUID{alice, bob}, f.relay.Online(context.Background()))

	f.presence.mu.Lock()
	f.presence.online = map[uuid.UUID]bool{}
	f.presence.err = errors.New("redis down")
	f.presence.mu.Unlock()

	assert.ElementsMatch(t, []uuid.UUID{alice, bob}, f.relay.Online(context.Background()))

	noPresence := NewRelay(f.registry, fakeTokens{}, fakeRoles{}, nil, &config.Config{Chat: testChatConfig()}, logger.Discard())
	assert.ElementsMatch(t, []uuid.UUID{alice, bob}, noPresence.Online(context.Background()))
}
