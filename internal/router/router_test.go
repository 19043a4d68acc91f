package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/instant-messaging/internal/auth"
	"github.com/iliyamo/instant-messaging/internal/handler"
	"github.com/iliyamo/instant-messaging/internal/middleware"
	"github.com/iliyamo/instant-messaging/internal/repository/memory"
	"github.com/iliyamo/instant-messaging/internal/service"
)

// newTestServer assembles the full HTTP surface over the in-memory
// store, with rate limiting disabled (no Redis in tests).
func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	domain, err := auth.NewDomain(auth.Config{
		TokenSizeBytes:   32,
		TokenTTL:         24 * time.Hour,
		TokenRollingTTL:  time.Hour,
		MaxTokensPerUser: 3,
		BcryptCost:       bcrypt.MinCost,
	})
	require.NoError(t, err)

	trx := memory.NewManager(memory.NewStore())
	users := service.NewUserService(trx, domain, nil)
	events := service.NewEventService(trx, time.Hour)
	t.Cleanup(events.Close)
	channels := service.NewChannelService(trx, nil)
	invitations := service.NewInvitationService(trx, nil)
	messages := service.NewMessageService(trx, events, nil)

	passthrough := func(next echo.HandlerFunc) echo.HandlerFunc { return next }

	e := echo.New()
	Register(e, Handlers{
		Auth:        handler.NewAuthHandler(users),
		Channels:    handler.NewChannelHandler(channels),
		Invitations: handler.NewInvitationHandler(invitations),
		Messages:    handler.NewMessageHandler(messages),
		Events:      handler.NewEventsHandler(events, channels),
	}, middleware.TokenAuth(users), passthrough)
	return e
}

func do(t *testing.T, e *echo.Echo, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

func TestHealthz(t *testing.T) {
	e := newTestServer(t)
	rec := do(t, e, http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
}

func TestFullMessagingFlow(t *testing.T) {
	r := require.New(t)
	e := newTestServer(t)

	// Bootstrap user registers without an invitation and logs in.
	rec := do(t, e, http.MethodPost, "/v1/auth/register", "",
		`{"username":"alice","password":"Aa1#2345"}`)
	r.Equal(http.StatusCreated, rec.Code)

	rec = do(t, e, http.MethodPost, "/v1/auth/login", "",
		`{"username":"alice","password":"Aa1#2345"}`)
	r.Equal(http.StatusOK, rec.Code)
	var login struct {
		Token string `json:"token"`
	}
	decode(t, rec, &login)
	r.NotEmpty(login.Token)

	// Alice creates a private channel and invites a friend.
	rec = do(t, e, http.MethodPost, "/v1/channels", login.Token,
		`{"name":"general","is_public":false}`)
	r.Equal(http.StatusCreated, rec.Code)
	var channel struct {
		ID uint64 `json:"id"`
	}
	decode(t, rec, &channel)

	expires := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)
	rec = do(t, e, http.MethodPost, fmt.Sprintf("/v1/channels/%d/invitations", channel.ID), login.Token,
		fmt.Sprintf(`{"access":"read-write","expires_at":%q}`, expires))
	r.Equal(http.StatusCreated, rec.Code)
	var inv struct {
		Token string `json:"token"`
	}
	decode(t, rec, &inv)

	// Bob registers through the invitation and lands in the channel.
	rec = do(t, e, http.MethodPost, "/v1/auth/register", "",
		fmt.Sprintf(`{"username":"bob","password":"Aa1#2345","invitation_token":%q}`, inv.Token))
	r.Equal(http.StatusCreated, rec.Code)

	rec = do(t, e, http.MethodPost, "/v1/auth/login", "",
		`{"username":"bob","password":"Aa1#2345"}`)
	r.Equal(http.StatusOK, rec.Code)
	var bobLogin struct {
		Token string `json:"token"`
	}
	decode(t, rec, &bobLogin)

	rec = do(t, e, http.MethodGet, fmt.Sprintf("/v1/channels/%d/access", channel.ID), bobLogin.Token, "")
	r.Equal(http.StatusOK, rec.Code)
	r.Contains(rec.Body.String(), "read-write")

	// Bob posts; both read the history newest first.
	rec = do(t, e, http.MethodPost, fmt.Sprintf("/v1/channels/%d/messages", channel.ID), bobLogin.Token,
		`{"content":"hi alice"}`)
	r.Equal(http.StatusCreated, rec.Code)

	rec = do(t, e, http.MethodGet, fmt.Sprintf("/v1/channels/%d/messages?limit=10&offset=0", channel.ID), login.Token, "")
	r.Equal(http.StatusOK, rec.Code)
	var msgs []struct {
		Content string `json:"content"`
	}
	decode(t, rec, &msgs)
	r.Len(msgs, 1)
	r.Equal("hi alice", msgs[0].Content)

	// Logout kills the session.
	rec = do(t, e, http.MethodPost, "/v1/auth/logout", bobLogin.Token, "")
	r.Equal(http.StatusNoContent, rec.Code)
	rec = do(t, e, http.MethodGet, "/v1/users/me", bobLogin.Token, "")
	r.Equal(http.StatusUnauthorized, rec.Code)
}

func TestProtectedRoutesRejectAnonymous(t *testing.T) {
	e := newTestServer(t)
	for _, path := range []string{"/v1/users/me", "/v1/channels", "/v1/channels/1/messages"} {
		rec := do(t, e, http.MethodGet, path, "", "")
		require.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestRegisterWithoutInvitationAfterBootstrap(t *testing.T) {
	r := require.New(t)
	e := newTestServer(t)

	rec := do(t, e, http.MethodPost, "/v1/auth/register", "",
		`{"username":"alice","password":"Aa1#2345"}`)
	r.Equal(http.StatusCreated, rec.Code)

	rec = do(t, e, http.MethodPost, "/v1/auth/register", "",
		`{"username":"bob","password":"Aa1#2345"}`)
	r.Equal(http.StatusBadRequest, rec.Code)
}
