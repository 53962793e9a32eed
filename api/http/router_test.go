package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apihttp "github.com/artem13815/copsboot/api/http"
	"github.com/artem13815/copsboot/api/http/handlers"
	"github.com/artem13815/copsboot/api/http/presenter"
	"github.com/artem13815/copsboot/pkg/entity"
	"github.com/artem13815/copsboot/pkg/health"
	"github.com/artem13815/copsboot/pkg/health/checkers"
	"github.com/artem13815/copsboot/pkg/repository/sqlite"
	"github.com/artem13815/copsboot/pkg/security/jwt"
	sqlitestore "github.com/artem13815/copsboot/pkg/storage/sqlite"
	"github.com/artem13815/copsboot/pkg/users"
)

const (
	secret = "router-test-secret"
	issuer = "copsboot"
)

// scripted hands out the queued ids first, then random ones.
type scripted struct{ queue []uuid.UUID }

func (s *scripted) NextUniqueID() uuid.UUID {
	if len(s.queue) == 0 {
		return uuid.New()
	}
	id := s.queue[0]
	s.queue = s.queue[1:]
	return id
}

var _ entity.UniqueIDGenerator[uuid.UUID] = (*scripted)(nil)

type fixture struct {
	app   *fiber.App
	token string
}

func newFixture(t *testing.T, gen entity.UniqueIDGenerator[uuid.UUID]) fixture {
	t.Helper()
	db, err := sqlitestore.Open(context.Background(), filepath.Join(t.TempDir(), "users.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := sqlite.NewUserRepository(db, users.NewIDSource(gen))
	svc := users.NewService(repo, zerolog.Nop())

	app := apihttp.NewApp(zerolog.Nop())
	apihttp.Register(app,
		handlers.NewHealthHandler(health.NewService(checkers.NewSQLChecker("sqlite", db))),
		handlers.NewUsersHandler(svc),
		jwt.NewAuthMiddleware(secret, issuer),
	)

	now := time.Now()
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwt.Claims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:    issuer,
			Subject:   "officer-1",
			ExpiresAt: jwtlib.NewNumericDate(now.Add(time.Hour)),
		},
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return fixture{app: app, token: token}
}

func (f fixture) do(t *testing.T, method, path, body string) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Authorization", "Bearer "+f.token)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func decodeUser(t *testing.T, data []byte) presenter.UserResponse {
	t.Helper()
	var out presenter.UserResponse
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestUsers_CreateThenFindByEmail(t *testing.T) {
	u := uuid.New()
	f := newFixture(t, &scripted{queue: []uuid.UUID{u}})

	status, data := f.do(t, http.MethodPost, "/api/v1/users", `{"email":"a@example.com"}`)
	require.Equal(t, http.StatusCreated, status, string(data))
	created := decodeUser(t, data)
	assert.Equal(t, u.String(), created.ID)
	assert.Equal(t, "a@example.com", created.Email)

	status, data = f.do(t, http.MethodGet, "/api/v1/users/by-email?email=A@EXAMPLE.COM", "")
	require.Equal(t, http.StatusOK, status, string(data))
	found := decodeUser(t, data)
	assert.Equal(t, created.ID, found.ID)

	id, err := users.ParseUserID(found.ID)
	require.NoError(t, err)
	assert.True(t, id.Equal(users.MustUserID(u)))
}

func TestUsers_Lifecycle(t *testing.T) {
	f := newFixture(t, entity.InMemoryUniqueIDGenerator{})

	status, data := f.do(t, http.MethodPost, "/api/v1/users", `{"email":"b@example.com"}`)
	require.Equal(t, http.StatusCreated, status, string(data))
	id := decodeUser(t, data).ID

	status, _ = f.do(t, http.MethodPost, "/api/v1/users", `{"email":"B@example.com"}`)
	assert.Equal(t, http.StatusConflict, status)

	status, _ = f.do(t, http.MethodPost, "/api/v1/users", `{"email":"not-an-email"}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = f.do(t, http.MethodPost, "/api/v1/users", `{`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, data = f.do(t, http.MethodGet, "/api/v1/users/"+id, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "b@example.com", decodeUser(t, data).Email)

	status, data = f.do(t, http.MethodPut, "/api/v1/users/"+id, `{"email":"c@example.com"}`)
	require.Equal(t, http.StatusOK, status, string(data))
	assert.Equal(t, "c@example.com", decodeUser(t, data).Email)

	status, data = f.do(t, http.MethodGet, "/api/v1/users?limit=10", "")
	require.Equal(t, http.StatusOK, status)
	var page presenter.UserListResponse
	require.NoError(t, json.Unmarshal(data, &page))
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Users, 1)
	assert.Equal(t, id, page.Users[0].ID)

	status, _ = f.do(t, http.MethodDelete, "/api/v1/users/"+id, "")
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = f.do(t, http.MethodGet, "/api/v1/users/"+id, "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = f.do(t, http.MethodPut, "/api/v1/users/"+id, `{"email":"d@example.com"}`)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestUsers_BadRequests(t *testing.T) {
	f := newFixture(t, entity.InMemoryUniqueIDGenerator{})

	status, _ := f.do(t, http.MethodGet, "/api/v1/users/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = f.do(t, http.MethodGet, "/api/v1/users/"+uuid.Nil.String(), "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = f.do(t, http.MethodGet, "/api/v1/users/by-email?email=nobody@example.com", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestUsers_RequireToken(t *testing.T) {
	f := newFixture(t, entity.InMemoryUniqueIDGenerator{})
	resp, err := f.app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/users", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	f := newFixture(t, entity.InMemoryUniqueIDGenerator{})
	for _, path := range []string{"/api/v1/health", "/api/v1/ready", "/metrics"} {
		resp, err := f.app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}
