package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userlist/internal/application/query"
	"userlist/internal/application/services"
	"userlist/internal/client"
	"userlist/internal/domain/entities"
	"userlist/internal/infrastructure"
	"userlist/internal/infrastructure/db/postgres"
	"userlist/internal/view/userlist"
)

type stubFetcher struct {
	users []entities.User
	err   error
	block bool
}

func (f stubFetcher) FetchUsers(ctx context.Context) ([]entities.User, error) {
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.users, f.err
}

type failingService struct{}

func (failingService) ListUsers(context.Context) (*query.UserQueryListResult, error) {
	return nil, errors.New("db down")
}

func (failingService) Seed(context.Context, []*entities.User) (int, error) { return 0, nil }

func newTestRouter(t *testing.T, fetcher userlist.Fetcher, limiter *infrastructure.RateLimiter) *echo.Echo {
	t.Helper()
	db, err := postgres.Open("file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = postgres.Close(db) })

	svc := services.NewUserService(postgres.NewUserRepository(db), nil, nil)
	_, err = svc.Seed(context.Background(), []*entities.User{{ID: "1", Name: "Ada"}, {ID: "2", Name: "Grace"}})
	require.NoError(t, err)

	h := NewHandler(svc, fetcher, "Users", time.Second, nil)
	return NewRouter(h, limiter, nil)
}

func do(e *echo.Echo, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(newTestRouter(t, stubFetcher{}, nil), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestListUsers(t *testing.T) {
	rec := do(newTestRouter(t, stubFetcher{}, nil), "/api/users")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":"1","name":"Ada"},{"id":"2","name":"Grace"}]`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestListUsers_ServiceError(t *testing.T) {
	e := NewRouter(NewHandler(failingService{}, stubFetcher{}, "Users", time.Second, nil), nil, nil)
	rec := do(e, "/api/users")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, Response{Status: "error", Message: "Failed to list users", Code: http.StatusInternalServerError}, resp)
}

func TestListUsers_RateLimited(t *testing.T) {
	limiter := infrastructure.NewRateLimiter(0.001, 1, 0)
	defer limiter.Close()
	e := newTestRouter(t, stubFetcher{}, limiter)

	assert.Equal(t, http.StatusOK, do(e, "/api/users").Code)
	rec := do(e, "/api/users")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "Too many requests")

	// The page and health probe are not limited.
	assert.Equal(t, http.StatusOK, do(e, "/health").Code)
}

func TestPage_RendersUsers(t *testing.T) {
	e := newTestRouter(t, stubFetcher{users: []entities.User{{ID: "1", Name: "Ada"}, {ID: "2", Name: "Grace"}}}, nil)
	rec := do(e, "/")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<header><h1>Users</h1></header>")
	assert.Contains(t, body, `<main><ul class="user-list" data-status="loaded"><li data-key="1">Ada</li><li data-key="2">Grace</li></ul></main>`)
	assert.NotContains(t, body, userlist.LoadingPlaceholder)
}

func TestPage_FetchFailureRendersEmptyList(t *testing.T) {
	e := newTestRouter(t, stubFetcher{err: errors.New("connection refused")}, nil)
	rec := do(e, "/")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<main><ul class="user-list" data-status="failed"></ul></main>`)
}

func TestPage_PendingRendersPlaceholder(t *testing.T) {
	db, err := postgres.Open("file::memory:")
	require.NoError(t, err)
	defer postgres.Close(db)
	svc := services.NewUserService(postgres.NewUserRepository(db), nil, nil)
	e := NewRouter(NewHandler(svc, stubFetcher{block: true}, "Users", 20*time.Millisecond, nil), nil, nil)

	rec := do(e, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<main>"+userlist.LoadingPlaceholder+"</main>")
}

func TestPage_AgainstOwnAPI(t *testing.T) {
	db, err := postgres.Open("file::memory:")
	require.NoError(t, err)
	defer postgres.Close(db)
	svc := services.NewUserService(postgres.NewUserRepository(db), nil, nil)
	_, err = svc.Seed(context.Background(), []*entities.User{{ID: "a", Name: "Alice"}})
	require.NoError(t, err)

	api := httptest.NewServer(NewRouter(NewHandler(svc, stubFetcher{}, "Users", time.Second, nil), nil, nil))
	defer api.Close()

	e := NewRouter(NewHandler(svc, client.NewUsersClient(api.URL, nil), "Users", time.Second, nil), nil, nil)
	rec := do(e, "/")
	assert.Contains(t, rec.Body.String(), `<li data-key="a">Alice</li>`)
}

func doFrom(e *echo.Echo, target, remoteAddr string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.RemoteAddr = remoteAddr
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestListUsers_ForwardedHeadersDoNotBypassLimit(t *testing.T) {
	limiter := infrastructure.NewRateLimiter(0.001, 1, 0)
	defer limiter.Close()
	e := newTestRouter(t, stubFetcher{}, limiter)

	allowed := 0
	for i := 0; i < 20; i++ {
		header := http.Header{}
		header.Set(echo.HeaderXForwardedFor, fmt.Sprintf("10.1.0.%d", i))
		header.Set(echo.HeaderXRealIP, fmt.Sprintf("10.2.0.%d", i))
		if doFrom(e, "/api/users", "198.51.100.7:40000", header).Code == http.StatusOK {
			allowed++
		}
	}

	assert.Equal(t, 1, allowed)
	assert.Equal(t, 1, limiter.Len())
}

func TestListUsers_LoopbackPeerNotLimited(t *testing.T) {
	limiter := infrastructure.NewRateLimiter(0.001, 1, 0)
	defer limiter.Close()
	e := newTestRouter(t, stubFetcher{}, limiter)

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, doFrom(e, "/api/users", "127.0.0.1:5000", nil).Code)
		assert.Equal(t, http.StatusOK, doFrom(e, "/api/users", "[::1]:5000", nil).Code)
	}
	assert.Zero(t, limiter.Len())
}

func TestPage_SelfFetchSurvivesLimiter(t *testing.T) {
	db, err := postgres.Open("file::memory:")
	require.NoError(t, err)
	defer postgres.Close(db)
	svc := services.NewUserService(postgres.NewUserRepository(db), nil, nil)
	_, err = svc.Seed(context.Background(), []*entities.User{{ID: "1", Name: "Ada"}})
	require.NoError(t, err)

	limiter := infrastructure.NewRateLimiter(0.001, 2, 0)
	defer limiter.Close()

	// The page fetches from the same server it is rendered by.
	server := httptest.NewUnstartedServer(nil)
	fetcher := client.NewUsersClient("http://"+server.Listener.Addr().String(), nil)
	e := NewRouter(NewHandler(svc, fetcher, "Users", 5*time.Second, nil), limiter, nil)
	server.Config.Handler = e
	server.Start()
	defer server.Close()

	for i := 1; i <= 5; i++ {
		rec := doFrom(e, "/", fmt.Sprintf("203.0.113.%d:1234", i), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `data-status="loaded"><li data-key="1">Ada</li>`, "page %d", i)
	}

	// External API callers are still limited.
	assert.Equal(t, http.StatusOK, doFrom(e, "/api/users", "203.0.113.9:1234", nil).Code)
	assert.Equal(t, http.StatusOK, doFrom(e, "/api/users", "203.0.113.9:1234", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, doFrom(e, "/api/users", "203.0.113.9:1234", nil).Code)
}
