package router

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkpress/internal/auth"
	"inkpress/internal/config"
	apperrors "inkpress/internal/errors"
	"inkpress/internal/handler"
	"inkpress/internal/model"
	"inkpress/internal/service"
	"inkpress/internal/upload"
)

const testSecret = "router-test-secret"

// stubAuthService satisfies service.AuthService for wiring; the routes under
// test never reach it.
type stubAuthService struct{}

func (stubAuthService) Register(ctx context.Context, username, password string) (*model.User, error) {
	return &model.User{ID: 1, Username: username}, nil
}

func (stubAuthService) Login(ctx context.Context, username, password string) (string, *model.User, error) {
	return "", nil, apperrors.ErrInvalidCredentials
}

func (stubAuthService) Logout(ctx context.Context, token string) error {
	return nil
}

// stubPostService records whether the secured handlers were reached and with
// which caller identity.
type stubPostService struct {
	createCalled bool
	createAuthor uint
	updateCalled bool
}

func (s *stubPostService) Create(ctx context.Context, authorID uint, title, summary, content string, cover service.CoverUpload) (*model.Post, error) {
	s.createCalled = true
	s.createAuthor = authorID
	return &model.Post{
		ID:       1,
		Title:    title,
		Cover:    cover.Path(),
		AuthorID: authorID,
		Author:   model.User{ID: authorID, Username: "alice"},
	}, nil
}

func (s *stubPostService) Update(ctx context.Context, callerID, postID uint, title, summary, content string, cover service.CoverUpload) (*model.Post, error) {
	s.updateCalled = true
	return &model.Post{
		ID:       postID,
		Title:    title,
		AuthorID: callerID,
		Author:   model.User{ID: callerID, Username: "alice"},
	}, nil
}

func (s *stubPostService) Get(ctx context.Context, id uint) (*model.Post, error) {
	return nil, apperrors.ErrPostNotFound
}

func (s *stubPostService) ListRecent(ctx context.Context) ([]model.Post, error) {
	return []model.Post{}, nil
}

// fakeTokenStore is an in-memory auth.TokenStoreInterface.
type fakeTokenStore struct {
	denied map[string]bool
}

func (f *fakeTokenStore) DenyToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	f.denied[tokenID] = true
	return nil
}

func (f *fakeTokenStore) IsDenied(ctx context.Context, tokenID string) (bool, error) {
	return f.denied[tokenID], nil
}

func newTestServer(t *testing.T) (*echo.Echo, *auth.JWTService, *fakeTokenStore, *stubPostService) {
	t.Helper()

	cfg := &config.Config{
		Auth: config.AuthConfig{JWTSecret: testSecret, TokenTTLMinute: 60},
	}
	uploads, err := upload.NewStore(t.TempDir())
	require.NoError(t, err)

	store := &fakeTokenStore{denied: map[string]bool{}}
	posts := &stubPostService{}

	e := echo.New()
	Register(
		e,
		cfg,
		store,
		handler.NewAuthHandler(stubAuthService{}, time.Hour),
		handler.NewPostHandler(posts, uploads),
		uploads,
	)

	return e, auth.NewJWTService(testSecret, time.Hour), store, posts
}

func postForm(t *testing.T) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "cover.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("image-bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.WriteField("title", "a title"))
	require.NoError(t, writer.Close())

	return &body, writer.FormDataContentType()
}

func sessionCookie(token string) *http.Cookie {
	return &http.Cookie{Name: handler.TokenCookieName, Value: token}
}

func TestSecuredRoutesRejectMissingToken(t *testing.T) {
	e, _, _, posts := newTestServer(t)

	requests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/post"},
		{http.MethodPut, "/post"},
		{http.MethodGet, "/profile"},
	}

	for _, tt := range requests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}

	assert.False(t, posts.createCalled)
	assert.False(t, posts.updateCalled)
}

func TestSecuredRoutesAcceptValidCookie(t *testing.T) {
	e, jwtService, _, posts := newTestServer(t)

	token, err := jwtService.Issue(7, "alice")
	require.NoError(t, err)

	body, contentType := postForm(t)
	req := httptest.NewRequest(http.MethodPost, "/post", body)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(sessionCookie(token))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, posts.createCalled)
	assert.Equal(t, uint(7), posts.createAuthor)

	req = httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.AddCookie(sessionCookie(token))
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"alice"`)
}

func TestSecuredRoutesRejectRevokedToken(t *testing.T) {
	e, jwtService, store, posts := newTestServer(t)

	token, err := jwtService.Issue(7, "alice")
	require.NoError(t, err)
	claims, err := jwtService.Verify(token)
	require.NoError(t, err)

	// simulate logout
	store.denied[claims.ID] = true

	body, contentType := postForm(t)
	req := httptest.NewRequest(http.MethodPost, "/post", body)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(sessionCookie(token))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, posts.createCalled)

	req = httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.AddCookie(sessionCookie(token))
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdateRejectsMalformedUpload(t *testing.T) {
	e, jwtService, _, posts := newTestServer(t)

	token, err := jwtService.Issue(7, "alice")
	require.NoError(t, err)

	// a non-multipart body can never carry a file; the update must fail
	// with 400 instead of silently proceeding without the cover
	req := httptest.NewRequest(http.MethodPut, "/post", strings.NewReader("id=3&title=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(sessionCookie(token))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, posts.updateCalled)
}
