package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/devlink/internal/common"
	"github.com/dmitrijs2005/devlink/internal/logging"
	"github.com/dmitrijs2005/devlink/internal/server/auth"
	"github.com/dmitrijs2005/devlink/internal/server/config"
	"github.com/dmitrijs2005/devlink/internal/server/posts"
	"github.com/dmitrijs2005/devlink/internal/server/users"
)

const testSecret = "test-secret"

// --- in-memory repositories ---

type memUsers struct {
	mu      sync.Mutex
	byEmail map[string]*users.User
	byID    map[string]*users.User
	seq     int
}

func newMemUsers() *memUsers {
	return &memUsers{
		byEmail: make(map[string]*users.User),
		byID:    make(map[string]*users.User),
	}
}

func (m *memUsers) Create(_ context.Context, u *users.User) (*users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[u.Email]; ok {
		return nil, common.ErrorAlreadyExists
	}
	m.seq++
	u.ID = fmt.Sprintf("u-%d", m.seq)
	u.CreatedAt = time.Now()
	m.byEmail[u.Email] = u
	m.byID[u.ID] = u
	return u, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (m *memUsers) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

type memPosts struct {
	mu      sync.Mutex
	records []*posts.Post
	seq     int
}

func (m *memPosts) Create(_ context.Context, p *posts.Post) (*posts.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	p.ID = fmt.Sprintf("p-%d", m.seq)
	p.CreatedAt = time.Now()
	m.records = append(m.records, p)
	return p, nil
}

func (m *memPosts) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// --- helpers ---

func newTestRouter(t *testing.T) (*gin.Engine, *memUsers, *memPosts) {
	t.Helper()

	cfg := &config.Config{
		SecretKey:             testSecret,
		TokenValidityDuration: time.Hour,
		CORSAllowedOrigins:    "*",
		GinMode:               gin.TestMode,
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	ur := newMemUsers()
	pr := &memPosts{}
	us := users.NewService(ur, auth.NewTestHasher(), cfg)
	ps := posts.NewService(pr)

	return NewRouter(cfg, logger, us, ps), ur, pr
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "192.0.2.10:1234"
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func tokenFrom(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func register(t *testing.T, r *gin.Engine, name, email, password string) *httptest.ResponseRecorder {
	t.Helper()
	return doJSON(t, r, http.MethodPost, "/api/users", "",
		map[string]string{"name": name, "email": email, "password": password})
}

// --- root ---

func TestPing(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

// --- registration ---

func TestRegister_Success_TokenResolvesToNewUser(t *testing.T) {
	r, ur, _ := newTestRouter(t)

	w := register(t, r, "Ann", "ann@x.com", "secret1")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	token := tokenFrom(t, w)
	userID, err := auth.GetUserIDFromToken(token, []byte(testSecret))
	require.NoError(t, err)

	stored, err := ur.GetByID(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "ann@x.com", stored.Email)
	assert.NotEqual(t, "secret1", stored.PasswordHash)
}

func TestRegister_Duplicate(t *testing.T) {
	r, ur, _ := newTestRouter(t)

	require.Equal(t, http.StatusOK, register(t, r, "Ann", "ann@x.com", "secret1").Code)

	w := register(t, r, "Ann Again", "ann@x.com", "secret2")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"errors":[{"msg":"User already exists"}]}`, w.Body.String())
	assert.Equal(t, 1, ur.count(), "no new record may be created on duplicate")
}

func TestRegister_ShapeValidation(t *testing.T) {
	r, ur, _ := newTestRouter(t)

	w := register(t, r, "", "not-an-email", "short")
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp struct {
		Errors []FieldError `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Errors, 3)
	assert.Equal(t, "name", resp.Errors[0].Param)
	assert.Equal(t, "Please enter your name", resp.Errors[0].Msg)
	assert.Equal(t, "email", resp.Errors[1].Param)
	assert.Equal(t, "Please enter a valid email", resp.Errors[1].Msg)
	assert.Equal(t, "password", resp.Errors[2].Param)
	assert.Equal(t, "Please enter a password with 6 or more characters", resp.Errors[2].Msg)

	assert.Equal(t, 0, ur.count())
}

func TestRegister_MalformedBody(t *testing.T) {
	r, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/users", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

// --- login ---

func TestLogin_Success(t *testing.T) {
	r, _, _ := newTestRouter(t)

	regToken := tokenFrom(t, register(t, r, "Ann", "ann@x.com", "secret1"))
	regID, err := auth.GetUserIDFromToken(regToken, []byte(testSecret))
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodPost, "/api/login", "",
		map[string]string{"email": "ann@x.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	loginID, err := auth.GetUserIDFromToken(tokenFrom(t, w), []byte(testSecret))
	require.NoError(t, err)
	assert.Equal(t, regID, loginID)
}

func TestLogin_UnknownEmailAndWrongPassword_Indistinguishable(t *testing.T) {
	r, _, _ := newTestRouter(t)

	require.Equal(t, http.StatusOK, register(t, r, "Ann", "ann@x.com", "secret1").Code)

	wrongPw := doJSON(t, r, http.MethodPost, "/api/login", "",
		map[string]string{"email": "ann@x.com", "password": "not-it-at-all"})
	unknown := doJSON(t, r, http.MethodPost, "/api/login", "",
		map[string]string{"email": "nobody@x.com", "password": "secret1"})

	assert.Equal(t, http.StatusBadRequest, wrongPw.Code)
	assert.Equal(t, wrongPw.Code, unknown.Code)
	assert.Equal(t, wrongPw.Body.String(), unknown.Body.String())
	assert.JSONEq(t, `{"errors":[{"msg":"Invalid email or password"}]}`, wrongPw.Body.String())
}

func TestLogin_ShapeValidation(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/login", "",
		map[string]string{"email": "not-an-email", "password": ""})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp struct {
		Errors []FieldError `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Errors, 2)
}

func TestLogin_LockoutAfterRepeatedFailures(t *testing.T) {
	r, _, _ := newTestRouter(t)

	bad := map[string]string{"email": "nobody@x.com", "password": "secret1"}

	for i := 0; i < 5; i++ {
		w := doJSON(t, r, http.MethodPost, "/api/login", "", bad)
		require.Equal(t, http.StatusBadRequest, w.Code, "attempt %d", i+1)
	}

	w := doJSON(t, r, http.MethodPost, "/api/login", "", bad)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

// --- identity enrichment ---

func TestMe_ReturnsUserWithoutDigest(t *testing.T) {
	r, _, _ := newTestRouter(t)

	token := tokenFrom(t, register(t, r, "Ann", "ann@x.com", "secret1"))

	w := doJSON(t, r, http.MethodGet, "/api/auth", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ann@x.com", body["email"])
	assert.Equal(t, "Ann", body["name"])
	assert.NotContains(t, w.Body.String(), "password")
}

func TestMe_UserGoneAfterTokenIssued(t *testing.T) {
	r, ur, _ := newTestRouter(t)

	token := tokenFrom(t, register(t, r, "Ann", "ann@x.com", "secret1"))

	// simulate an administrative delete between issuance and use
	ur.mu.Lock()
	ur.byEmail = map[string]*users.User{}
	ur.byID = map[string]*users.User{}
	ur.mu.Unlock()

	w := doJSON(t, r, http.MethodGet, "/api/auth", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// --- posts ---

func TestCreatePost_EndToEnd(t *testing.T) {
	r, _, pr := newTestRouter(t)

	// register
	regToken := tokenFrom(t, register(t, r, "Ann", "ann@x.com", "secret1"))
	annID, err := auth.GetUserIDFromToken(regToken, []byte(testSecret))
	require.NoError(t, err)

	// login returns a (possibly different) valid token
	loginResp := doJSON(t, r, http.MethodPost, "/api/login", "",
		map[string]string{"email": "ann@x.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, loginResp.Code)
	loginToken := tokenFrom(t, loginResp)

	// create a post with the login token
	w := doJSON(t, r, http.MethodPost, "/api/posts", loginToken,
		map[string]string{"title": "Hi", "body": "World"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var post posts.Post
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &post))
	assert.Equal(t, annID, post.UserID)
	assert.Equal(t, "Hi", post.Title)
	assert.Equal(t, "World", post.Body)
	assert.Equal(t, 1, pr.count())

	// without a token nothing is created
	denied := doJSON(t, r, http.MethodPost, "/api/posts", "",
		map[string]string{"title": "Nope", "body": "Nope"})
	assert.Equal(t, http.StatusUnauthorized, denied.Code)
	assert.Equal(t, 1, pr.count())
}

func TestCreatePost_ShapeValidation(t *testing.T) {
	r, _, pr := newTestRouter(t)

	token := tokenFrom(t, register(t, r, "Ann", "ann@x.com", "secret1"))

	w := doJSON(t, r, http.MethodPost, "/api/posts", token,
		map[string]string{"title": "", "body": ""})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, 0, pr.count())
}
