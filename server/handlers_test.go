package server_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vidstream/go-video-backend/auth"
	"github.com/vidstream/go-video-backend/internal/config"
	fakestore "github.com/vidstream/go-video-backend/media/storefake"
	"github.com/vidstream/go-video-backend/server"
	"github.com/vidstream/go-video-backend/token"
	fakeuserrepo "github.com/vidstream/go-video-backend/users/repofake"
)

const (
	accessSecret  = "access-secret"
	refreshSecret = "refresh-secret"
	baseRoute     = "/api/v1/users"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*server.Server, *fakeuserrepo.FakeUserRepo) {
	t.Helper()

	userRepo := fakeuserrepo.NewFakeUserRepo()

	issuer := token.NewIssuer(
		token.NewHMACSigner(accessSecret),
		token.NewHMACSigner(refreshSecret),
		token.WithNowFunc(func() time.Time { return fixedNow }),
	)

	sessions, err := auth.NewSessionService(
		auth.Repos{Users: userRepo, Media: fakestore.NewFakeStore()},
		issuer,
		token.NewVerifier(token.NewHMACSigner(refreshSecret),
			token.WithVerifierNowFunc(func() time.Time { return fixedNow })),
	)
	require.NoError(t, err)

	accessVerifier := token.NewVerifier(token.NewHMACSigner(accessSecret),
		token.WithVerifierNowFunc(func() time.Time { return fixedNow }))

	return server.New(config.New(), sessions, accessVerifier), userRepo
}

type envelope struct {
	Status  int             `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func registerBody(t *testing.T, withCover bool) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("userName", "alice"))
	require.NoError(t, w.WriteField("email", "a@x.com"))
	require.NoError(t, w.WriteField("fullName", "Alice A"))
	require.NoError(t, w.WriteField("password", "pw123"))

	part, err := w.CreateFormFile("avatar", "avatar.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)

	if withCover {
		part, err = w.CreateFormFile("coverImage", "cover.png")
		require.NoError(t, err)
		_, err = part.Write([]byte("png-bytes"))
		require.NoError(t, err)
	}

	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func doJSON(s *server.Server, method, path string, payload any, modify ...func(*http.Request)) *httptest.ResponseRecorder {
	var body io.Reader
	if payload != nil {
		raw, _ := json.Marshal(payload)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	for _, m := range modify {
		m(req)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func withBearer(tok string) func(*http.Request) {
	return func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+tok)
	}
}

func registerAlice(t *testing.T, s *server.Server) {
	t.Helper()
	body, contentType := registerBody(t, false)
	req := httptest.NewRequest(http.MethodPost, baseRoute+server.RouteRegister, body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

type tokenData struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func loginAlice(t *testing.T, s *server.Server) tokenData {
	t.Helper()
	rec := doJSON(s, http.MethodPost, baseRoute+server.RouteLogin,
		map[string]string{"userName": "alice", "password": "pw123"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var data tokenData
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &data))
	require.NotEmpty(t, data.AccessToken)
	require.NotEmpty(t, data.RefreshToken)
	return data
}

func TestRegisterEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	body, contentType := registerBody(t, true)
	req := httptest.NewRequest(http.MethodPost, baseRoute+server.RouteRegister, body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NotContains(t, rec.Body.String(), `"password"`)
	require.NotContains(t, rec.Body.String(), `"refreshToken"`)

	var user struct {
		UserName   string `json:"userName"`
		Avatar     string `json:"avatar"`
		CoverImage string `json:"coverImage"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &user))
	require.Equal(t, "alice", user.UserName)
	require.NotEmpty(t, user.Avatar)
	require.NotEmpty(t, user.CoverImage)
}

func TestRegisterDuplicateEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	registerAlice(t, s)

	body, contentType := registerBody(t, false)
	req := httptest.NewRequest(http.MethodPost, baseRoute+server.RouteRegister, body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegisterWithoutAvatar(t *testing.T) {
	s, _ := newTestServer(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("userName", "alice"))
	require.NoError(t, w.WriteField("email", "a@x.com"))
	require.NoError(t, w.WriteField("fullName", "Alice A"))
	require.NoError(t, w.WriteField("password", "pw123"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, baseRoute+server.RouteRegister, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	registerAlice(t, s)

	rec := doJSON(s, http.MethodPost, baseRoute+server.RouteLogin,
		map[string]string{"userName": "alice", "password": "pw123"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	cookies := rec.Result().Cookies()
	var gotAccess, gotRefresh bool
	for _, cookie := range cookies {
		switch cookie.Name {
		case "accessToken":
			gotAccess = true
		case "refreshToken":
			gotRefresh = true
		default:
			continue
		}
		require.True(t, cookie.HttpOnly, "%s cookie must be http-only", cookie.Name)
		require.True(t, cookie.Secure, "%s cookie must be secure", cookie.Name)
	}
	require.True(t, gotAccess)
	require.True(t, gotRefresh)
}

func TestLoginFailures(t *testing.T) {
	s, _ := newTestServer(t)
	registerAlice(t, s)

	rec := doJSON(s, http.MethodPost, baseRoute+server.RouteLogin,
		map[string]string{"userName": "alice", "password": "wrong"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(s, http.MethodPost, baseRoute+server.RouteLogin,
		map[string]string{"userName": "nobody", "password": "pw123"})
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(s, http.MethodPost, baseRoute+server.RouteLogin,
		map[string]string{"password": "pw123"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginStoreFailureIs500(t *testing.T) {
	s, userRepo := newTestServer(t)
	registerAlice(t, s)

	userRepo.FailUpdates = true

	rec := doJSON(s, http.MethodPost, baseRoute+server.RouteLogin,
		map[string]string{"userName": "alice", "password": "pw123"})
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "something went wrong")
	require.NotContains(t, rec.Body.String(), "persistence")
}

func TestCurrentUserRequiresAuth(t *testing.T) {
	s, _ := newTestServer(t)
	registerAlice(t, s)

	rec := doJSON(s, http.MethodGet, baseRoute+server.RouteCurrentUser, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	tokens := loginAlice(t, s)
	rec = doJSON(s, http.MethodGet, baseRoute+server.RouteCurrentUser, nil, withBearer(tokens.AccessToken))
	require.Equal(t, http.StatusOK, rec.Code)

	var user struct {
		UserName string `json:"userName"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &user))
	require.Equal(t, "alice", user.UserName)
}

// TestSessionLifecycle walks the full register/login/refresh/logout flow and
// checks that superseded refresh tokens are rejected at each step.
func TestSessionLifecycle(t *testing.T) {
	s, _ := newTestServer(t)
	registerAlice(t, s)
	tokens := loginAlice(t, s)

	// Refresh via request body: new pair, old refresh token dies.
	rec := doJSON(s, http.MethodPost, baseRoute+server.RouteRefreshToken,
		map[string]string{"refreshToken": tokens.RefreshToken})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var rotated tokenData
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &rotated))
	require.NotEmpty(t, rotated.RefreshToken)

	rec = doJSON(s, http.MethodPost, baseRoute+server.RouteRefreshToken,
		map[string]string{"refreshToken": tokens.RefreshToken})
	require.Equal(t, http.StatusUnauthorized, rec.Code, "replayed refresh token must be rejected")

	// Refresh via cookie.
	req := httptest.NewRequest(http.MethodPost, baseRoute+server.RouteRefreshToken, nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: rotated.RefreshToken})
	cookieRec := httptest.NewRecorder()
	s.ServeHTTP(cookieRec, req)
	require.Equal(t, http.StatusOK, cookieRec.Code, cookieRec.Body.String())

	var latest tokenData
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, cookieRec).Data, &latest))

	// Logout clears the stored token; the last issued refresh token is dead.
	rec = doJSON(s, http.MethodPost, baseRoute+server.RouteLogout, nil, withBearer(latest.AccessToken))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(s, http.MethodPost, baseRoute+server.RouteRefreshToken,
		map[string]string{"refreshToken": latest.RefreshToken})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshWithoutToken(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(s, http.MethodPost, baseRoute+server.RouteRefreshToken, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestChangePasswordEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	registerAlice(t, s)
	tokens := loginAlice(t, s)

	rec := doJSON(s, http.MethodPost, baseRoute+server.RouteChangePassword,
		map[string]string{"oldPassword": "wrong", "newPassword": "newpw456"},
		withBearer(tokens.AccessToken))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(s, http.MethodPost, baseRoute+server.RouteChangePassword,
		map[string]string{"oldPassword": "pw123", "newPassword": "newpw456"},
		withBearer(tokens.AccessToken))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(s, http.MethodPost, baseRoute+server.RouteLogin,
		map[string]string{"userName": "alice", "password": "pw123"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(s, http.MethodPost, baseRoute+server.RouteLogin,
		map[string]string{"userName": "alice", "password": "newpw456"})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateAccountEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	registerAlice(t, s)
	tokens := loginAlice(t, s)

	rec := doJSON(s, http.MethodPatch, baseRoute+server.RouteUpdateAccount,
		map[string]string{"fullName": "Alice B"}, withBearer(tokens.AccessToken))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var user struct {
		FullName string `json:"fullName"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &user))
	require.Equal(t, "Alice B", user.FullName)
}

func TestUpdateAvatarEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	registerAlice(t, s)
	tokens := loginAlice(t, s)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("avatar", "new-avatar.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPatch, baseRoute+server.RouteAvatar, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.True(t, strings.Contains(rec.Body.String(), "new-avatar.png"))
}
