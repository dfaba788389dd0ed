package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	authsvc "github.com/dairylicious/dairyshop-backend/internal/auth"
	"github.com/dairylicious/dairyshop-backend/internal/users"
	pkgAuth "github.com/dairylicious/dairyshop-backend/pkg/auth"
	"github.com/dairylicious/dairyshop-backend/pkg/config"
	"github.com/dairylicious/dairyshop-backend/pkg/enums"
	pkgerrors "github.com/dairylicious/dairyshop-backend/pkg/errors"
)

type stubAuthService struct {
	response *authsvc.AuthResponse
	profile  *users.UserDTO
	err      error

	registered *authsvc.RegisterRequest
	loggedIn   *authsvc.LoginRequest
	refreshed  *authsvc.RefreshRequest
	loggedOut  string
	updated    *authsvc.UpdateProfileRequest
}

func (s *stubAuthService) Register(_ context.Context, req authsvc.RegisterRequest) (*authsvc.AuthResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.registered = &req
	return s.response, nil
}

func (s *stubAuthService) Login(_ context.Context, req authsvc.LoginRequest) (*authsvc.AuthResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.loggedIn = &req
	return s.response, nil
}

func (s *stubAuthService) Refresh(_ context.Context, req authsvc.RefreshRequest) (*authsvc.AuthResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.refreshed = &req
	return s.response, nil
}

func (s *stubAuthService) Logout(_ context.Context, accessID string) error {
	if s.err != nil {
		return s.err
	}
	s.loggedOut = accessID
	return nil
}

func (s *stubAuthService) Profile(context.Context, uuid.UUID) (*users.UserDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.profile, nil
}

func (s *stubAuthService) UpdateProfile(_ context.Context, _ uuid.UUID, req authsvc.UpdateProfileRequest) (*users.UserDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.updated = &req
	return s.profile, nil
}

func sampleAuthResponse() *authsvc.AuthResponse {
	return &authsvc.AuthResponse{
		AccessToken:  "access",
		RefreshToken: "refresh",
		User: &users.UserDTO{
			ID:    uuid.New(),
			Email: "anna@example.com",
			Role:  enums.UserRoleCustomer,
		},
	}
}

func jsonBody(s string) io.Reader {
	return strings.NewReader(s)
}

func authJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret-test-secret-test-secret",
		Issuer:            "dairyshop-test",
		ExpirationMinutes: 15,
	}
}

func TestAuthRegisterReturnsCreated(t *testing.T) {
	svc := &stubAuthService{response: sampleAuthResponse()}
	handler := AuthRegister(svc, testLogger())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/register",
		jsonBody(`{"email":"anna@example.com","password":"milk&honey42","first_name":"Anna","last_name":"Dale"}`))
	handler(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if svc.registered == nil || svc.registered.Email != "anna@example.com" {
		t.Fatalf("payload not forwarded: %+v", svc.registered)
	}
	var body struct {
		Data authsvc.AuthResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if body.Data.AccessToken != "access" || body.Data.RefreshToken != "refresh" {
		t.Fatalf("unexpected payload: %+v", body.Data)
	}
}

func TestAuthRegisterValidation(t *testing.T) {
	handler := AuthRegister(&stubAuthService{response: sampleAuthResponse()}, testLogger())

	cases := map[string]string{
		"bad email":      `{"email":"nope","password":"milk&honey42","first_name":"Anna","last_name":"Dale"}`,
		"short password": `{"email":"anna@example.com","password":"short","first_name":"Anna","last_name":"Dale"}`,
		"missing names":  `{"email":"anna@example.com","password":"milk&honey42"}`,
		"bad phone":      `{"email":"anna@example.com","password":"milk&honey42","first_name":"Anna","last_name":"Dale","phone":"555-1234"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler(rec, httptest.NewRequest("POST", "/auth/register", jsonBody(body)))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestAuthLoginMapsUnauthorized(t *testing.T) {
	handler := AuthLogin(&stubAuthService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}, testLogger())

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest("POST", "/auth/login",
		jsonBody(`{"email":"anna@example.com","password":"wrong"}`)))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if body.Error.Message != "invalid credentials" {
		t.Fatalf("message = %q", body.Error.Message)
	}
}

func TestAuthRefreshForwardsTokens(t *testing.T) {
	svc := &stubAuthService{response: sampleAuthResponse()}
	handler := AuthRefresh(svc, testLogger())

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest("POST", "/auth/refresh",
		jsonBody(`{"access_token":"stale.jwt","refresh_token":"refresh-1"}`)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if svc.refreshed == nil || svc.refreshed.RefreshToken != "refresh-1" {
		t.Fatalf("payload not forwarded: %+v", svc.refreshed)
	}
}

func TestAuthLogoutAcceptsExpiredToken(t *testing.T) {
	svc := &stubAuthService{}
	handler := AuthLogout(svc, authJWTConfig(), testLogger())

	expired, err := pkgAuth.MintAccessToken(authJWTConfig(), time.Now().UTC().Add(-2*time.Hour), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Email:  "anna@example.com",
		Role:   enums.UserRoleCustomer,
		JTI:    "session-1",
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if svc.loggedOut != "session-1" {
		t.Fatalf("revoked session = %q", svc.loggedOut)
	}
}

func TestAuthLogoutRequiresToken(t *testing.T) {
	handler := AuthLogout(&stubAuthService{}, authJWTConfig(), testLogger())

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest("POST", "/auth/logout", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing header: status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	handler(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: status = %d", rec.Code)
	}
}

func TestProfileGetAndUpdate(t *testing.T) {
	svc := &stubAuthService{profile: &users.UserDTO{ID: uuid.New(), Email: "anna@example.com", FirstName: "Anna"}}
	userID := uuid.New()

	rec := httptest.NewRecorder()
	ProfileGet(svc, testLogger())(rec, authedRequest("GET", "/profile", "", userID))
	if rec.Code != http.StatusOK {
		t.Fatalf("get: status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	ProfileUpdate(svc, testLogger())(rec, authedRequest("PUT", "/profile",
		`{"first_name":"Annika","last_name":"Dahl"}`, userID))
	if rec.Code != http.StatusOK {
		t.Fatalf("update: status = %d, body %s", rec.Code, rec.Body.String())
	}
	if svc.updated == nil || svc.updated.FirstName != "Annika" {
		t.Fatalf("payload not forwarded: %+v", svc.updated)
	}
}
