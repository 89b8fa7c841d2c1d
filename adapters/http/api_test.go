package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"

	"github.com/filipposta/legacy-premium-api/adapters/event"
	"github.com/filipposta/legacy-premium-api/adapters/persistence"
	authUC "github.com/filipposta/legacy-premium-api/internal/application/usecase/auth"
	profileUC "github.com/filipposta/legacy-premium-api/internal/application/usecase/profile"
	settingsUC "github.com/filipposta/legacy-premium-api/internal/application/usecase/settings"
	viewsUC "github.com/filipposta/legacy-premium-api/internal/application/usecase/views"
	"github.com/filipposta/legacy-premium-api/internal/identity"
	"github.com/filipposta/legacy-premium-api/pkg/apperror"
	"github.com/filipposta/legacy-premium-api/pkg/auth"
	"github.com/filipposta/legacy-premium-api/pkg/logger"
)

// stubTokenStore keeps TokenStore state in maps, standing in for Redis.
type stubTokenStore struct {
	resetTokens map[string]string
	revoked     map[string]bool
	failures    map[string]int
}

func newStubTokenStore() *stubTokenStore {
	return &stubTokenStore{
		resetTokens: make(map[string]string),
		revoked:     make(map[string]bool),
		failures:    make(map[string]int),
	}
}

func (s *stubTokenStore) CreateResetToken(_ context.Context, userID string) (string, error) {
	token := "reset-" + userID
	s.resetTokens[token] = userID
	return token, nil
}

func (s *stubTokenStore) ConsumeResetToken(_ context.Context, token string) (string, error) {
	userID, ok := s.resetTokens[token]
	if !ok {
		return "", apperror.NewUnauthorized("reset token is invalid or expired", nil)
	}
	delete(s.resetTokens, token)
	return userID, nil
}

func (s *stubTokenStore) RevokeSession(_ context.Context, jti string, _ time.Duration) error {
	s.revoked[jti] = true
	return nil
}

func (s *stubTokenStore) IsSessionRevoked(_ context.Context, jti string) (bool, error) {
	return s.revoked[jti], nil
}

func (s *stubTokenStore) RecordSignInFailure(_ context.Context, email string) (int, error) {
	s.failures[email]++
	return s.failures[email], nil
}

func (s *stubTokenStore) SignInFailures(_ context.Context, email string) (int, error) {
	return s.failures[email], nil
}

func (s *stubTokenStore) ClearSignInFailures(_ context.Context, email string) error {
	delete(s.failures, email)
	return nil
}

type noopPublisher struct{}

func (noopPublisher) PublishViewEvent(context.Context, event.ViewEventPayload) error { return nil }
func (noopPublisher) PublishAccountEvent(context.Context, event.AccountEventPayload) error {
	return nil
}

type APITestSuite struct {
	suite.Suite
	router *gin.Engine
	store  *persistence.MemoryDocStore
	tokens *stubTokenStore
}

func (s *APITestSuite) SetupTest() {
	appLogger := logger.NewNop()
	s.store = persistence.NewMemoryDocStore()
	s.tokens = newStubTokenStore()

	userRepo := persistence.NewDocUserRepo(s.store)
	settingsRepo := persistence.NewDocSettingsRepo(s.store)
	viewRepo := persistence.NewDocViewRepo(s.store)

	jwtSvc := auth.NewJWTService("api-test-secret", time.Hour)
	sessions := identity.NewSessions()
	pub := noopPublisher{}

	registerUC := authUC.NewRegisterUseCase(userRepo, settingsRepo, jwtSvc, pub, sessions, appLogger)
	loginUC := authUC.NewLoginUseCase(userRepo, jwtSvc, s.tokens, sessions, 5, appLogger)
	logoutUC := authUC.NewLogoutUseCase(s.tokens, sessions, appLogger)
	resetUC := authUC.NewResetPasswordUseCase(userRepo, s.tokens, pub, appLogger)
	deleteUC := authUC.NewDeleteAccountUseCase(userRepo, settingsRepo, s.tokens, pub, sessions, appLogger)

	reconcileUC := viewsUC.NewReconcileUseCase(viewRepo, userRepo, appLogger)
	cleanUC := viewsUC.NewCleanUseCase(viewRepo, userRepo, reconcileUC, appLogger)
	logViewUC := viewsUC.NewLogViewUseCase(viewRepo, pub, appLogger)

	profUC := profileUC.NewProfileUseCase(userRepo, nil, appLogger)
	setUC := settingsUC.NewSettingsUseCase(settingsRepo, userRepo, appLogger)

	authHandler := NewAuthHandler(registerUC, loginUC, logoutUC, resetUC, deleteUC)
	profileHandler := NewProfileHandler(profUC, logViewUC, appLogger)
	settingsHandler := NewSettingsHandler(setUC)
	viewsHandler := NewViewsHandler(reconcileUC, cleanUC)

	authMiddleware := AuthMiddleware(jwtSvc, s.tokens, appLogger)
	optionalAuth := OptionalAuthMiddleware(jwtSvc, s.tokens, appLogger)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorMiddleware(appLogger))

	api := router.Group("/api")
	authGroup := api.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/password-reset", authHandler.RequestPasswordReset)
	authGroup.POST("/password-reset/confirm", authHandler.ConfirmPasswordReset)
	authGroup.POST("/logout", authMiddleware, authHandler.Logout)
	authGroup.DELETE("/account", authMiddleware, authHandler.DeleteAccount)

	api.GET("/users/:id", optionalAuth, profileHandler.GetUser)

	private := api.Group("/")
	private.Use(authMiddleware)
	private.GET("/users/me", profileHandler.GetMe)
	private.PUT("/users/me", profileHandler.UpdateMe)
	private.GET("/settings", settingsHandler.GetSettings)
	private.PUT("/settings", settingsHandler.UpdateSettings)
	private.GET("/profile-views", viewsHandler.ListProfileViews)
	private.POST("/profile-views/clean", viewsHandler.CleanProfileViews)

	s.router = router
}

func (s *APITestSuite) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// registerUser creates an account and returns its token and id.
func (s *APITestSuite) registerUser(name string) (token, userID string) {
	w := s.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"email":        name + "@example.com",
		"password":     "pass-" + name,
		"username":     name,
		"display_name": name,
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var resp map[string]string
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	return resp["access_token"], resp["user_id"]
}

func (s *APITestSuite) TestRegisterAndLogin() {
	_, userID := s.registerUser("alice")
	s.NotEmpty(userID)

	w := s.do(http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "pass-alice",
	})
	s.Equal(http.StatusOK, w.Code, w.Body.String())

	var resp map[string]string
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.NotEmpty(resp["access_token"])
	s.Equal(userID, resp["user_id"])
}

func (s *APITestSuite) TestLoginWrongPassword() {
	s.registerUser("alice")

	w := s.do(http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "not-the-password",
	})
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *APITestSuite) TestRegisterDuplicateEmail() {
	s.registerUser("alice")

	w := s.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"email":    "alice@example.com",
		"password": "another-pass",
		"username": "alice2",
	})
	s.Equal(http.StatusConflict, w.Code)
}

func (s *APITestSuite) TestMeRequiresToken() {
	w := s.do(http.MethodGet, "/api/users/me", "", nil)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *APITestSuite) TestMeReturnsOwnerView() {
	token, userID := s.registerUser("alice")

	w := s.do(http.MethodGet, "/api/users/me", token, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var dto ProfileDTO
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &dto))
	s.Equal(userID, dto.ID)
	s.Equal("alice@example.com", dto.Email)
}

func (s *APITestSuite) TestPublicProfileHidesEmailAndLogsView() {
	aliceToken, aliceID := s.registerUser("alice")
	bobToken, bobID := s.registerUser("bob")

	w := s.do(http.MethodGet, "/api/users/"+aliceID, bobToken, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var dto ProfileDTO
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &dto))
	s.Equal("alice", dto.Username)
	s.Empty(dto.Email)

	// Bob's visit shows up in Alice's reconciled view list.
	w = s.do(http.MethodGet, "/api/profile-views", aliceToken, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Views []ReconciledViewDTO `json:"views"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Require().Len(resp.Views, 1)
	s.Equal(bobID, resp.Views[0].ViewerID)
	s.Equal("bob", resp.Views[0].Username)
}

func (s *APITestSuite) TestPrivateProfileIsForbidden() {
	aliceToken, aliceID := s.registerUser("alice")
	bobToken, _ := s.registerUser("bob")

	w := s.do(http.MethodPut, "/api/settings", aliceToken, gin.H{"privacy": "private"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/users/"+aliceID, bobToken, nil)
	s.Equal(http.StatusForbidden, w.Code)

	// The owner can still see their own profile.
	w = s.do(http.MethodGet, "/api/users/"+aliceID, aliceToken, nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *APITestSuite) TestUpdateProfile() {
	token, _ := s.registerUser("alice")

	w := s.do(http.MethodPut, "/api/users/me", token, gin.H{"bio": "hello there"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var dto ProfileDTO
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &dto))
	s.Equal("hello there", dto.Bio)
}

func (s *APITestSuite) TestSettingsDefaultsAndUpdate() {
	token, _ := s.registerUser("alice")

	w := s.do(http.MethodGet, "/api/settings", token, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var dto SettingsDTO
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &dto))
	s.Equal("public", dto.Privacy)

	w = s.do(http.MethodPut, "/api/settings", token, gin.H{"theme": "dark"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &dto))
	s.Equal("dark", dto.Theme)
}

func (s *APITestSuite) TestLogoutRevokesSession() {
	token, _ := s.registerUser("alice")

	w := s.do(http.MethodPost, "/api/auth/logout", token, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/users/me", token, nil)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *APITestSuite) TestPasswordResetFlow() {
	_, userID := s.registerUser("alice")

	w := s.do(http.MethodPost, "/api/auth/password-reset", "", gin.H{"email": "alice@example.com"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/auth/password-reset/confirm", "", gin.H{
		"token":        fmt.Sprintf("reset-%s", userID),
		"new_password": "brand-new-pass",
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "brand-new-pass",
	})
	s.Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "pass-alice",
	})
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *APITestSuite) TestDeleteAccount() {
	token, userID := s.registerUser("alice")

	w := s.do(http.MethodDelete, "/api/auth/account", token, gin.H{"password": "pass-alice"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/users/"+userID, "", nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *APITestSuite) TestCleanEndpoint() {
	token, _ := s.registerUser("alice")

	w := s.do(http.MethodPost, "/api/profile-views/clean", token, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Deleted int                 `json:"deleted"`
		Views   []ReconciledViewDTO `json:"views"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Zero(resp.Deleted)
	s.Empty(resp.Views)
}

func TestAPITestSuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}
