package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"team-chat-service/internal/auth"
	"team-chat-service/internal/mocks"
	"team-chat-service/internal/models"
	"team-chat-service/internal/presence"
	"team-chat-service/internal/repositories"
)

func newTestUserHandler(userRepo *mocks.UserRepositoryMock) *UserHandler {
	tokens := auth.NewTokenManager("test-secret", "team-chat-test", time.Hour)
	return NewUserHandler(userRepo, tokens, presence.NewTracker("", ""), nil)
}

func setupUserRouter(handler *UserHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	r.POST("/auth/register", handler.Register)
	r.POST("/auth/login", handler.Login)
	r.GET("/users/online", handler.ListOnline)
	r.GET("/users/:user_id", handler.GetUser)
	r.PATCH("/users/:user_id", handler.UpdateProfile)
	return r
}

func TestRegisterSuccess(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	router := setupUserRouter(newTestUserHandler(userRepo))

	userRepo.On("Register", mock.Anything, repositories.RegisterUserParams{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "hunter2hunter2",
	}).Return(models.User{ID: 1, Username: "alice", Email: "alice@example.com", Status: models.StatusOffline}, nil).Once()

	body := bytes.NewBufferString(`{"username":"alice","email":"alice@example.com","password":"hunter2hunter2"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/register", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotContains(t, rec.Body.String(), "password")
	userRepo.AssertExpectations(t)
}

func TestRegisterShortPassword(t *testing.T) {
	router := setupUserRouter(newTestUserHandler(new(mocks.UserRepositoryMock)))

	body := bytes.NewBufferString(`{"username":"alice","email":"alice@example.com","password":"short"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/register", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	router := setupUserRouter(newTestUserHandler(userRepo))

	userRepo.On("Register", mock.Anything, mock.Anything).
		Return(models.User{}, repositories.ErrDuplicateEmail).Once()

	body := bytes.NewBufferString(`{"username":"alice","email":"alice@example.com","password":"hunter2hunter2"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/register", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	userRepo.AssertExpectations(t)
}

func TestLoginSuccessReturnsToken(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	router := setupUserRouter(newTestUserHandler(userRepo))

	userRepo.On("Authenticate", mock.Anything, "alice@example.com", "hunter2hunter2").
		Return(models.User{ID: 1, Username: "alice", Status: models.StatusOnline}, nil).Once()

	body := bytes.NewBufferString(`{"email":"alice@example.com","password":"hunter2hunter2"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	require.Equal(t, models.StatusOnline, resp.User.Status)
	userRepo.AssertExpectations(t)
}

func TestLoginInvalidCredentials(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	router := setupUserRouter(newTestUserHandler(userRepo))

	userRepo.On("Authenticate", mock.Anything, "alice@example.com", "wrong-password").
		Return(models.User{}, repositories.ErrInvalidCredentials).Once()

	body := bytes.NewBufferString(`{"email":"alice@example.com","password":"wrong-password"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	userRepo.AssertExpectations(t)
}

func TestUpdateProfileClearsDisplayName(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	router := setupUserRouter(newTestUserHandler(userRepo))

	userRepo.On("UpdateProfile", mock.Anything, 1, mock.MatchedBy(func(p repositories.UpdateUserParams) bool {
		return p.HasDisplayName && p.DisplayName == nil && !p.HasAvatarURL && !p.HasStatus
	})).Return(models.User{ID: 1, Username: "alice"}, nil).Once()

	req := httptest.NewRequest(http.MethodPatch, "/users/1", bytes.NewBufferString(`{"display_name":null}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	userRepo.AssertExpectations(t)
}

func TestUpdateProfileOmittedFieldsUntouched(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	router := setupUserRouter(newTestUserHandler(userRepo))

	userRepo.On("UpdateProfile", mock.Anything, 1, mock.MatchedBy(func(p repositories.UpdateUserParams) bool {
		return p.HasAvatarURL && p.AvatarURL != nil && *p.AvatarURL == "https://cdn.example.com/a.png" &&
			!p.HasDisplayName && !p.HasStatus
	})).Return(models.User{ID: 1, Username: "alice"}, nil).Once()

	req := httptest.NewRequest(http.MethodPatch, "/users/1", bytes.NewBufferString(`{"avatar_url":"https://cdn.example.com/a.png"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	userRepo.AssertExpectations(t)
}

func TestUpdateProfileStatus(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	router := setupUserRouter(newTestUserHandler(userRepo))

	away := models.StatusAway
	userRepo.On("UpdateProfile", mock.Anything, 1, mock.MatchedBy(func(p repositories.UpdateUserParams) bool {
		return p.HasStatus && p.Status != nil && *p.Status == away
	})).Return(models.User{ID: 1, Username: "alice", Status: away}, nil).Once()

	req := httptest.NewRequest(http.MethodPatch, "/users/1", bytes.NewBufferString(`{"status":"away"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	userRepo.AssertExpectations(t)
}

func TestUpdateProfileInvalidStatus(t *testing.T) {
	router := setupUserRouter(newTestUserHandler(new(mocks.UserRepositoryMock)))

	req := httptest.NewRequest(http.MethodPatch, "/users/1", bytes.NewBufferString(`{"status":"invisible"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateProfileUnknownUser(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	router := setupUserRouter(newTestUserHandler(userRepo))

	userRepo.On("UpdateProfile", mock.Anything, 404, mock.Anything).
		Return(models.User{}, repositories.ErrUserNotFound).Once()

	req := httptest.NewRequest(http.MethodPatch, "/users/404", bytes.NewBufferString(`{"status":"away"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	userRepo.AssertExpectations(t)
}

func TestGetUserKnown(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	router := setupUserRouter(newTestUserHandler(userRepo))

	userRepo.On("GetByID", mock.Anything, 2).
		Return(&models.User{ID: 2, Username: "bob"}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/users/2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	userRepo.AssertExpectations(t)
}

// Unknown users are an empty result, not a 404.
func TestGetUserUnknownIsNull(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	router := setupUserRouter(newTestUserHandler(userRepo))

	userRepo.On("GetByID", mock.Anything, 404).Return(nil, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/users/404", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "null", string(body["user"]))
	userRepo.AssertExpectations(t)
}

func TestListOnline(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	router := setupUserRouter(newTestUserHandler(userRepo))

	userRepo.On("ListOnline", mock.Anything).
		Return([]models.User{{ID: 1, Username: "alice", Status: models.StatusOnline}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/users/online", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	userRepo.AssertExpectations(t)
}
