package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jobstack/job-board/internal/token"
	"github.com/jobstack/job-board/internal/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	assert.NoError(t, err)
	return string(hash)
}

func TestRegisterCreatesJobseekerByDefault(t *testing.T) {
	svr := testServer()
	userStore := new(mockUserStore)
	userStore.On("UsernameExists", "jane").Return(false, nil)
	userStore.On("EmailExists", "jane@example.com").Return(false, nil)
	userStore.On("SaveUser", mock.AnythingOfType("*user.User")).Return(nil)

	body := `{"username": "jane", "email": "jane@example.com", "password": "supersecret", "password2": "supersecret"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	w := httptest.NewRecorder()
	RegisterHandler(svr, userStore)(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp struct {
		Message string    `json:"message"`
		User    user.User `json:"user"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "User registered successfully", resp.Message)
	assert.Equal(t, user.RoleJobseeker, resp.User.Role)
	userStore.AssertExpectations(t)
}

func TestRegisterPasswordMismatch(t *testing.T) {
	svr := testServer()
	userStore := new(mockUserStore)

	body := `{"username": "jane", "email": "jane@example.com", "password": "supersecret", "password2": "different1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	w := httptest.NewRecorder()
	RegisterHandler(svr, userStore)(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp map[string]map[string]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Password fields didn't match.", resp["errors"]["password"])
	userStore.AssertNotCalled(t, "SaveUser")
}

func TestRegisterInvalidRole(t *testing.T) {
	svr := testServer()
	userStore := new(mockUserStore)

	body := `{"username": "jane", "email": "jane@example.com", "password": "supersecret", "password2": "supersecret", "role": "superuser"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	w := httptest.NewRecorder()
	RegisterHandler(svr, userStore)(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp map[string]map[string]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Invalid role", resp["errors"]["role"])
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svr := testServer()
	userStore := new(mockUserStore)
	userStore.On("UsernameExists", "jane").Return(false, nil)
	userStore.On("EmailExists", "jane@example.com").Return(true, nil)

	body := `{"username": "jane", "email": "jane@example.com", "password": "supersecret", "password2": "supersecret"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	w := httptest.NewRecorder()
	RegisterHandler(svr, userStore)(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp map[string]map[string]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Email already exists.", resp["errors"]["email"])
	userStore.AssertNotCalled(t, "SaveUser")
}

func TestLoginIssuesTokensAndRedirect(t *testing.T) {
	svr := testServer()
	userStore := new(mockUserStore)
	refreshStore := new(mockRefreshStore)
	u := &user.User{
		ID:           "emp-1",
		Email:        "emp@acme.com",
		PasswordHash: hashPassword(t, "supersecret"),
		Role:         user.RoleEmployer,
		IsActive:     true,
	}
	userStore.On("UserByEmail", "emp@acme.com").Return(u, nil)
	refreshStore.On("SaveRefreshToken", "emp-1", mock.Anything).Return("tok-id.secret", nil)

	body := `{"email": "emp@acme.com", "password": "supersecret"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	w := httptest.NewRecorder()
	LoginHandler(svr, userStore, refreshStore)(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "/employer/dashboard", resp["redirect_to"])
	assert.Equal(t, "tok-id.secret", resp["refresh"])

	claims, err := token.ParseAccessToken(testSigningKey, resp["access"].(string))
	assert.NoError(t, err)
	assert.Equal(t, "emp-1", claims.UserID)
	assert.Equal(t, user.RoleEmployer, claims.Role)
	assert.False(t, claims.IsAdmin)
	userStore.AssertExpectations(t)
	refreshStore.AssertExpectations(t)
}

func TestLoginWrongPassword(t *testing.T) {
	svr := testServer()
	userStore := new(mockUserStore)
	refreshStore := new(mockRefreshStore)
	u := &user.User{
		ID:           "emp-1",
		Email:        "emp@acme.com",
		PasswordHash: hashPassword(t, "supersecret"),
		IsActive:     true,
	}
	userStore.On("UserByEmail", "emp@acme.com").Return(u, nil)

	body := `{"email": "emp@acme.com", "password": "wrong-password"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	w := httptest.NewRecorder()
	LoginHandler(svr, userStore, refreshStore)(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	refreshStore.AssertNotCalled(t, "SaveRefreshToken")
}

func TestLoginInactiveAccount(t *testing.T) {
	svr := testServer()
	userStore := new(mockUserStore)
	refreshStore := new(mockRefreshStore)
	u := &user.User{
		ID:           "js-1",
		Email:        "jane@example.com",
		PasswordHash: hashPassword(t, "supersecret"),
		Role:         user.RoleJobseeker,
		IsActive:     false,
	}
	userStore.On("UserByEmail", "jane@example.com").Return(u, nil)

	body := `{"email": "jane@example.com", "password": "supersecret"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	w := httptest.NewRecorder()
	LoginHandler(svr, userStore, refreshStore)(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var resp map[string]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Account is inactive", resp["detail"])
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	svr := testServer()
	refreshStore := new(mockRefreshStore)
	refreshStore.On("RevokeRefreshToken", "tok-id.secret").Return(nil)

	body := `{"refresh": "tok-id.secret"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", strings.NewReader(body))
	req.Header.Set("Authorization", bearerToken(t, "js-1", "jane@example.com", "jobseeker", false))
	w := httptest.NewRecorder()
	LogoutHandler(svr, refreshStore)(w, req)

	assert.Equal(t, http.StatusResetContent, w.Code)
	refreshStore.AssertExpectations(t)
}

func TestLogoutUnknownToken(t *testing.T) {
	svr := testServer()
	refreshStore := new(mockRefreshStore)
	refreshStore.On("RevokeRefreshToken", "bad.token").Return(token.ErrRefreshTokenInvalid)

	body := `{"refresh": "bad.token"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", strings.NewReader(body))
	req.Header.Set("Authorization", bearerToken(t, "js-1", "jane@example.com", "jobseeker", false))
	w := httptest.NewRecorder()
	LogoutHandler(svr, refreshStore)(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefreshRotatesToken(t *testing.T) {
	svr := testServer()
	userStore := new(mockUserStore)
	refreshStore := new(mockRefreshStore)
	u := &user.User{ID: "js-1", Email: "jane@example.com", Role: user.RoleJobseeker, IsActive: true}
	refreshStore.On("RotateRefreshToken", "old.token", mock.Anything).Return("js-1", "new.token", nil)
	userStore.On("UserByID", "js-1").Return(u, nil)

	body := `{"refresh": "old.token"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", strings.NewReader(body))
	w := httptest.NewRecorder()
	RefreshTokenHandler(svr, userStore, refreshStore)(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "new.token", resp["refresh"])
	assert.NotEmpty(t, resp["access"])
	refreshStore.AssertExpectations(t)
}

func TestRefreshRevokedToken(t *testing.T) {
	svr := testServer()
	userStore := new(mockUserStore)
	refreshStore := new(mockRefreshStore)
	refreshStore.On("RotateRefreshToken", "revoked.token", mock.Anything).
		Return("", "", token.ErrRefreshTokenExpired)

	body := `{"refresh": "revoked.token"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", strings.NewReader(body))
	w := httptest.NewRecorder()
	RefreshTokenHandler(svr, userStore, refreshStore)(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	userStore.AssertNotCalled(t, "UserByID")
}

func TestProfileReturnsUserWithRoleProfile(t *testing.T) {
	svr := testServer()
	userStore := new(mockUserStore)
	u := &user.User{
		ID:       "js-1",
		Email:    "jane@example.com",
		Role:     user.RoleJobseeker,
		IsActive: true,
		JobseekerProfile: &user.JobseekerProfile{
			UserID: "js-1",
			Skills: "Python, Django",
		},
	}
	userStore.On("UserByID", "js-1").Return(u, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
	req.Header.Set("Authorization", bearerToken(t, "js-1", "jane@example.com", "jobseeker", false))
	w := httptest.NewRecorder()
	ProfileHandler(svr, userStore)(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp user.User
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotNil(t, resp.JobseekerProfile)
	assert.Nil(t, resp.EmployerProfile)
}

func TestProfileRequiresAuth(t *testing.T) {
	svr := testServer()
	userStore := new(mockUserStore)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
	w := httptest.NewRecorder()
	ProfileHandler(svr, userStore)(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	userStore.AssertNotCalled(t, "UserByID")
}

func TestProfileUpdateRejectsFutureDateOfBirth(t *testing.T) {
	svr := testServer()
	userStore := new(mockUserStore)
	u := &user.User{ID: "js-1", Email: "jane@example.com", Role: user.RoleJobseeker, IsActive: true}
	userStore.On("UserByID", "js-1").Return(u, nil)

	body := `{"date_of_birth": "2099-01-01T00:00:00Z"}`
	req := httptest.NewRequest(http.MethodPatch, "/api/auth/profile-update", strings.NewReader(body))
	req.Header.Set("Authorization", bearerToken(t, "js-1", "jane@example.com", "jobseeker", false))
	w := httptest.NewRecorder()
	ProfileUpdateHandler(svr, userStore)(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp map[string]map[string]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Date of birth cannot be in the future", resp["errors"]["date_of_birth"])
	userStore.AssertNotCalled(t, "UpdateUserDetails")
}

func TestChangePasswordWrongOldPassword(t *testing.T) {
	svr := testServer()
	userStore := new(mockUserStore)
	u := &user.User{ID: "js-1", PasswordHash: hashPassword(t, "supersecret"), IsActive: true}
	userStore.On("UserByID", "js-1").Return(u, nil)

	refreshStore := new(mockRefreshStore)
	body := `{"old_password": "not-the-password", "new_password": "newsecret1", "confirm_password": "newsecret1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/change-password", strings.NewReader(body))
	req.Header.Set("Authorization", bearerToken(t, "js-1", "jane@example.com", "jobseeker", false))
	w := httptest.NewRecorder()
	ChangePasswordHandler(svr, userStore, refreshStore)(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp map[string]map[string]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Old password is incorrect", resp["errors"]["old_password"])
	userStore.AssertNotCalled(t, "UpdatePassword")
	refreshStore.AssertNotCalled(t, "RevokeAllForUser")
}

func TestChangePassword(t *testing.T) {
	svr := testServer()
	userStore := new(mockUserStore)
	u := &user.User{ID: "js-1", PasswordHash: hashPassword(t, "supersecret"), IsActive: true}
	userStore.On("UserByID", "js-1").Return(u, nil)
	userStore.On("UpdatePassword", "js-1", mock.AnythingOfType("string")).Return(nil)
	refreshStore := new(mockRefreshStore)
	refreshStore.On("RevokeAllForUser", "js-1").Return(nil)

	body := `{"old_password": "supersecret", "new_password": "newsecret1", "confirm_password": "newsecret1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/change-password", strings.NewReader(body))
	req.Header.Set("Authorization", bearerToken(t, "js-1", "jane@example.com", "jobseeker", false))
	w := httptest.NewRecorder()
	ChangePasswordHandler(svr, userStore, refreshStore)(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	userStore.AssertExpectations(t)
	refreshStore.AssertExpectations(t)
}
