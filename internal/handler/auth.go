package handler

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jobstack/job-board/internal/middleware"
	"github.com/jobstack/job-board/internal/server"
	"github.com/jobstack/job-board/internal/token"
	"github.com/jobstack/job-board/internal/user"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

var validGenders = map[string]struct{}{
	"male":   {},
	"female": {},
	"other":  {},
}

type registerRq struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Password    string `json:"password"`
	Password2   string `json:"password2"`
	Role        string `json:"role"`
	PhoneNumber string `json:"phone_number"`
	Gender      string `json:"gender"`
}

type loginRq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRq struct {
	Refresh string `json:"refresh"`
}

type changePasswordRq struct {
	OldPassword     string `json:"old_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

type profileUpdateRq struct {
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	PhoneNumber string     `json:"phone_number"`
	Gender      string     `json:"gender"`
	DateOfBirth *time.Time `json:"date_of_birth"`

	JobseekerProfile *user.JobseekerProfile `json:"jobseeker_profile"`
	EmployerProfile  *user.EmployerProfile  `json:"employer_profile"`
}

// RegisterHandler creates a user account and its role profile.
func RegisterHandler(svr server.Server, userRepo userStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := &registerRq{}
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			svr.JSON(w, http.StatusBadRequest, fieldErrors{"body": "unable to parse request body"}.response())
			return
		}
		if req.Role == "" {
			req.Role = user.RoleJobseeker
		}
		errs := fieldErrors{}
		if strings.TrimSpace(req.Username) == "" {
			errs["username"] = "This field is required"
		}
		if strings.TrimSpace(req.Email) == "" {
			errs["email"] = "This field is required"
		} else if !svr.IsEmail(req.Email) {
			errs["email"] = "Enter a valid email address."
		}
		if req.Password == "" {
			errs["password"] = "This field is required"
		} else if len(req.Password) < minPasswordLength {
			errs["password"] = fmt.Sprintf("Password must be at least %d characters", minPasswordLength)
		} else if req.Password != req.Password2 {
			errs["password"] = "Password fields didn't match."
		}
		if _, ok := user.ValidRoles[req.Role]; !ok {
			errs["role"] = "Invalid role"
		}
		if req.Gender != "" {
			if _, ok := validGenders[req.Gender]; !ok {
				errs["gender"] = "Invalid gender"
			}
		}
		if len(errs) > 0 {
			svr.JSON(w, http.StatusBadRequest, errs.response())
			return
		}
		if exists, err := userRepo.UsernameExists(req.Username); err != nil {
			svr.Log(err, "unable to check username uniqueness")
			svr.JSON(w, http.StatusInternalServerError, nil)
			return
		} else if exists {
			svr.JSON(w, http.StatusBadRequest, fieldErrors{"username": "Username already exists."}.response())
			return
		}
		if exists, err := userRepo.EmailExists(req.Email); err != nil {
			svr.Log(err, "unable to check email uniqueness")
			svr.JSON(w, http.StatusInternalServerError, nil)
			return
		} else if exists {
			svr.JSON(w, http.StatusBadRequest, fieldErrors{"email": "Email already exists."}.response())
			return
		}
		passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			svr.Log(err, "unable to hash password")
			svr.JSON(w, http.StatusInternalServerError, nil)
			return
		}
		u := &user.User{
			Email:        req.Email,
			Username:     req.Username,
			PasswordHash: string(passwordHash),
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			PhoneNumber:  req.PhoneNumber,
			Gender:       req.Gender,
			Role:         req.Role,
		}
		if err := userRepo.SaveUser(u); err != nil {
			svr.Log(err, fmt.Sprintf("unable to save user %s", req.Email))
			svr.JSON(w, http.StatusInternalServerError, nil)
			return
		}
		u.Derive()
		svr.JSON(w, http.StatusCreated, map[string]interface{}{
			"message": "User registered successfully",
			"user":    u,
		})
	}
}

// LoginHandler verifies credentials and issues an access and refresh
// token pair, with a role-based landing path for the client.
func LoginHandler(svr server.Server, userRepo userStore, refreshRepo refreshStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := &loginRq{}
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			svr.JSON(w, http.StatusBadRequest, fieldErrors{"body": "unable to parse request body"}.response())
			return
		}
		u, err := userRepo.UserByEmail(req.Email)
		if err == sql.ErrNoRows {
			svr.JSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid email or password"})
			return
		}
		if err != nil {
			svr.Log(err, fmt.Sprintf("unable to retrieve user %s", req.Email))
			svr.JSON(w, http.StatusInternalServerError, nil)
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
			svr.JSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid email or password"})
			return
		}
		if !u.IsActive {
			svr.JSON(w, http.StatusUnauthorized, map[string]string{"detail": "Account is inactive"})
			return
		}
		access, err := token.EncodeAccessToken(
			svr.GetJWTSigningKey(), u.ID, u.Email, u.Role, u.Role == user.RoleAdmin, svr.GetConfig().AccessTokenTTL)
		if err != nil {
			svr.Log(err, "unable to encode access token")
			svr.JSON(w, http.StatusInternalServerError, nil)
			return
		}
		refresh, err := refreshRepo.SaveRefreshToken(u.ID, svr.GetConfig().RefreshTokenTTL)
		if err != nil {
			svr.Log(err, "unable to save refresh token")
			svr.JSON(w, http.StatusInternalServerError, nil)
			return
		}
		svr.JSON(w, http.StatusOK, map[string]interface{}{
			"access":      access,
			"refresh":     refresh,
			"user":        u,
			"redirect_to": redirectForRole(u.Role),
		})
	}
}

// LogoutHandler blacklists the presented refresh token.
func LogoutHandler(svr server.Server, refreshRepo refreshStore) http.HandlerFunc {
	return middleware.UserAuthenticatedMiddleware(
		svr.GetJWTSigningKey(),
		func(w http.ResponseWriter, r *http.Request) {
			req := &refreshRq{}
			if err := json.NewDecoder(r.Body).Decode(req); err != nil || req.Refresh == "" {
				svr.JSON(w, http.StatusBadRequest, fieldErrors{"refresh": "This field is required"}.response())
				return
			}
			if err := refreshRepo.RevokeRefreshToken(req.Refresh); err != nil {
				svr.JSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid refresh token"})
				return
			}
			svr.JSON(w, http.StatusResetContent, nil)
		})
}

// RefreshTokenHandler rotates a refresh token and issues a fresh access
// token. The old refresh token is revoked in the same step.
func RefreshTokenHandler(svr server.Server, userRepo userStore, refreshRepo refreshStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := &refreshRq{}
		if err := json.NewDecoder(r.Body).Decode(req); err != nil || req.Refresh == "" {
			svr.JSON(w, http.StatusBadRequest, fieldErrors{"refresh": "This field is required"}.response())
			return
		}
		userID, newRefresh, err := refreshRepo.RotateRefreshToken(req.Refresh, svr.GetConfig().RefreshTokenTTL)
		if err == token.ErrRefreshTokenInvalid || err == token.ErrRefreshTokenExpired {
			svr.JSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid refresh token"})
			return
		}
		if err != nil {
			svr.Log(err, "unable to rotate refresh token")
			svr.JSON(w, http.StatusInternalServerError, nil)
			return
		}
		u, err := userRepo.UserByID(userID)
		if err != nil {
			svr.Log(err, fmt.Sprintf("unable to retrieve user %s", userID))
			svr.JSON(w, http.StatusInternalServerError, nil)
			return
		}
		if !u.IsActive {
			svr.JSON(w, http.StatusUnauthorized, map[string]string{"detail": "Account is inactive"})
			return
		}
		access, err := token.EncodeAccessToken(
			svr.GetJWTSigningKey(), u.ID, u.Email, u.Role, u.Role == user.RoleAdmin, svr.GetConfig().AccessTokenTTL)
		if err != nil {
			svr.Log(err, "unable to encode access token")
			svr.JSON(w, http.StatusInternalServerError, nil)
			return
		}
		svr.JSON(w, http.StatusOK, map[string]string{
			"access":  access,
			"refresh": newRefresh,
		})
	}
}

// ProfileHandler returns the authenticated user with its role profile.
func ProfileHandler(svr server.Server, userRepo userStore) http.HandlerFunc {
	return middleware.UserAuthenticatedMiddleware(
		svr.GetJWTSigningKey(),
		func(w http.ResponseWriter, r *http.Request) {
			claims, err := middleware.GetUserFromJWT(r, svr.GetJWTSigningKey())
			if err != nil {
				svr.JSON(w, http.StatusUnauthorized, map[string]string{"detail": "Authentication required"})
				return
			}
			u, err := userRepo.UserByID(claims.UserID)
			if err == sql.ErrNoRows {
				svr.JSON(w, http.StatusNotFound, nil)
				return
			}
			if err != nil {
				svr.Log(err, fmt.Sprintf("unable to retrieve user %s", claims.UserID))
				svr.JSON(w, http.StatusInternalServerError, nil)
				return
			}
			svr.JSON(w, http.StatusOK, u)
		})
}

// ProfileUpdateHandler applies partial updates to the account fields
// and, when present, the role profile.
func ProfileUpdateHandler(svr server.Server, userRepo userStore) http.HandlerFunc {
	return middleware.UserAuthenticatedMiddleware(
		svr.GetJWTSigningKey(),
		func(w http.ResponseWriter, r *http.Request) {
			claims, err := middleware.GetUserFromJWT(r, svr.GetJWTSigningKey())
			if err != nil {
				svr.JSON(w, http.StatusUnauthorized, map[string]string{"detail": "Authentication required"})
				return
			}
			u, err := userRepo.UserByID(claims.UserID)
			if err == sql.ErrNoRows {
				svr.JSON(w, http.StatusNotFound, nil)
				return
			}
			if err != nil {
				svr.Log(err, fmt.Sprintf("unable to retrieve user %s", claims.UserID))
				svr.JSON(w, http.StatusInternalServerError, nil)
				return
			}
			req := &profileUpdateRq{
				FirstName:   u.FirstName,
				LastName:    u.LastName,
				PhoneNumber: u.PhoneNumber,
				Gender:      u.Gender,
				DateOfBirth: u.DateOfBirth,
			}
			if err := json.NewDecoder(r.Body).Decode(req); err != nil {
				svr.JSON(w, http.StatusBadRequest, fieldErrors{"body": "unable to parse request body"}.response())
				return
			}
			errs := fieldErrors{}
			if req.Gender != "" {
				if _, ok := validGenders[req.Gender]; !ok {
					errs["gender"] = "Invalid gender"
				}
			}
			if req.DateOfBirth != nil && req.DateOfBirth.After(time.Now().UTC()) {
				errs["date_of_birth"] = "Date of birth cannot be in the future"
			}
			if len(errs) > 0 {
				svr.JSON(w, http.StatusBadRequest, errs.response())
				return
			}
			u.FirstName = req.FirstName
			u.LastName = req.LastName
			u.PhoneNumber = req.PhoneNumber
			u.Gender = req.Gender
			u.DateOfBirth = req.DateOfBirth
			if err := userRepo.UpdateUserDetails(u); err != nil {
				svr.Log(err, fmt.Sprintf("unable to update user %s", u.ID))
				svr.JSON(w, http.StatusInternalServerError, nil)
				return
			}
			if req.JobseekerProfile != nil && u.Role == user.RoleJobseeker {
				req.JobseekerProfile.UserID = u.ID
				if err := userRepo.UpdateJobseekerProfile(req.JobseekerProfile); err != nil {
					svr.Log(err, fmt.Sprintf("unable to update jobseeker profile %s", u.ID))
					svr.JSON(w, http.StatusInternalServerError, nil)
					return
				}
			}
			if req.EmployerProfile != nil && u.Role == user.RoleEmployer {
				req.EmployerProfile.UserID = u.ID
				if err := userRepo.UpdateEmployerProfile(req.EmployerProfile); err != nil {
					svr.Log(err, fmt.Sprintf("unable to update employer profile %s", u.ID))
					svr.JSON(w, http.StatusInternalServerError, nil)
					return
				}
			}
			updated, err := userRepo.UserByID(u.ID)
			if err != nil {
				svr.Log(err, fmt.Sprintf("unable to retrieve user %s after update", u.ID))
				svr.JSON(w, http.StatusInternalServerError, nil)
				return
			}
			svr.JSON(w, http.StatusOK, updated)
		})
}

// ChangePasswordHandler verifies the current password and stores a new
// hash. Every refresh token the user holds is revoked, forcing a fresh
// login on other devices.
func ChangePasswordHandler(svr server.Server, userRepo userStore, refreshRepo refreshStore) http.HandlerFunc {
	return middleware.UserAuthenticatedMiddleware(
		svr.GetJWTSigningKey(),
		func(w http.ResponseWriter, r *http.Request) {
			claims, err := middleware.GetUserFromJWT(r, svr.GetJWTSigningKey())
			if err != nil {
				svr.JSON(w, http.StatusUnauthorized, map[string]string{"detail": "Authentication required"})
				return
			}
			req := &changePasswordRq{}
			if err := json.NewDecoder(r.Body).Decode(req); err != nil {
				svr.JSON(w, http.StatusBadRequest, fieldErrors{"body": "unable to parse request body"}.response())
				return
			}
			errs := fieldErrors{}
			if req.OldPassword == "" {
				errs["old_password"] = "This field is required"
			}
			if req.NewPassword == "" {
				errs["new_password"] = "This field is required"
			} else if len(req.NewPassword) < minPasswordLength {
				errs["new_password"] = fmt.Sprintf("Password must be at least %d characters", minPasswordLength)
			} else if req.NewPassword != req.ConfirmPassword {
				errs["new_password"] = "Password fields didn't match."
			}
			if len(errs) > 0 {
				svr.JSON(w, http.StatusBadRequest, errs.response())
				return
			}
			u, err := userRepo.UserByID(claims.UserID)
			if err != nil {
				svr.Log(err, fmt.Sprintf("unable to retrieve user %s", claims.UserID))
				svr.JSON(w, http.StatusInternalServerError, nil)
				return
			}
			if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.OldPassword)); err != nil {
				svr.JSON(w, http.StatusBadRequest, fieldErrors{"old_password": "Old password is incorrect"}.response())
				return
			}
			newHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
			if err != nil {
				svr.Log(err, "unable to hash password")
				svr.JSON(w, http.StatusInternalServerError, nil)
				return
			}
			if err := userRepo.UpdatePassword(u.ID, string(newHash)); err != nil {
				svr.Log(err, fmt.Sprintf("unable to update password for user %s", u.ID))
				svr.JSON(w, http.StatusInternalServerError, nil)
				return
			}
			if err := refreshRepo.RevokeAllForUser(u.ID); err != nil {
				svr.Log(err, fmt.Sprintf("unable to revoke refresh tokens for user %s", u.ID))
			}
			svr.JSON(w, http.StatusOK, map[string]string{"message": "Password changed successfully"})
		})
}

func redirectForRole(role string) string {
	switch role {
	case user.RoleAdmin:
		return "/admin/dashboard"
	case user.RoleEmployer:
		return "/employer/dashboard"
	default:
		return "/jobs"
	}
}
