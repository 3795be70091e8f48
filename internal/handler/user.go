package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tomiwa-ade/demicredit/internal/auth"
	"github.com/tomiwa-ade/demicredit/internal/domain"
	"github.com/tomiwa-ade/demicredit/internal/logging"
	"github.com/tomiwa-ade/demicredit/internal/metrics"
	"github.com/tomiwa-ade/demicredit/internal/service"
)

type userService interface {
	Signup(ctx context.Context, req service.SignupRequest) (*service.AuthResult, error)
	Token(user *domain.User) (string, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	DetailsWithBalance(ctx context.Context, userID uuid.UUID) (*service.UserDetails, error)
}

type loginLimiter interface {
	Locked(ctx context.Context, email string) (bool, error)
	Fail(ctx context.Context, email string) (remaining int, locked bool, err error)
	Reset(ctx context.Context, email string) error
}

type UserHandler struct {
	users   userService
	limiter loginLimiter
}

func NewUserHandler(users userService, limiter loginLimiter) *UserHandler {
	return &UserHandler{users: users, limiter: limiter}
}

type signupRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r signupRequest) Validate() []FieldError {
	var errs []FieldError
	if _, err := mail.ParseAddress(r.Email); err != nil {
		errs = append(errs, FieldError{Field: "email", Message: "must be a valid email address"})
	}
	if len(r.Username) < 3 {
		errs = append(errs, FieldError{Field: "username", Message: "must be at least 3 characters"})
	}
	if strings.ContainsAny(r.Username, " \t") {
		errs = append(errs, FieldError{Field: "username", Message: "must not contain whitespace"})
	}
	if len(r.Password) < 8 {
		errs = append(errs, FieldError{Field: "password", Message: "must be at least 8 characters"})
	}
	return errs
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r loginRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Email == "" {
		errs = append(errs, FieldError{Field: "email", Message: "required"})
	}
	if r.Password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "required"})
	}
	return errs
}

type authResponse struct {
	Token string  `json:"token"`
	User  userDTO `json:"user"`
}

type userDTO struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Username string    `json:"username"`
}

func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Username = strings.TrimSpace(req.Username)

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	result, err := h.users.Signup(r.Context(), service.SignupRequest{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		logging.FromContext(r.Context()).Error("signup failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, authResponse{
		Token: result.Token,
		User: userDTO{
			ID:       result.User.ID,
			Email:    result.User.Email,
			Username: result.User.Username,
		},
	})
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	locked, err := h.limiter.Locked(r.Context(), req.Email)
	if err != nil {
		// fail open: a cache outage should not block every login
		log.Warn("login limiter unavailable", "error", err)
	}
	if locked {
		metrics.LoginLockouts.Inc()
		RespondAppError(w, ErrLoginLocked, nil)
		return
	}

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.recordFailure(w, r, req.Email)
			return
		}
		RespondDomainError(w, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		h.recordFailure(w, r, req.Email)
		return
	}

	if err := h.limiter.Reset(r.Context(), req.Email); err != nil {
		log.Warn("failed to reset login counter", "error", err)
	}

	token, err := h.users.Token(user)
	if err != nil {
		log.Error("failed to issue token", "error", err)
		RespondAppError(w, ErrInternalError, nil)
		return
	}

	RespondSuccess(w, http.StatusOK, authResponse{
		Token: token,
		User: userDTO{
			ID:       user.ID,
			Email:    user.Email,
			Username: user.Username,
		},
	})
}

// recordFailure bumps the failure counter and answers with either the
// generic credentials rejection or the lockout, never revealing whether
// the email exists.
func (h *UserHandler) recordFailure(w http.ResponseWriter, r *http.Request, email string) {
	remaining, locked, err := h.limiter.Fail(r.Context(), email)
	if err != nil {
		logging.FromContext(r.Context()).Warn("failed to record login failure", "error", err)
		RespondAppError(w, ErrInvalidCredentials, nil)
		return
	}
	if locked {
		metrics.LoginLockouts.Inc()
		RespondAppError(w, ErrLoginLocked, nil)
		return
	}
	RespondAppError(w, ErrInvalidCredentials, map[string]string{
		"hint": fmt.Sprintf("%d attempt(s) remaining before lockout", remaining),
	})
}

type profileDTO struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Username string    `json:"username"`
	Balance  string    `json:"balance"`
}

// Me returns the authenticated caller's profile with their current
// balance.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	details, err := h.users.DetailsWithBalance(r.Context(), identity.UserID)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to load profile", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, profileDTO{
		ID:       details.User.ID,
		Email:    details.User.Email,
		Username: details.User.Username,
		Balance:  details.Balance.String(),
	})
}

// GetByUsername lets a sender confirm a receiver before transferring.
// Only public fields are returned.
func (h *UserHandler) GetByUsername(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	if username == "" {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	user, err := h.users.GetByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			RespondAppError(w, ErrUserNotFound, nil)
			return
		}
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, map[string]any{
		"id":       user.ID,
		"username": user.Username,
	})
}
