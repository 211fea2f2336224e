package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	e "github.com/gartstein/jobboard/internal/jobboard/errors"
	"github.com/gartstein/jobboard/internal/jobboard/models"
	"github.com/go-playground/validator/v10"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"go.uber.org/zap"
)

// UserStore is the subset of the repository the token issuer needs.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

type registerRequest struct {
	Email string      `json:"email" validate:"required,email,max=255"`
	Role  models.Role `json:"role" validate:"required,oneof=company student"`
}

type tokenRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// TokenResponse represents the response structure
type TokenResponse struct {
	Token  string      `json:"token"`
	UserID uint        `json:"userId"`
	Role   models.Role `json:"role"`
}

// Issuer is a development identity service: it registers users and hands
// out tokens for them without checking any credential.
type Issuer struct {
	users    UserStore
	secret   string
	ttl      time.Duration
	validate *validator.Validate
	logger   *zap.Logger
}

func NewIssuer(users UserStore, secret string, ttl time.Duration, logger *zap.Logger) *Issuer {
	return &Issuer{
		users:    users,
		secret:   secret,
		ttl:      ttl,
		validate: validator.New(),
		logger:   logger.Named("issuer"),
	}
}

// Handler returns the issuer routes: POST /register and POST /token.
func (i *Issuer) Handler() (http.Handler, error) {
	mux := runtime.NewServeMux()
	if err := mux.HandlePath(http.MethodPost, "/register", i.register); err != nil {
		return nil, err
	}
	if err := mux.HandlePath(http.MethodPost, "/token", i.token); err != nil {
		return nil, err
	}
	return mux, nil
}

func (i *Issuer) register(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed JSON body")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := i.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "a valid email and a role of company or student are required")
		return
	}

	user := &models.User{Email: req.Email, Role: req.Role}
	if err := i.users.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, e.ErrDuplicateEmail) {
			writeError(w, http.StatusConflict, "email already registered")
			return
		}
		i.logger.Error("failed to create user", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	i.logger.Info("user registered", zap.Uint("user_id", user.ID), zap.String("role", string(user.Role)))
	i.respondWithToken(w, http.StatusCreated, user)
}

func (i *Issuer) token(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed JSON body")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := i.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "a valid email is required")
		return
	}

	user, err := i.users.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			writeError(w, http.StatusNotFound, "unknown user")
			return
		}
		i.logger.Error("failed to look up user", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	i.respondWithToken(w, http.StatusOK, user)
}

func (i *Issuer) respondWithToken(w http.ResponseWriter, status int, user *models.User) {
	token, err := GenerateToken(user.ID, user.Role, i.secret, i.ttl)
	if err != nil {
		i.logger.Error("failed to sign token", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(TokenResponse{Token: token, UserID: user.ID, Role: user.Role})
}
