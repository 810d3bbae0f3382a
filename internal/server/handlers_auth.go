package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/granahq/grana/internal/common"
	"github.com/granahq/grana/internal/models"
)

// signJWT creates a signed HMAC-SHA256 JWT for the given user.
func signJWT(user *models.InternalUser, config *common.AuthConfig) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.UserID,
		"email": user.Email,
		"role":  user.Role,
		"iss":   "grana-server",
		"iat":   now.Unix(),
		"exp":   now.Add(config.GetTokenExpiry()).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.JWTSecret))
}

// validateJWT parses and validates a JWT token string using the given secret.
func validateJWT(tokenString string, secret []byte) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token     string `json:"token"`
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	ExpiresIn int    `json:"expires_in"`
}

// handleAuthRegister creates a user account and returns a token.
func (s *Server) handleAuthRegister(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req registerRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		WriteError(w, http.StatusBadRequest, "A valid email is required")
		return
	}
	if len(req.Password) < 8 {
		WriteError(w, http.StatusBadRequest, "Password must be at least 8 characters")
		return
	}

	// One account per email address.
	store := s.app.Storage.InternalStore()
	if existing, err := store.GetUserByEmail(r.Context(), req.Email); err == nil && existing != nil {
		WriteError(w, http.StatusConflict, "Email already registered")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	user := &models.InternalUser{
		UserID:       uuid.New().String(),
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
		CreatedAt:    time.Now(),
	}
	if err := store.SaveUser(r.Context(), user); err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	s.logger.Info().Str("user", user.UserID).Msg("User registered")

	s.writeAuthResponse(w, http.StatusCreated, user)
}

// handleAuthLogin verifies credentials and returns a token.
func (s *Server) handleAuthLogin(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req registerRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	store := s.app.Storage.InternalStore()
	user, err := store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		user = nil
	}

	// Same response for unknown email and wrong password.
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		WriteError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	s.writeAuthResponse(w, http.StatusOK, user)
}

func (s *Server) writeAuthResponse(w http.ResponseWriter, status int, user *models.InternalUser) {
	token, err := signJWT(user, &s.app.Config.Auth)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to sign token")
		return
	}
	WriteJSON(w, status, authResponse{
		Token:     token,
		UserID:    user.UserID,
		Email:     user.Email,
		ExpiresIn: int(s.app.Config.Auth.GetTokenExpiry().Seconds()),
	})
}
