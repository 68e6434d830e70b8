package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"attendhq/internal/caching"
	"attendhq/internal/common"
	"attendhq/internal/models"
	"attendhq/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenTTL = 24 * time.Hour

	loginRateLimit  = 10
	loginRateWindow = time.Minute
)

// AuthHandlers handles signup, login and the current-user endpoint.
type AuthHandlers struct {
	userRepo  repositories.UserRepository
	cacheSvc  caching.CacheService
	jwtSecret string
}

func NewAuthHandlers(userRepo repositories.UserRepository, cacheSvc caching.CacheService, jwtSecret string) *AuthHandlers {
	return &AuthHandlers{
		userRepo:  userRepo,
		cacheSvc:  cacheSvc,
		jwtSecret: jwtSecret,
	}
}

type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	models.TokenResponse
	User *models.User `json:"user"`
}

func (h *AuthHandlers) Signup(c echo.Context) error {
	ctx := c.Request().Context()

	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" || strings.TrimSpace(req.FullName) == "" {
		return common.SendClientError(c, "Email, password and full name are required")
	}
	if len(req.Password) < 6 {
		return common.SendValidationError(c, "password", "must be at least 6 characters")
	}

	if existing, err := h.userRepo.GetByEmail(ctx, req.Email); err == nil && existing != nil {
		return c.JSON(http.StatusConflict, common.CreateErrorResponse("EMAIL_TAKEN", "An account with this email already exists", nil))
	} else if err != nil && !errors.Is(err, common.ErrNotFound) {
		return respondError(c, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return common.SendServerError(c, "Failed to process password")
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(req.FullName),
		Status:       "active",
	}
	if err := h.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrDuplicateRecord) {
			return c.JSON(http.StatusConflict, common.CreateErrorResponse("EMAIL_TAKEN", "An account with this email already exists", nil))
		}
		return respondError(c, err)
	}

	token, err := h.issueSession(ctx, user.ID)
	if err != nil {
		return common.SendServerError(c, "Failed to generate token")
	}

	return c.JSON(http.StatusCreated, AuthResponse{TokenResponse: *token, User: user})
}

func (h *AuthHandlers) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return common.SendClientError(c, "Email and password are required")
	}

	limited, err := h.cacheSvc.IsRateLimited(ctx, "login:"+req.Email, loginRateLimit, loginRateWindow)
	if err != nil {
		log.Printf("rate limit check failed for %s: %v", req.Email, err)
	} else if limited {
		return c.JSON(http.StatusTooManyRequests, common.CreateErrorResponse("RATE_LIMITED", "Too many login attempts, try again later", nil))
	}

	user, err := h.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.SendUnauthorizedError(c)
		}
		return respondError(c, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return common.SendUnauthorizedError(c)
	}

	if err := h.userRepo.TouchLastLogin(ctx, user.ID); err != nil {
		log.Printf("failed to touch last login for %s: %v", user.ID.String(), err)
	}

	token, err := h.issueSession(ctx, user.ID)
	if err != nil {
		return common.SendServerError(c, "Failed to generate token")
	}

	return c.JSON(http.StatusOK, AuthResponse{TokenResponse: *token, User: user})
}

// Me returns the authenticated user's profile.
func (h *AuthHandlers) Me(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	user, err := h.userRepo.GetByID(ctx, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// Logout drops the token's session record. The token itself stays valid
// until expiry; the session store only tracks active logins.
func (h *AuthHandlers) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	sessionID, ok := common.GetSessionIDFromContext(ctx)
	if !ok {
		return c.NoContent(http.StatusNoContent)
	}
	if err := h.cacheSvc.DeleteSession(ctx, sessionID); err != nil {
		log.Printf("failed to delete session %s: %v", sessionID, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// issueSession mints an access token and records its session ID in the
// cache. A cache failure is logged, not fatal; auth stays stateless.
func (h *AuthHandlers) issueSession(ctx context.Context, userID uuid.UUID) (*models.TokenResponse, error) {
	now := time.Now()
	sessionID := uuid.NewString()
	claims := jwt.MapClaims{
		"sub": userID.String(),
		"jti": sessionID,
		"iat": now.Unix(),
		"exp": now.Add(accessTokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(h.jwtSecret))
	if err != nil {
		return nil, err
	}

	if err := h.cacheSvc.SetSession(ctx, sessionID, userID.String(), accessTokenTTL); err != nil {
		log.Printf("failed to record session for %s: %v", userID.String(), err)
	}

	return &models.TokenResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int64(accessTokenTTL.Seconds()),
	}, nil
}
