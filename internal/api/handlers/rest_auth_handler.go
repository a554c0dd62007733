package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/m-zohaibk/AQUABILL/internal/api/middleware"
	"github.com/m-zohaibk/AQUABILL/internal/auth"
	"github.com/m-zohaibk/AQUABILL/internal/config"
	"github.com/m-zohaibk/AQUABILL/internal/services"
)

// RestAuthHandler handles REST requests for sign-up, sign-in and sign-out.
type RestAuthHandler struct {
	cfg         *config.Config
	userService services.IUserService
	rdb         *redis.Client
}

// NewRestAuthHandler creates a new RestAuthHandler.
func NewRestAuthHandler(cfg *config.Config, userService services.IUserService, rdb *redis.Client) *RestAuthHandler {
	return &RestAuthHandler{
		cfg:         cfg,
		userService: userService,
		rdb:         rdb,
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"` // seconds
	User      struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

// SignUp handles POST /v1/auth/signup
func (h *RestAuthHandler) SignUp(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	user, err := h.userService.SignUp(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(c, err, "User not found")
		return
	}

	token, err := auth.GenerateJWT(user.ID, h.cfg.JwtSecret, h.cfg.JwtTTL)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	resp := authResponse{Token: token, ExpiresIn: int64(h.cfg.JwtTTL.Seconds())}
	resp.User.ID = user.ID.String()
	resp.User.Email = user.Email
	c.JSON(http.StatusCreated, resp)
}

// SignIn handles POST /v1/auth/signin
func (h *RestAuthHandler) SignIn(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	user, err := h.userService.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(c, err, "User not found")
		return
	}

	token, err := auth.GenerateJWT(user.ID, h.cfg.JwtSecret, h.cfg.JwtTTL)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	resp := authResponse{Token: token, ExpiresIn: int64(h.cfg.JwtTTL.Seconds())}
	resp.User.ID = user.ID.String()
	resp.User.Email = user.Email
	c.JSON(http.StatusOK, resp)
}

// SignOut handles POST /v1/auth/signout. It revokes the presented token by
// recording its jti in Redis until the token would have expired anyway.
func (h *RestAuthHandler) SignOut(c *gin.Context) {
	claimsVal, exists := c.Get("jwtClaims")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No authenticated session"})
		return
	}
	claims, ok := claimsVal.(*auth.Claims)
	if !ok || claims.ID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No authenticated session"})
		return
	}

	ttl := h.cfg.JwtTTL
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl <= 0 {
		// Already expired, nothing to revoke.
		c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
		return
	}

	if err := h.rdb.Set(c.Request.Context(), middleware.RevokedTokenKeyPrefix+claims.ID, "1", ttl).Err(); err != nil {
		log.Printf("Failed to record revoked token %s: %v", claims.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign out"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}
