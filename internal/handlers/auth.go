package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"chat-api/internal/apperrors"
	"chat-api/internal/services"
	"chat-api/internal/telemetry"
	"chat-api/internal/validation"
)

// AuthHandler serves registration and session endpoints.
type AuthHandler struct {
	credentials services.Credentials
	tokens      services.Tokens
	audit       *telemetry.AuditEmitter
	logger      *zap.Logger
}

// NewAuthHandler builds an AuthHandler.
func NewAuthHandler(credentials services.Credentials, tokens services.Tokens, audit *telemetry.AuditEmitter, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{credentials: credentials, tokens: tokens, audit: audit, logger: logger}
}

type registerRequest struct {
	services.NewUser
	CheckPassword string `json:"check_password" validate:"required"`
}

type userResponse struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Register creates an account.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if err := validation.Struct(req); err != nil {
		writeError(c, h.logger, err)
		return
	}
	if req.Password != req.CheckPassword {
		c.JSON(http.StatusBadRequest, gin.H{"password": "Password fields did not match."})
		return
	}

	user, err := h.credentials.CreateUser(c.Request.Context(), req.NewUser)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	h.audit.Emit(c.Request.Context(), telemetry.LevelInfo, telemetry.ActionRegister, "user registered", user.ID)
	c.JSON(http.StatusCreated, userResponse{ID: user.ID, Email: user.Email, FirstName: user.FirstName, LastName: user.LastName})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Refresh string `json:"refresh"`
	Access  string `json:"access"`
	userResponse
}

// Login exchanges credentials for a token pair.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if err := validation.Struct(req); err != nil {
		writeError(c, h.logger, err)
		return
	}

	user, err := h.credentials.VerifyCredentials(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if apperrors.HTTPStatus(err) == http.StatusUnauthorized {
			h.audit.Emit(c.Request.Context(), telemetry.LevelWarn, telemetry.ActionLogin, "login rejected", 0)
		}
		writeError(c, h.logger, err)
		return
	}

	pair, err := h.tokens.IssueTokenPair(user.Identity())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	h.audit.Emit(c.Request.Context(), telemetry.LevelInfo, telemetry.ActionLogin, "user logged in", user.ID)
	c.JSON(http.StatusOK, loginResponse{
		Refresh:      pair.RefreshToken,
		Access:       pair.AccessToken,
		userResponse: userResponse{ID: user.ID, Email: user.Email, FirstName: user.FirstName, LastName: user.LastName},
	})
}

type refreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

// Refresh issues a new access token from a refresh token.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if err := validation.Struct(req); err != nil {
		writeError(c, h.logger, err)
		return
	}

	access, err := h.tokens.RefreshAccessToken(c.Request.Context(), req.Refresh)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"access": access})
}

// Logout blacklists the given refresh token. Every failure is a 400.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	if err := h.tokens.Revoke(c.Request.Context(), req.Refresh); err != nil {
		if apperrors.HTTPStatus(err) == http.StatusInternalServerError {
			h.logger.Error("logout failed", zap.String("request_id", requestIDFromContext(c)), zap.Error(err))
		}
		c.Status(http.StatusBadRequest)
		return
	}

	h.audit.Emit(c.Request.Context(), telemetry.LevelInfo, telemetry.ActionLogout, "refresh token revoked", currentUserID(c))
	c.Status(http.StatusResetContent)
}
