package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/bizhub/backend/internal/infrastructure/auth"
	"github.com/bizhub/backend/internal/infrastructure/logger"
	"github.com/bizhub/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey = "jwt_claims"
	JWTUserIDKey = "user_id"
	BearerPrefix = "Bearer "
)

// JWTConfig holds configuration for the JWT middleware
type JWTConfig struct {
	JWTService *auth.JWTService
	// Blacklist is optional; lookups that fail let the request through
	Blacklist auth.TokenBlacklist
	Logger    *zap.Logger
}

// JWTAuth requires a valid, unrevoked access token and stores its claims
func JWTAuth(cfg JWTConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortAuth(c, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}
		token, ok := strings.CutPrefix(header, BearerPrefix)
		if !ok || token == "" {
			abortAuth(c, dto.ErrCodeTokenInvalid, "Invalid authorization header format")
			return
		}

		claims, err := cfg.JWTService.ValidateAccessToken(token)
		if err != nil {
			log.Debug("Access token rejected", zap.Error(err), zap.String("path", c.Request.URL.Path))
			if errors.Is(err, auth.ErrExpiredToken) {
				abortAuth(c, dto.ErrCodeTokenExpired, "Token has expired")
				return
			}
			abortAuth(c, dto.ErrCodeTokenInvalid, "Invalid token")
			return
		}

		if cfg.Blacklist != nil {
			ctx := c.Request.Context()
			if claims.ID != "" {
				revoked, err := cfg.Blacklist.IsTokenRevoked(ctx, claims.ID)
				if err != nil {
					log.Error("Failed to check token blacklist", zap.String("jti", claims.ID), zap.Error(err))
				} else if revoked {
					abortAuth(c, dto.ErrCodeTokenRevoked, "Token has been revoked")
					return
				}
			}
			invalidated, err := cfg.Blacklist.IsUserRevoked(ctx, claims.UserID, claims.GetIssuedAtTime())
			if err != nil {
				log.Error("Failed to check user token invalidation", zap.String("user_id", claims.UserID), zap.Error(err))
			} else if invalidated {
				abortAuth(c, dto.ErrCodeTokenRevoked, "Session has been invalidated")
				return
			}
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTUserIDKey, claims.UserID)

		ctx, reqLogger := logger.WithUserID(c.Request.Context(), logger.GetGinLogger(c), claims.UserID)
		c.Request = c.Request.WithContext(ctx)
		c.Set("logger", reqLogger)

		c.Next()
	}
}

func abortAuth(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}

// GetJWTClaims returns the claims stored by JWTAuth
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(JWTClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// GetUserID returns the authenticated user's ID
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	claims := GetJWTClaims(c)
	if claims == nil {
		return uuid.Nil, false
	}
	id, err := claims.GetUserUUID()
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// AccessTokenTTL returns the remaining lifetime of the presented access token
func AccessTokenTTL(c *gin.Context, now time.Time) time.Duration {
	if claims := GetJWTClaims(c); claims != nil {
		return claims.RemainingTTL(now)
	}
	return 0
}
