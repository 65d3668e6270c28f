package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taxpilot/backend/internal/infrastructure/auth"
	"github.com/taxpilot/backend/internal/interfaces/http/dto"
)

// Context keys for JWT claims
const (
	ContextKeyJWTClaims = "jwt_claims"
	ContextKeyUserID    = "jwt_user_id"
	ContextKeyEmail     = "jwt_email"
	ContextKeyRole      = "jwt_role"
)

// JWTConfig configures the JWT authentication middleware
type JWTConfig struct {
	JWTService *auth.JWTService

	// TokenBlacklist is checked for revoked tokens. Optional; when nil
	// revocation checks are skipped.
	TokenBlacklist auth.TokenBlacklist

	// SkipPaths are exact request paths that bypass authentication
	SkipPaths []string

	// SkipPathPrefixes are path prefixes that bypass authentication
	SkipPathPrefixes []string

	Logger *zap.Logger
}

// JWTAuth returns middleware that validates the Bearer token, rejects
// revoked tokens and stores the claims on the request context.
func JWTAuth(config JWTConfig) gin.HandlerFunc {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	skipPaths := make(map[string]bool, len(config.SkipPaths))
	for _, p := range config.SkipPaths {
		skipPaths[p] = true
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if skipPaths[path] {
			c.Next()
			return
		}
		for _, prefix := range config.SkipPathPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		tokenString, err := extractBearerToken(c)
		if err != nil {
			abortUnauthorized(c, "TOKEN_MISSING", "Authorization token is required")
			return
		}

		claims, err := config.JWTService.ValidateAccessToken(tokenString)
		if err != nil {
			abortWithAuthError(c, err)
			return
		}

		if config.TokenBlacklist != nil {
			if revoked := checkRevocation(c, config, claims, logger); revoked {
				return
			}
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalJWTAuth validates a token when one is presented but lets
// anonymous requests through. Used on public endpoints that behave
// differently for signed-in users.
func OptionalJWTAuth(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := extractBearerToken(c)
		if err != nil {
			c.Next()
			return
		}
		if claims, err := jwtService.ValidateAccessToken(tokenString); err == nil {
			setClaims(c, claims)
		}
		c.Next()
	}
}

// RequireRoles returns middleware that rejects authenticated users
// whose role is not in the allowed set. Must run after JWTAuth.
func RequireRoles(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *gin.Context) {
		role := GetJWTRole(c)
		if role == "" {
			abortUnauthorized(c, "TOKEN_MISSING", "Authorization token is required")
			return
		}
		if !allowed[role] {
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeForbidden,
					"Insufficient permissions for this operation", GetRequestID(c)))
			return
		}
		c.Next()
	}
}

// checkRevocation consults the blacklist for both the token's JTI and
// a user-wide invalidation timestamp. Lookup failures fail open: a
// Redis outage must not lock every user out.
func checkRevocation(c *gin.Context, config JWTConfig, claims *auth.Claims, logger *zap.Logger) bool {
	ctx := c.Request.Context()

	if jti := claims.ID; jti != "" {
		revoked, err := config.TokenBlacklist.IsBlacklisted(ctx, jti)
		if err != nil {
			logger.Warn("token blacklist lookup failed",
				zap.String("jti", jti), zap.Error(err))
		} else if revoked {
			abortUnauthorized(c, "TOKEN_REVOKED", "Token has been revoked")
			return true
		}
	}

	if claims.UserID != "" && claims.IssuedAt != nil {
		invalidated, err := config.TokenBlacklist.IsUserTokenInvalidated(ctx, claims.UserID, claims.IssuedAt.Time)
		if err != nil {
			logger.Warn("user invalidation lookup failed",
				zap.String("user_id", claims.UserID), zap.Error(err))
		} else if invalidated {
			abortUnauthorized(c, "TOKEN_REVOKED", "Session has been terminated")
			return true
		}
	}

	return false
}

func setClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(ContextKeyJWTClaims, claims)
	c.Set(ContextKeyUserID, claims.UserID)
	c.Set(ContextKeyEmail, claims.Email)
	c.Set(ContextKeyRole, claims.Role)
}

func extractBearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", auth.ErrInvalidToken
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", auth.ErrInvalidToken
	}
	return parts[1], nil
}

func abortWithAuthError(c *gin.Context, err error) {
	code := "TOKEN_INVALID"
	message := "Invalid authorization token"

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, message = "TOKEN_EXPIRED", "Token has expired"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		code, message = "TOKEN_NOT_YET_VALID", "Token is not yet valid"
	case errors.Is(err, auth.ErrInvalidTokenType):
		code, message = "TOKEN_WRONG_TYPE", "Wrong token type for this endpoint"
	}

	abortUnauthorized(c, code, message)
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.Header("WWW-Authenticate", `Bearer realm="api"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}

// GetJWTClaims returns the validated claims, or nil for anonymous requests
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(ContextKeyJWTClaims); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// GetJWTUserID returns the authenticated user's ID, or uuid.Nil
func GetJWTUserID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(ContextKeyUserID); ok {
		if s, ok := v.(string); ok {
			if id, err := uuid.Parse(s); err == nil {
				return id
			}
		}
	}
	return uuid.Nil
}

// GetJWTRole returns the authenticated user's role, or ""
func GetJWTRole(c *gin.Context) string {
	if v, ok := c.Get(ContextKeyRole); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
