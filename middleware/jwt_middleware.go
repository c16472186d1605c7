package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/HSouheill/couplecanvas_backend/models"
	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// JwtCustomClaims for JWT token
type JwtCustomClaims struct {
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	UserType string `json:"userType"`
	jwt.StandardClaims
}

// Valid implements the Claims interface for Echo's JWT middleware
func (c JwtCustomClaims) Valid() error {
	// ExpiresAt 0 means the token never expires
	if c.ExpiresAt > 0 && time.Now().Unix() > c.ExpiresAt {
		return errors.New("token is expired")
	}
	if c.NotBefore > 0 && time.Now().Unix() < c.NotBefore {
		return errors.New("token used before valid")
	}
	if c.UserID == "" || c.UserType == "" {
		return errors.New("token is missing subject")
	}
	return nil
}

// JWT signs and verifies access tokens
type JWT struct {
	secret    []byte
	ttl       time.Duration
	blacklist *TokenBlacklist
	logger    *zap.Logger
}

func NewJWT(secret string, ttl time.Duration, blacklist *TokenBlacklist, logger *zap.Logger) *JWT {
	if logger == nil {
		logger = zap.NewNop()
	}
	if blacklist == nil {
		blacklist = NewTokenBlacklist(nil)
	}
	return &JWT{secret: []byte(secret), ttl: ttl, blacklist: blacklist, logger: logger}
}

// Generate signs a token for the user. It satisfies services.TokenIssuer.
func (j *JWT) Generate(userID, email, userType string) (string, error) {
	if len(j.secret) == 0 {
		return "", errors.New("JWT_SECRET environment variable is required")
	}

	now := time.Now()
	claims := &JwtCustomClaims{
		UserID:   userID,
		Email:    email,
		UserType: userType,
		StandardClaims: jwt.StandardClaims{
			IssuedAt: now.Unix(),
		},
	}
	if j.ttl > 0 {
		claims.ExpiresAt = now.Add(j.ttl).Unix()
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
}

// Middleware validates the bearer token (or ?token= for websocket clients),
// rejects revoked tokens and stores the claims on the context.
func (j *JWT) Middleware() echo.MiddlewareFunc {
	if len(j.secret) == 0 {
		j.logger.Warn("JWT_SECRET is not set, authenticated routes are disabled")
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				return c.JSON(http.StatusUnauthorized, models.Response{
					Status:  http.StatusUnauthorized,
					Message: "JWT configuration error",
				})
			}
		}
	}

	parse := middleware.JWTWithConfig(middleware.JWTConfig{
		SigningKey:  j.secret,
		Claims:      &JwtCustomClaims{},
		TokenLookup: "header:" + echo.HeaderAuthorization + ",query:token",
		ErrorHandlerWithContext: func(err error, c echo.Context) error {
			j.logger.Debug("JWT validation failed",
				zap.String("path", c.Request().URL.Path),
				zap.Error(err))
			return c.JSON(http.StatusUnauthorized, models.Response{
				Status:  http.StatusUnauthorized,
				Message: "Please provide valid credentials",
			})
		},
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return parse(func(c echo.Context) error {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return c.JSON(http.StatusUnauthorized, models.Response{
					Status:  http.StatusUnauthorized,
					Message: "Please provide valid credentials",
				})
			}

			revoked, err := j.blacklist.Contains(c.Request().Context(), token.Raw)
			if err != nil {
				j.logger.Warn("token blacklist lookup failed", zap.Error(err))
			}
			if revoked {
				return c.JSON(http.StatusUnauthorized, models.Response{
					Status:  http.StatusUnauthorized,
					Message: "Token has been invalidated",
				})
			}

			claims := token.Claims.(*JwtCustomClaims)
			c.Set("userId", claims.UserID)
			c.Set("userType", claims.UserType)
			c.Set("email", claims.Email)
			return next(c)
		})
	}
}

// Revoke blacklists the token carried by the current request until it expires
func (j *JWT) Revoke(c echo.Context) error {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return errors.New("invalid token")
	}

	expiry := time.Now().Add(j.ttl)
	if claims, ok := token.Claims.(*JwtCustomClaims); ok && claims.ExpiresAt > 0 {
		expiry = time.Unix(claims.ExpiresAt, 0)
	}
	if !expiry.After(time.Now()) {
		// tokens without expiry stay revoked for a month
		expiry = time.Now().Add(30 * 24 * time.Hour)
	}

	return j.blacklist.Add(c.Request().Context(), token.Raw, expiry)
}

// GetUserFromToken extracts user information from JWT token
func GetUserFromToken(c echo.Context) *JwtCustomClaims {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return nil
	}

	claims, ok := token.Claims.(*JwtCustomClaims)
	if !ok {
		return nil
	}

	return claims
}

// ExtractUserType safely extracts the user type from the context
func ExtractUserType(c echo.Context) string {
	if userType, ok := c.Get("userType").(string); ok && userType != "" {
		return userType
	}

	if claims := GetUserFromToken(c); claims != nil {
		return claims.UserType
	}

	return ""
}

func GetUserIDFromToken(c echo.Context) string {
	if userID, ok := c.Get("userId").(string); ok && userID != "" {
		return userID
	}

	if claims := GetUserFromToken(c); claims != nil {
		return claims.UserID
	}

	return ""
}
