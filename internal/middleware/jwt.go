package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	logrus "github.com/sirupsen/logrus"
)

const issuer = "pilotos-api"

// Context keys set by RequireAuth.
const (
	CtxUserID = "user_id"
	CtxRole   = "role"
	CtxEmail  = "email"
	CtxClaims = "claims"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims carries the user id as subject plus role and email.
type Claims struct {
	Role  string `json:"role"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return uint(id), nil
}

// SessionChecker backs RequireAuth with server-side state: logged-out token
// ids and the current role of the account a token was issued to.
type SessionChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
	// AccountRole returns the account's current role. active is false when
	// the account was deactivated or deleted.
	AccountRole(ctx context.Context, userID uint) (role string, active bool, err error)
}

// JWTManager signs and verifies HS256 bearer tokens.
type JWTManager struct {
	secret []byte
	ttl    time.Duration
}

func NewJWTManager(secret string, ttl time.Duration) *JWTManager {
	return &JWTManager{secret: []byte(secret), ttl: ttl}
}

func (m *JWTManager) TTL() time.Duration { return m.ttl }

func (m *JWTManager) GenerateToken(userID uint, role, email string) (string, error) {
	now := time.Now()
	claims := Claims{
		Role:  role,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ID:        uuid.NewString(),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *JWTManager) ValidateToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if _, err := claims.UserID(); err != nil {
		return nil, err
	}
	return claims, nil
}

// RequireAuth ensures a valid, unrevoked bearer token for an active account
// is present and stores its claims in the context. The role comes from the
// account, so demotions apply before the token expires. A nil sessions
// trusts the token alone.
func RequireAuth(m *JWTManager, sessions SessionChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
			return
		}

		claims, err := m.ValidateToken(strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer ")))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Invalid or expired token"})
			return
		}
		userID, _ := claims.UserID()
		role := claims.Role

		if sessions != nil {
			ctx := c.Request.Context()
			isRevoked, err := sessions.IsRevoked(ctx, claims.ID)
			if err != nil {
				logrus.WithError(err).Error("checking token revocation")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
				return
			}
			if isRevoked {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Token has been revoked"})
				return
			}

			current, active, err := sessions.AccountRole(ctx, userID)
			if err != nil {
				logrus.WithError(err).Error("loading token account")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
				return
			}
			if !active {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Account is inactive"})
				return
			}
			role = current
		}

		c.Set(CtxUserID, userID)
		c.Set(CtxRole, role)
		c.Set(CtxEmail, claims.Email)
		c.Set(CtxClaims, claims)

		c.Next()
	}
}

// RequireRole must run after RequireAuth; it rejects callers whose role is
// not one of roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(CtxRole)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "Insufficient permissions"})
	}
}

// CurrentUserID returns the authenticated user id, or 0.
func CurrentUserID(c *gin.Context) uint {
	if v, ok := c.Get(CtxUserID); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

// CurrentClaims returns the verified token claims, or nil.
func CurrentClaims(c *gin.Context) *Claims {
	if v, ok := c.Get(CtxClaims); ok {
		if claims, ok := v.(*Claims); ok {
			return claims
		}
	}
	return nil
}
