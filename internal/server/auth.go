package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenIssuer = "railscan"
	subjectKey  = "subject"
)

type TokenClaims struct {
	jwt.RegisteredClaims
}

// NewToken signs an HS256 token for subject, valid for ttl.
func NewToken(jwtSecret, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    tokenIssuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}

// NeedToken admits requests carrying a token signed with jwtSecret, taken
// from the "token" query parameter or an Authorization bearer header. With
// an empty secret every request is refused.
func NeedToken(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := c.Query("token")
		if tokenStr == "" {
			auth := c.GetHeader("Authorization")
			if len(auth) > 7 && strings.EqualFold(auth[:7], "Bearer ") {
				tokenStr = auth[7:]
			}
		}
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "missing token"})
			return
		}
		if jwtSecret == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "token auth is not configured"})
			return
		}

		claims := &TokenClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
			return []byte(jwtSecret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(tokenIssuer))
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid token"})
			return
		}
		c.Set(subjectKey, claims.Subject)
		c.Next()
	}
}
