// Server wiring for the UI bridge's local HTTP surface: a single
// request/response route plus an SSE push of snapshot events.
//
// Grounded on cmd/gateway/middleware.go's JWT handshake (generateJWT/
// validateJWT via golang-jwt/jwt/v5, hashToken via sha256) adapted from
// gorilla/mux to gin-gonic/gin, since gin is a genuine dependency of this
// module's stack with no call site elsewhere in the pack to imitate
// directly. Of middleware.go's checks only the bearer-token auth is kept:
// these routes have no CORS or origin check.
package uibridge

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

// tokenClaims is the UI session's JWT payload: a single extension
// process talking to its own background core, so there is no user id to
// carry beyond the session marker itself.
type tokenClaims struct {
	Session string `json:"session"`
	jwt.RegisteredClaims
}

// IssueToken mints a bearer token for sessionID, valid for 24h, signed
// with secret. The extension's own background page calls this once at
// startup and attaches the result to every ui bridge request.
func IssueToken(secret []byte, sessionID string) (string, error) {
	claims := &tokenClaims{
		Session: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "walletd",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func validateToken(secret []byte, tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token")
	}
	return claims.Session, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// authMiddleware rejects any request that does not carry a valid bearer
// token signed with secret, mirroring cmd/gateway's Authorization-header
// check.
func authMiddleware(secret []byte, log *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		const prefix = "Bearer "
		if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		token := header[len(prefix):]
		session, err := validateToken(secret, token)
		if err != nil {
			log.WithError(err).WithField("tokenHash", hashToken(token)).Warn("ui bridge: rejected token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set("session", session)
		c.Next()
	}
}

// RegisterRoutes mounts the ui bridge's request/response and event-push
// routes onto r under prefix, gated by secret.
func (b *Bridge) RegisterRoutes(r gin.IRouter, prefix string, secret []byte) {
	group := r.Group(prefix, authMiddleware(secret, b.log))

	group.POST("/request", func(c *gin.Context) {
		var req Request
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, b.Handle(c.Request.Context(), req))
	})

	group.GET("/events", func(c *gin.Context) {
		events, unsubscribe := b.Subscribe()
		defer unsubscribe()

		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")

		c.Stream(func(w http.ResponseWriter) bool {
			select {
			case event, ok := <-events:
				if !ok {
					return false
				}
				c.SSEvent(event.Event, event)
				return true
			case <-c.Request.Context().Done():
				return false
			}
		})
	})
}
