package middlewares

import (
	"net/http"
	"strings"

	"freshcart/internal/models"
	"freshcart/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carried in the bearer token.
type Claims struct {
	UserID  uint   `json:"user_id"`
	Role    string `json:"role"`
	StoreID *uint  `json:"store_id,omitempty"`
	jwt.RegisteredClaims
}

// ParseToken validates a bearer token and returns its claims.
func ParseToken(tokenString, secret string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	return claims, nil
}

// ActorFromClaims maps token claims onto the service-layer actor.
func ActorFromClaims(claims *Claims) services.Actor {
	return services.Actor{
		UserID:  claims.UserID,
		Role:    models.UserRole(claims.Role),
		StoreID: claims.StoreID,
	}
}

// Auth rejects requests without a valid bearer token and stores the claims
// in the request context.
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString := strings.TrimPrefix(header, "Bearer ")
		if tokenString == "" || tokenString == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := ParseToken(tokenString, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set("claims", claims)
		c.Next()
	}
}

// CurrentActor reads the authenticated actor set by Auth.
func CurrentActor(c *gin.Context) services.Actor {
	if v, ok := c.Get("claims"); ok {
		if claims, ok := v.(*Claims); ok {
			return ActorFromClaims(claims)
		}
	}
	return services.Actor{}
}
