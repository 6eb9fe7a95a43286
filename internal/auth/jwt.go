package auth

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/anahisv/whisperbox-be/internal/models"
)

// Read per call rather than at init so a .env loaded in main is honored.
func jwtKey() []byte {
	return []byte(os.Getenv("JWT_SECRET"))
}

// Claims defines the JWT claims structure. The account flags are a snapshot
// taken at sign-in: toggling accept-messages mid-session does not update an
// outstanding token, only a fresh sign-in does. Reads against the store see
// the live value.
type Claims struct {
	UserID              string `json:"userId"`
	Username            string `json:"username"`
	IsVerified          bool   `json:"isVerified"`
	IsAcceptingMessages bool   `json:"isAcceptingMessages"`
	jwt.RegisteredClaims
}

// UserClaimsKey is the context key for user claims.
type contextKey string

const UserClaimsKey = contextKey("userClaims")

// GenerateJWT creates a new JWT for a given user.
func GenerateJWT(user models.User) (string, error) {
	expirationTime := time.Now().Add(24 * time.Hour)
	claims := &Claims{
		UserID:              user.ID,
		Username:            user.Username,
		IsVerified:          user.IsVerified,
		IsAcceptingMessages: user.IsAcceptingMessages,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtKey())
}

// ValidateJWT parses and validates a JWT string.
func ValidateJWT(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return jwtKey(), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// ClaimsFromContext extracts the authenticated user's claims from a request
// context populated by JWTMiddleware.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(UserClaimsKey).(*Claims)
	return claims, ok
}

// JWTMiddleware creates a middleware for protecting routes.
func JWTMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var tokenStr string

			// 1. Try to get the token from the Authorization header
			authHeader := r.Header.Get("Authorization")
			if authHeader != "" {
				parts := strings.Split(authHeader, "Bearer ")
				if len(parts) == 2 {
					tokenStr = parts[1]
				}
			}

			// 2. If not in header, fall back to the cookie
			if tokenStr == "" {
				cookie, err := r.Cookie("token")
				if err != nil {
					writeUnauthorized(w, "Not Authenticated.")
					return
				}
				tokenStr = cookie.Value
			}

			// 3. If we still have no token, fail
			if tokenStr == "" {
				writeUnauthorized(w, "Not Authenticated.")
				return
			}

			// 4. Validate the token
			claims, err := ValidateJWT(tokenStr)
			if err != nil {
				writeUnauthorized(w, "Invalid session token")
				return
			}

			// 5. Pass claims down via context
			ctx := context.WithValue(r.Context(), UserClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	fmt.Fprintf(w, `{"success":false,"message":%q}`, message)
}
