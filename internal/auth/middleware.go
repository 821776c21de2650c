package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/jobquest-api/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

type contextKey string

const UserIDKey contextKey = "user_id"

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrInvalidAPIKey = errors.New("invalid api key")
	ErrAPIKeyExpired = errors.New("api key expired")
)

// AuthInput carries the credentials huma operations accept.
type AuthInput struct {
	Cookie string `header:"Cookie"`
	APIKey string `header:"X-API-KEY"`
}

func WithUserID(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

func UserIDFromContext(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(UserIDKey).(uint)
	return id, ok && id != 0
}

// Authorize resolves the caller for a huma operation. A user already bound by
// Middleware wins; otherwise the API key header and then the JWT cookie are
// checked.
func (h *AuthHandler) Authorize(ctx context.Context, input AuthInput) (uint, error) {
	if id, ok := UserIDFromContext(ctx); ok {
		return id, nil
	}

	if input.APIKey != "" {
		id, err := h.userFromAPIKey(ctx, input.APIKey)
		if err != nil {
			return 0, huma.Error401Unauthorized(err.Error())
		}
		return id, nil
	}

	if input.Cookie != "" {
		cookies, err := http.ParseCookie(input.Cookie)
		if err != nil {
			return 0, huma.Error401Unauthorized("Malformed cookie header")
		}
		for _, c := range cookies {
			if c.Name != TokenCookieName {
				continue
			}
			id, _, err := h.userFromToken(c.Value)
			if err != nil {
				return 0, huma.Error401Unauthorized(err.Error())
			}
			return id, nil
		}
	}

	return 0, huma.Error401Unauthorized("Unauthorized: No token found")
}

// Middleware binds the caller's user id to the request context when an API
// key or a JWT cookie is present. Requests without credentials pass through
// anonymously; invalid credentials are rejected.
func (h *AuthHandler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if apiKey := r.Header.Get("X-API-KEY"); apiKey != "" {
			userID, err := h.userFromAPIKey(r.Context(), apiKey)
			if err != nil {
				http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
			return
		}

		cookie, err := r.Cookie(TokenCookieName)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		userID, exp, err := h.userFromToken(cookie.Value)
		if err != nil {
			http.Error(w, "Unauthorized: Invalid token", http.StatusUnauthorized)
			return
		}

		// Sliding session: refresh token if it's more than halfway through its duration
		if time.Until(exp) < TokenDuration/2 {
			if newToken, err := h.GenerateToken(userID); err == nil {
				h.setTokenCookie(w, newToken)
			}
		}

		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

func (h *AuthHandler) userFromAPIKey(ctx context.Context, key string) (uint, error) {
	var keyModel models.APIKey
	err := h.db.WithContext(ctx).Where("key = ?", key).First(&keyModel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrInvalidAPIKey
	}
	if err != nil {
		return 0, err
	}

	now := time.Now()
	if keyModel.Expired(now) {
		return 0, ErrAPIKeyExpired
	}
	h.db.WithContext(ctx).Model(&keyModel).Update("last_used_at", now)
	return keyModel.UserID, nil
}

func (h *AuthHandler) userFromToken(tokenString string) (uint, time.Time, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(h.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, time.Time{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, time.Time{}, ErrInvalidToken
	}
	userIDFloat, ok := claims["user_id"].(float64)
	if !ok || userIDFloat <= 0 {
		return 0, time.Time{}, fmt.Errorf("%w: missing user_id claim", ErrInvalidToken)
	}

	var exp time.Time
	if t, err := claims.GetExpirationTime(); err == nil && t != nil {
		exp = t.Time
	}
	return uint(userIDFloat), exp, nil
}
