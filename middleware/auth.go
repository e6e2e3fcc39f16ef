package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Dosada05/hackathon-teams/models"
	"github.com/golang-jwt/jwt/v4"
)

type contextKey string

const sessionContextKey contextKey = "session"

// Определяем константы для имен JWT claims
const (
	jwtClaimUserID  = "user_id"
	jwtClaimSubject = "sub"
)

var (
	ErrMissingUserClaim = errors.New("token has no user id claim")
	ErrUnexpectedSigner = errors.New("unexpected signing method")
)

// Authenticator проверяет Bearer-токены. Сам вход (выдача токенов) здесь не реализуется.
type Authenticator struct {
	secret []byte
	logger *slog.Logger
}

func NewAuthenticator(secret string, logger *slog.Logger) *Authenticator {
	return &Authenticator{secret: []byte(secret), logger: logger}
}

// Session кладет в контекст сессию пользователя, если запрос несет валидный токен.
// Запрос без заголовка Authorization проходит как анонимный; невалидный токен - 401.
func (a *Authenticator) Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			writeUnauthorized(w, "authorization header must be a bearer token")
			return
		}

		session, err := a.ParseToken(tokenString)
		if err != nil {
			a.logger.Debug("rejected token", slog.Any("error", err))
			writeUnauthorized(w, "invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
	})
}

// RequireSession пропускает только запросы с сессией.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !SessionFromContext(r.Context()).Authenticated() {
			writeUnauthorized(w, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ParseToken проверяет подпись HS256 и срок действия и достает ID пользователя.
func (a *Authenticator) ParseToken(tokenString string) (*models.Session, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: %v", ErrUnexpectedSigner, token.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, err
	}

	userID, err := userIDFromClaims(claims)
	if err != nil {
		return nil, err
	}
	return &models.Session{UserID: userID}, nil
}

// IssueToken подписывает токен для userID. Используется тестами и локальной отладкой.
func (a *Authenticator) IssueToken(userID string, claims jwt.MapClaims) (string, error) {
	all := jwt.MapClaims{jwtClaimUserID: userID}
	for k, v := range claims {
		all[k] = v
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, all).SignedString(a.secret)
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="hackathon-teams"`)
	w.WriteHeader(http.StatusUnauthorized)
	fmt.Fprintf(w, "{\n\t\"error\": %q\n}\n", message)
}

func WithSession(ctx context.Context, session *models.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}
