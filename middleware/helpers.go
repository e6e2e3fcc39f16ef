package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/Dosada05/hackathon-teams/models"
	"github.com/golang-jwt/jwt/v4"
)

// SessionFromContext возвращает сессию запроса или nil для анонимного посетителя.
func SessionFromContext(ctx context.Context) *models.Session {
	session, _ := ctx.Value(sessionContextKey).(*models.Session)
	return session
}

func GetUserIDFromContext(ctx context.Context) (string, error) {
	session := SessionFromContext(ctx)
	if !session.Authenticated() {
		return "", errors.New("user session not found in context")
	}
	return session.UserID, nil
}

func userIDFromClaims(claims jwt.MapClaims) (string, error) {
	raw, ok := claims[jwtClaimUserID]
	if !ok {
		// Токены некоторых провайдеров несут ID только в sub
		raw, ok = claims[jwtClaimSubject]
	}
	if !ok {
		return "", ErrMissingUserClaim
	}

	switch v := raw.(type) {
	case string:
		if v == "" {
			return "", fmt.Errorf("empty '%s' claim", jwtClaimUserID)
		}
		return v, nil
	case float64:
		if v != float64(int64(v)) || v <= 0 {
			return "", fmt.Errorf("invalid user ID value in '%s' claim: %v", jwtClaimUserID, v)
		}
		return strconv.FormatInt(int64(v), 10), nil
	default:
		return "", fmt.Errorf("invalid type for '%s' claim: expected string or number, got %T", jwtClaimUserID, raw)
	}
}
