package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/baechuer/real-time-ressys/services/explore-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/explore-service/internal/logger"
	"github.com/baechuer/real-time-ressys/services/explore-service/internal/transport/http/response"
)

type ctxKey string

const (
	ctxUserID ctxKey = "user_id"
	ctxRole   ctxKey = "role"

	defaultRole = "user"
	clockSkew   = 30 * time.Second
)

// Claims mirrors the access token minted by the auth service.
type Claims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	Ver    int64  `json:"ver"`
	jwt.RegisteredClaims
}

var (
	errNoBearer = errors.New("missing bearer token")
	errNoUID    = errors.New("missing uid")
)

// AuthMiddleware verifies HS256 access tokens. Only bookmark routes use it;
// listings stay anonymous.
type AuthMiddleware struct {
	secret []byte
	parser *jwt.Parser
}

func NewAuth(secret, issuer string) *AuthMiddleware {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(clockSkew),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	return &AuthMiddleware{
		secret: []byte(secret),
		parser: jwt.NewParser(opts...),
	}
}

func (a *AuthMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := a.verify(r.Header.Get("Authorization"))
		if err != nil {
			logger.Ctx(r.Context()).Debug().Err(err).Msg("bearer token rejected")
			response.Err(w, r, &domain.AppError{
				Code:    domain.CodeUnauthorized,
				Message: "unauthorized",
				Meta:    map[string]string{"reason": reason(err)},
			})
			return
		}

		role := strings.TrimSpace(claims.Role)
		if role == "" {
			role = defaultRole
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), claims.UserID, role)))
	})
}

func (a *AuthMiddleware) verify(header string) (*Claims, error) {
	raw, ok := strings.CutPrefix(strings.TrimSpace(header), "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, errNoBearer
	}

	claims := &Claims{}
	if _, err := a.parser.ParseWithClaims(strings.TrimSpace(raw), claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}); err != nil {
		return nil, err
	}
	if strings.TrimSpace(claims.UserID) == "" {
		return nil, errNoUID
	}
	return claims, nil
}

// reason turns a verification failure into a short client-facing string.
func reason(err error) string {
	switch {
	case errors.Is(err, errNoBearer), errors.Is(err, errNoUID):
		return err.Error()
	case errors.Is(err, jwt.ErrTokenExpired):
		return "token expired"
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return "invalid issuer"
	default:
		return "invalid token"
	}
}

func UserID(r *http.Request) string {
	v, _ := r.Context().Value(ctxUserID).(string)
	return v
}

func Role(r *http.Request) string {
	v, _ := r.Context().Value(ctxRole).(string)
	return v
}

// WithUser returns ctx carrying an authenticated user, as Require would set it.
func WithUser(ctx context.Context, userID, role string) context.Context {
	ctx = context.WithValue(ctx, ctxUserID, userID)
	return context.WithValue(ctx, ctxRole, role)
}
