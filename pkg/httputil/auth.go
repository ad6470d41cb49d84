package httputil

import (
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/medflow/payroll-backend/pkg/actor"
	"github.com/medflow/payroll-backend/pkg/auth"
	"github.com/medflow/payroll-backend/pkg/config"
	"github.com/medflow/payroll-backend/pkg/errors"
	"github.com/medflow/payroll-backend/pkg/logger"
	"github.com/medflow/payroll-backend/pkg/permissions"
)

// Authenticate validates "Authorization: Bearer <jwt>" (HMAC signed) and
// stores the caller as an actor.Actor in the request context.
func Authenticate(cfg config.JWTConfig, log *logger.Logger) func(http.Handler) http.Handler {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	parser := jwt.NewParser(opts...)
	secret := []byte(cfg.Secret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				Error(w, errors.Unauthorized("missing authorization header"))
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				Error(w, errors.Unauthorized("invalid authorization header format"))
				return
			}

			claims := jwt.MapClaims{}
			token, err := parser.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				return secret, nil
			})
			if err != nil {
				log.Debug().Err(err).Msg("token validation failed")
				if stderrors.Is(err, jwt.ErrTokenExpired) {
					Error(w, errors.TokenExpired())
				} else {
					Error(w, errors.TokenInvalid())
				}
				return
			}
			if !token.Valid {
				Error(w, errors.TokenInvalid())
				return
			}

			subject, _ := claims.GetSubject()
			if subject == "" {
				Error(w, errors.TokenInvalid())
				return
			}

			roleClaim, _ := claims["role"].(string)
			role, ok := auth.ParseRole(roleClaim)
			if !ok {
				Error(w, errors.Forbidden("unknown role"))
				return
			}

			a := &actor.Actor{ID: subject, Role: role}
			a.Email, _ = claims["email"].(string)
			a.FirstName, _ = claims["first_name"].(string)
			a.LastName, _ = claims["last_name"].(string)

			recordActor(r.Context(), a)
			next.ServeHTTP(w, r.WithContext(actor.WithActor(r.Context(), a)))
		})
	}
}

// Require rejects callers whose role does not grant permission.
// It panics at route setup when permission is not in permissions.Known.
func Require(permission string) func(http.Handler) http.Handler {
	if !permissions.IsKnown(permission) {
		panic("httputil: unknown permission " + permission)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			a := actor.FromContext(r.Context())
			if a == nil {
				Error(w, errors.Unauthorized("authentication required"))
				return
			}
			if !a.Can(permission) {
				Error(w, errors.Forbidden("missing permission "+permission))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
