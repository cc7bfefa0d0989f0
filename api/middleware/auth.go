package middleware

import (
	"net/http"
	"strings"

	"github.com/sellora/sellora-backend/api/responses"
	pkgauth "github.com/sellora/sellora-backend/pkg/auth"
	"github.com/sellora/sellora-backend/pkg/auth/session"
	"github.com/sellora/sellora-backend/pkg/config"
	pkgerrors "github.com/sellora/sellora-backend/pkg/errors"
	"github.com/sellora/sellora-backend/pkg/logger"
)

const sessionTokenHeader = "X-Session-Token"

// SessionOrAuth accepts either a bearer JWT or an anonymous session token
// and seeds the request context with the resulting actor. Anonymous callers
// own exactly the cart keyed by their session token.
func SessionOrAuth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := bearerToken(r); token != "" {
				claims, err := pkgauth.ParseAccessToken(cfg, token)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
					return
				}
				actor := Actor{
					OwnerKey:   claims.OwnerKey(),
					UserID:     claims.UserID,
					Operator:   claims.Operator,
					Identified: true,
				}
				ctx := WithActor(r.Context(), actor)
				if logg != nil {
					ctx = logg.WithOwnerKey(ctx, actor.OwnerKey)
				}
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			sessionToken := strings.TrimSpace(r.Header.Get(sessionTokenHeader))
			if sessionToken == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}
			if !session.IsToken(sessionToken) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid session token"))
				return
			}

			ctx := WithActor(r.Context(), Actor{OwnerKey: sessionToken})
			if logg != nil {
				ctx = logg.WithOwnerKey(ctx, sessionToken)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireIdentity rejects anonymous session callers.
func RequireIdentity(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok || !actor.Identified {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign-in required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireOperator rejects callers without the operator claim.
func RequireOperator(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok || !actor.Identified {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign-in required"))
				return
			}
			if !actor.Operator {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "operator access required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return raw
}
