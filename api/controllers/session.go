package controllers

import (
	"net/http"

	"github.com/sellora/sellora-backend/api/responses"
	"github.com/sellora/sellora-backend/pkg/auth/session"
	pkgerrors "github.com/sellora/sellora-backend/pkg/errors"
	"github.com/sellora/sellora-backend/pkg/logger"
)

// SessionCreate mints an anonymous session token. The token is the cart
// owner key until the buyer signs in and merges.
func SessionCreate(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := session.NewToken()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint session token"))
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"session_token": token})
	}
}
