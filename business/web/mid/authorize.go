package mid

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/ledgerworks/blockchain/business/web/errs"
	"github.com/ledgerworks/blockchain/foundation/web"
)

// SecretHeader carries the shared secret for operator routes.
const SecretHeader = "X-Ledger-Secret"

// Authorize rejects any request that does not carry the configured shared
// secret. An empty secret rejects every request.
func Authorize(secret string) web.Middleware {

	// This is the actual middleware function to be executed.
	m := func(handler web.Handler) web.Handler {

		// Create the handler that will be attached in the middleware chain.
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			got := r.Header.Get(SecretHeader)
			if secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
				return errs.NewTrusted(errors.New("not authorized"), http.StatusForbidden)
			}

			return handler(ctx, w, r)
		}

		return h
	}

	return m
}
