package server

import (
	"context"
	"net/http"
)

type contextKey string

const customerIDKey contextKey = "customer_id"

// CustomerIDMiddleware injects the customer id the identity provider
// verified upstream. This core trusts the header; session validation is
// not its job.
func CustomerIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		customerID := r.Header.Get("X-Customer-ID")
		if customerID == "" {
			respondError(w, http.StatusUnauthorized, "unauthorized", "missing customer identity")
			return
		}

		ctx := context.WithValue(r.Context(), customerIDKey, customerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func customerIDFromContext(ctx context.Context) string {
	customerID, _ := ctx.Value(customerIDKey).(string)
	return customerID
}
