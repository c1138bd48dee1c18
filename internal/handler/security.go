package handler

import (
	"crypto/subtle"
	"encoding/hex"
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/storefront-checkout/internal/domain/auth"
	"github.com/xenking/storefront-checkout/pkg/httpmiddleware"
)

// APIKeyHeader carries the storefront's API key.
const APIKeyHeader = "X-API-Key"

// legacyAPIKeyHeader is still accepted from older storefront builds.
const legacyAPIKeyHeader = "api_key"

// ScopeCheckout grants access to the checkout API.
const ScopeCheckout = "checkout"

// SecurityHandler authenticates requests via HMAC-SHA256 hashed API keys.
type SecurityHandler struct {
	apikeys auth.Repository
	pepper  []byte
}

// NewSecurityHandler creates a SecurityHandler with the given API key
// repository and HMAC pepper.
func NewSecurityHandler(apikeys auth.Repository, pepper []byte) *SecurityHandler {
	return &SecurityHandler{
		apikeys: apikeys,
		pepper:  pepper,
	}
}

// Authenticate looks up the HMAC of key and compares it with the stored
// hash in constant time.
func (s *SecurityHandler) Authenticate(r *http.Request, key string) (*auth.APIKeyInfo, bool) {
	if key == "" {
		return nil, false
	}
	hashHex := auth.HashKey(key, s.pepper)
	hash, _ := hex.DecodeString(hashHex)

	info, err := s.apikeys.FindByHash(r.Context(), hashHex)
	if err != nil {
		zctx.From(r.Context()).Debug("API key lookup failed", zap.Error(err))
		return nil, false
	}

	stored, err := hex.DecodeString(info.KeyHash)
	if err != nil || subtle.ConstantTimeCompare(hash, stored) != 1 {
		return nil, false
	}
	return info, true
}

// Middleware rejects requests without a valid API key with 401 and keys
// lacking the checkout scope with 403.
func (s *SecurityHandler) Middleware() httpmiddleware.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(APIKeyHeader)
			if key == "" {
				key = r.Header.Get(legacyAPIKeyHeader)
			}
			info, ok := s.Authenticate(r, key)
			if !ok {
				writeError(w, r, http.StatusUnauthorized, "unauthorized", "missing or invalid API key")
				return
			}
			if !info.HasScope(ScopeCheckout) {
				writeError(w, r, http.StatusForbidden, "forbidden", "API key lacks the checkout scope")
				return
			}
			lg := zctx.From(r.Context()).With(zap.String("api_key_id", info.ID))
			ctx := zctx.Base(r.Context(), lg)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
