package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const (
	staffClaimsKey contextKey = "staffClaims"
	staffSlotKey   contextKey = "staffSlot"
)

// staffSlot lets RequestLogger see claims attached further down the chain.
type staffSlot struct {
	claims StaffClaims
	set    bool
}

// ErrNoStaffIdentity marks a validly signed token that names no operator.
var ErrNoStaffIdentity = errors.New("middleware: token has neither name nor sub")

// StaffClaims identifies the front-desk operator behind a request.
type StaffClaims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// StaffName returns the operator name, falling back to the token subject.
func (c StaffClaims) StaffName() string {
	if name := strings.TrimSpace(c.Name); name != "" {
		return name
	}
	return strings.TrimSpace(c.Subject)
}

// Validate runs after the registered-claim checks in jwt.Parser.
func (c StaffClaims) Validate() error {
	if c.StaffName() == "" {
		return ErrNoStaffIdentity
	}
	return nil
}

// StaffJWT requires an HS256/384/512 bearer token with an expiry and an
// operator identity. The claims are placed on the request context.
func StaffJWT(secret string) func(http.Handler) http.Handler {
	key := []byte(secret)
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30*time.Second),
	)
	keyFunc := func(*jwt.Token) (any, error) { return key, nil }

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(key) == 0 {
				http.Error(w, "staff auth disabled", http.StatusUnauthorized)
				return
			}
			raw, ok := bearerToken(r)
			if !ok {
				w.Header().Set("WWW-Authenticate", `Bearer realm="frontdesk"`)
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			var claims StaffClaims
			if _, err := parser.ParseWithClaims(raw, &claims, keyFunc); err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="frontdesk", error="invalid_token"`)
				http.Error(w, staffTokenError(err), http.StatusUnauthorized)
				return
			}
			if slot, ok := r.Context().Value(staffSlotKey).(*staffSlot); ok {
				slot.claims, slot.set = claims, true
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), staffClaimsKey, claims)))
		})
	}
}

// StaffClaimsFromContext returns the operator claims if the request was authenticated.
func StaffClaimsFromContext(ctx context.Context) (StaffClaims, bool) {
	claims, ok := ctx.Value(staffClaimsKey).(StaffClaims)
	return claims, ok
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func staffTokenError(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "token expired"
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return "token must carry exp"
	case errors.Is(err, ErrNoStaffIdentity):
		return "token must carry name or sub"
	default:
		return "invalid token"
	}
}
