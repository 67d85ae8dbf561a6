package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/jwtauth"
	"github.com/go-chi/render"

	"github.com/tendant/simple-classroom/pkg/classroom"
)

// Token claims mapped onto classroom.Principal.
const (
	ClaimSubject = "sub"
	ClaimName    = "name"
	ClaimPicture = "picture"
	ClaimAdmin   = "admin"
)

// NewAuth returns the HS256 verifier for bearer tokens.
func NewAuth(secret string) (*jwtauth.JWTAuth, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	return jwtauth.New("HS256", []byte(secret), nil), nil
}

// IssueToken signs a token for p. It is used by the CLI and in tests; in
// production tokens come from the identity provider.
func IssueToken(auth *jwtauth.JWTAuth, p classroom.Principal) (string, error) {
	claims := map[string]interface{}{
		ClaimSubject: p.ID,
		ClaimName:    p.DisplayName,
		ClaimAdmin:   p.IsAdmin,
	}
	if p.PhotoURL != "" {
		claims[ClaimPicture] = p.PhotoURL
	}
	_, token, err := auth.Encode(claims)
	return token, err
}

// PrincipalFromContext returns the principal of a verified token in ctx.
func PrincipalFromContext(ctx context.Context) (classroom.Principal, bool) {
	token, claims, err := jwtauth.FromContext(ctx)
	if err != nil || token == nil {
		return classroom.Principal{}, false
	}
	p := classroom.Principal{ID: token.Subject()}
	if p.ID == "" {
		return classroom.Principal{}, false
	}
	p.DisplayName, _ = claims[ClaimName].(string)
	p.PhotoURL, _ = claims[ClaimPicture].(string)
	p.IsAdmin, _ = claims[ClaimAdmin].(bool)
	return p, true
}

// RequirePrincipal rejects requests without a valid bearer token.
func RequirePrincipal(next http.Handler) http.Handler {
	return jwtauth.Authenticator(principalCheck(next, false))
}

// RequireAdmin rejects requests whose principal lacks the admin flag.
func RequireAdmin(next http.Handler) http.Handler {
	return jwtauth.Authenticator(principalCheck(next, true))
}

func principalCheck(next http.Handler, admin bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFromContext(r.Context())
		if !ok {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, ErrorResponse{Error: "missing subject claim"})
			return
		}
		if admin && !p.IsAdmin {
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, ErrorResponse{Error: "admin required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
