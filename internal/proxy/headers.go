package proxy

import (
	"net/http"
	"strconv"

	"github.com/ittullos/authgate/internal/auth"
)

// InjectHeaders maps the claim set onto identity headers for the backend.
// Empty claims produce no header rather than an empty one.
func InjectHeaders(req *http.Request, claims auth.ClaimSet) {
	setIfPresent := func(header, value string) {
		if value != "" {
			req.Header.Set(header, value)
		}
	}

	setIfPresent("X-Auth-Subject", claims.Subject)
	setIfPresent("X-Auth-Provider", claims.Provider)
	setIfPresent("X-Auth-Email", claims.Email)
	setIfPresent("X-Auth-Name", claims.Name)
	setIfPresent("X-Auth-Nickname", claims.Nickname)
	setIfPresent("X-Auth-Picture", claims.PictureURL)
	setIfPresent("X-Auth-Given-Name", claims.GivenName)
	setIfPresent("X-Auth-Family-Name", claims.FamilyName)
	setIfPresent("X-Auth-Locale", claims.Locale)

	if claims.EmailVerified != nil {
		req.Header.Set("X-Auth-Email-Verified", strconv.FormatBool(*claims.EmailVerified))
	}
}
