package gatekeeper

import "net/http"

// CopyRequestCookies re-attaches the request's cookies onto the response.
//
// A redirect response does not inherit the inbound cookies, so a redirect
// issued for an already-authenticated user would silently log them out
// unless every terminal branch copies the session cookies explicitly. This
// helper exists so no branch can forget.
func CopyRequestCookies(w http.ResponseWriter, r *http.Request, names []string) {
	for _, name := range names {
		cookie, err := r.Cookie(name)
		if err != nil {
			continue
		}
		http.SetCookie(w, &http.Cookie{
			Name:     cookie.Name,
			Value:    cookie.Value,
			Path:     "/",
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// ClearSessionCookies expires the named cookies on the response, used when
// a presented session token fails verification.
func ClearSessionCookies(w http.ResponseWriter, names []string) {
	for _, name := range names {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
