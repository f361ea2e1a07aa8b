package http

import (
	"net/http"
	"time"

	"github.com/campusconnect/campusconnect/internal/auth/domain"
	"github.com/campusconnect/campusconnect/pkg/httpx"
)

// Cookie names for the token pair and their expiry companions.
const (
	cookieAccessToken   = httpx.CookieAccessToken
	cookieAccessExpiry  = "access_token_expires_at"
	cookieRefreshToken  = "refresh_token"
	cookieRefreshExpiry = "refresh_token_expires_at"
)

func authCookie(name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(time.Until(expires).Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	}
}

func expiredCookie(name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	}
}

// setAuthCookies sets all four token cookies on a successful login, email
// verification, or refresh.
func setAuthCookies(w http.ResponseWriter, pair *domain.TokenPair) {
	http.SetCookie(w, authCookie(cookieAccessToken, pair.AccessToken, pair.AccessExpiresAt))
	http.SetCookie(w, authCookie(cookieAccessExpiry,
		pair.AccessExpiresAt.UTC().Format(time.RFC3339), pair.AccessExpiresAt))
	http.SetCookie(w, authCookie(cookieRefreshToken, pair.RefreshToken, pair.RefreshExpiresAt))
	http.SetCookie(w, authCookie(cookieRefreshExpiry,
		pair.RefreshExpiresAt.UTC().Format(time.RFC3339), pair.RefreshExpiresAt))
}

// clearRefreshCookies drops the refresh cookies. The rotation handler calls
// this before the store lookup so a crash mid-rotation cannot leave a spent
// token sitting in the client.
func clearRefreshCookies(w http.ResponseWriter) {
	http.SetCookie(w, expiredCookie(cookieRefreshToken))
	http.SetCookie(w, expiredCookie(cookieRefreshExpiry))
}

// clearAuthCookies drops all four cookies on logout.
func clearAuthCookies(w http.ResponseWriter) {
	http.SetCookie(w, expiredCookie(cookieAccessToken))
	http.SetCookie(w, expiredCookie(cookieAccessExpiry))
	clearRefreshCookies(w)
}
