package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const SessionCookieName = "admin_session"

func signSession(data, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(data))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// CreateSessionToken returns "login.exp.sig" valid for ttl from now.
func CreateSessionToken(login, secret string, ttl time.Duration, now time.Time) string {
	exp := now.Add(ttl).Unix()
	data := fmt.Sprintf("%s.%d", login, exp)
	return data + "." + signSession(data, secret)
}

// VerifySessionToken returns the login of a well-formed, correctly signed, unexpired token.
func VerifySessionToken(token, secret string, now time.Time) (string, bool) {
	if token == "" || secret == "" {
		return "", false
	}
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", false
	}
	login, expRaw, signature := parts[0], parts[1], parts[2]
	exp, err := strconv.ParseInt(expRaw, 10, 64)
	if login == "" || err != nil || exp == 0 || signature == "" {
		return "", false
	}

	expected := signSession(fmt.Sprintf("%s.%d", login, exp), secret)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return "", false
	}
	if exp < now.Unix() {
		return "", false
	}
	return login, true
}

func isHTTPS(r *http.Request) bool {
	proto := strings.Split(r.Header.Get("X-Forwarded-Proto"), ",")[0]
	return strings.EqualFold(strings.TrimSpace(proto), "https")
}

// SetSessionCookie writes the admin session cookie.
func SetSessionCookie(w http.ResponseWriter, r *http.Request, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   isHTTPS(r),
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the admin session cookie.
func ClearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   isHTTPS(r),
		SameSite: http.SameSiteLaxMode,
	})
}
