package http

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"
	"time"
)

const sessionCookieName = "token"

// SessionCookies firma y lee la cookie de sesion con el formato s:<valor>.<firma>.
type SessionCookies struct {
	secret []byte
	secure bool
	maxAge time.Duration
}

func NewSessionCookies(secret string, secure bool, maxAge time.Duration) *SessionCookies {
	return &SessionCookies{secret: []byte(secret), secure: secure, maxAge: maxAge}
}

// Set escribe la cookie httpOnly y SameSite=Strict con el token firmado.
func (s *SessionCookies) Set(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    s.sign(token),
		Path:     "/",
		MaxAge:   int(s.maxAge.Seconds()),
		Secure:   s.secure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (s *SessionCookies) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   s.secure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// Token devuelve el valor de la cookie solo si la firma es valida.
func (s *SessionCookies) Token(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return "", false
	}
	return s.unsign(cookie.Value)
}

func (s *SessionCookies) sign(value string) string {
	return "s:" + value + "." + s.signature(value)
}

func (s *SessionCookies) unsign(raw string) (string, bool) {
	if len(s.secret) == 0 || !strings.HasPrefix(raw, "s:") {
		return "", false
	}
	raw = raw[len("s:"):]
	dot := strings.LastIndexByte(raw, '.')
	if dot <= 0 {
		return "", false
	}
	value, sig := raw[:dot], raw[dot+1:]
	if !hmac.Equal([]byte(sig), []byte(s.signature(value))) {
		return "", false
	}
	return value, true
}

func (s *SessionCookies) signature(value string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(value))
	return base64.RawStdEncoding.EncodeToString(mac.Sum(nil))
}
