package http

import (
	"crypto/rand"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const sessionCookie = "steptrack_session"

// sessionManager issues and verifies the signed admin session cookie.
type sessionManager struct {
	password string
	secret   []byte
	ttl      time.Duration
}

func newSessionManager(password, secret string, ttl time.Duration) *sessionManager {
	key := []byte(secret)
	if len(key) == 0 {
		// Without a configured secret, sessions do not survive restarts.
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			slog.Warn("Failed to generate session secret", "error", err)
		} else {
			slog.Warn("SESSION_SECRET not set, using an ephemeral key")
		}
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &sessionManager{password: password, secret: key, ttl: ttl}
}

func (sm *sessionManager) checkPassword(candidate string) bool {
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(sm.password)) == 1
}

func (sm *sessionManager) issueToken(now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub": "admin",
		"iat": now.Unix(),
		"exp": now.Add(sm.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(sm.secret)
}

func (sm *sessionManager) verify(tokenString string) bool {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return sm.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return false
	}
	return token.Valid
}

// isAdmin reports whether the request carries a valid session cookie.
func (s *Server) isAdmin(r *http.Request) bool {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return false
	}
	return s.sessions.verify(cookie.Value)
}

// requireAdmin gates a handler behind the session cookie.
func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.isAdmin(r) {
			if isHTMXRequest(r) {
				NewHTMXResponse().
					Status(http.StatusUnauthorized).
					TriggerErrorNotification("Admin login required").
					Write(w)
				return
			}
			http.Error(w, "Admin login required", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Error parsing form", http.StatusBadRequest)
		return
	}

	password := r.FormValue("password")
	if !s.sessions.checkPassword(password) {
		slog.WarnContext(r.Context(), "Admin login rejected")
		NewHTMXResponse().
			Status(http.StatusUnauthorized).
			TriggerErrorNotification("Incorrect password").
			Write(w)
		return
	}

	token, err := s.sessions.issueToken(time.Now())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to issue session token", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.sessions.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	NewHTMXResponse().
		TriggerAdminChanged().
		TriggerSuccessNotification("Admin mode enabled").
		Write(w)
}

func (s *Server) handleAdminLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	NewHTMXResponse().
		TriggerAdminChanged().
		TriggerSuccessNotification("Admin mode disabled").
		Write(w)
}
