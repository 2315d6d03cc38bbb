package server

import (
	"crypto/subtle"
	"net/http"

	"github.com/goliatone/go-assetform/pkg/render"
)

func (s *Server) csrfEnabled() bool {
	return s.csrfField != "" && s.csrfCookie != ""
}

// csrfToken returns the request's token, issuing a cookie when none exists.
func (s *Server) csrfToken(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(s.csrfCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	token := s.newToken()
	http.SetCookie(w, &http.Cookie{
		Name:     s.csrfCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})
	return token
}

// csrfValid compares the posted field against the cookie.
func (s *Server) csrfValid(r *http.Request) bool {
	cookie, err := r.Cookie(s.csrfCookie)
	if err != nil || cookie.Value == "" {
		return false
	}
	posted := r.PostFormValue(s.csrfField)
	return subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(posted)) == 1
}

func (s *Server) hiddenFields(w http.ResponseWriter, r *http.Request) map[string]string {
	if !s.csrfEnabled() {
		return nil
	}
	return render.MergeHiddenFields(nil, render.CSRFToken(s.csrfField, s.csrfToken(w, r)))
}
