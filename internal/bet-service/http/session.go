package httpapi

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/radieske/pub-bets/internal/betslip"
)

const (
	headerAccessCode = "X-Access-Code"
	headerAdminPIN   = "X-Admin-Pin"
)

type ctxKey struct{}

// session resolve as permissões a partir dos headers. ACCESS_CODE vazio deixa
// o evento aberto; ADMIN_PIN vazio desliga o admin
func (s *Server) session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := betslip.Session{
			Authorized: s.opts.AccessCode == "" || secretEq(r.Header.Get(headerAccessCode), s.opts.AccessCode),
			Admin:      s.opts.AdminPIN != "" && secretEq(r.Header.Get(headerAdminPIN), s.opts.AdminPIN),
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, sess)))
	})
}

func sessionFrom(ctx context.Context) betslip.Session {
	sess, _ := ctx.Value(ctxKey{}).(betslip.Session)
	return sess
}

func secretEq(got, want string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

func requireAuthorized(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !sessionFrom(r.Context()).CanBet() {
			writeMsg(w, http.StatusUnauthorized, betslip.ErrUnauthorized.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !sessionFrom(r.Context()).Admin {
			writeMsg(w, http.StatusForbidden, "admin pin required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
