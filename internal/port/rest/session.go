package rest

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/vaibhavvatsbhartiya/storefront/internal/cart"
)

const cartCookieName = "cart_session"

type cartSessions struct {
	sessions *cart.Sessions
	secure   bool
}

// store returns the caller's cart, issuing a new session cookie when the
// request has none or carries one that is not a uuid. The session cannot
// expire before release is called.
func (c cartSessions) store(w http.ResponseWriter, r *http.Request) (*cart.Store, func()) {
	if cookie, err := r.Cookie(cartCookieName); err == nil {
		if _, err := uuid.Parse(cookie.Value); err == nil {
			return c.sessions.Acquire(cookie.Value)
		}
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     cartCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return c.sessions.Acquire(id)
}
