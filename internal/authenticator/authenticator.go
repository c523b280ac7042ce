// Package authenticator declares the authentication contract the HTTP
// layer depends on, decoupling it from the concrete session implementation.
package authenticator

import (
	"context"
	"net/http"
	"time"

	"github.com/avoronkov42/backoffice/internal/models"
)

type Authenticator interface {
	Login(ctx context.Context, login, password string) (*models.Session, string, error)
	Logout(ctx context.Context, token string) error
	RequireUser(h http.Handler) http.Handler
	SetSessionCookie(response http.ResponseWriter, token string, expiresAt time.Time)
	ClearSessionCookie(response http.ResponseWriter)
	TokenFromRequest(request *http.Request) string
}
