// Package auth implements session-based authentication: credential checks
// against stored argon2id digests, server-side session records, and an HTTP
// middleware gating protected handlers. The client-facing token is a signed
// JWT carrying only the session ID; everything else stays in storage.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/avoronkov42/backoffice/internal/logger"
	"github.com/avoronkov42/backoffice/internal/models"
	"github.com/avoronkov42/backoffice/internal/passhash"
)

type userKeeper interface {
	GetUserByMail(ctx context.Context, mail string) (*models.User, error)
}

type sessionKeeper interface {
	CreateSession(ctx context.Context, session *models.Session) error
	GetSession(ctx context.Context, sessionID string) (*models.Session, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

type storage interface {
	userKeeper
	sessionKeeper
}

// Auth validates credentials, manages session records and issues
// the signed session tokens presented by clients.
type Auth struct {
	db storage

	// authCookieName is the name of the cookie carrying the session token.
	authCookieName string

	// tokenSigningSecretKey is the HMAC key used to sign session tokens.
	tokenSigningSecretKey []byte

	// sessionTTL is the lifetime of a newly created session.
	sessionTTL time.Duration
}

// Claims is the JWT payload of a session token.
type Claims struct {
	jwt.RegisteredClaims
	SessionID string `json:"session_id"`
}

// ContextKey is a custom type for storing values in context to avoid collisions.
type ContextKey string

// UserIDKey is the context key holding the authenticated user's ID.
const UserIDKey ContextKey = "userID"

// SessionIDKey is the context key holding the ID of the current session.
const SessionIDKey ContextKey = "sessionID"

// decoyDigest is verified against when the mail is unknown, so that a failed
// login burns the same argon2 work whether or not the user exists.
const decoyDigest = "$argon2id$v=19$m=65536,t=3,p=4" +
	"$c29tZXNhbHRzb21lc2FsdA$eHh4eHh4eHh4eHh4eHh4eHh4eHh4eHh4eHh4eHh4eHg"

// New creates an Auth bound to the given storage.
func New(
	db storage,
	authCookieName string,
	tokenSigningSecretKey []byte,
	sessionTTL time.Duration,
) *Auth {
	return &Auth{
		db:                    db,
		authCookieName:        authCookieName,
		tokenSigningSecretKey: tokenSigningSecretKey,
		sessionTTL:            sessionTTL,
	}
}

// Login checks the credentials and, on success, creates a session record and
// returns it together with its signed token. Any credential failure is
// reported as models.ErrInvalidCredentials without revealing whether the
// mail exists.
func (a *Auth) Login(ctx context.Context, login, password string) (*models.Session, string, error) {
	usr, err := a.db.GetUserByMail(ctx, login)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			_, _ = passhash.Verify(password, decoyDigest)
			return nil, "", models.ErrInvalidCredentials
		}
		return nil, "", err
	}

	matches, err := passhash.Verify(password, usr.Password)
	if err != nil {
		return nil, "", fmt.Errorf("error verifying the stored digest: %w", err)
	}
	if !matches {
		return nil, "", models.ErrInvalidCredentials
	}

	now := time.Now().UTC()
	session := &models.Session{
		ID:        uuid.NewString(),
		UserID:    usr.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(a.sessionTTL),
	}

	if err := a.db.CreateSession(ctx, session); err != nil {
		return nil, "", err
	}

	token, err := a.buildJWTString(&Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
		},
		SessionID: session.ID,
	})
	if err != nil {
		return nil, "", err
	}

	return session, token, nil
}

// Logout destroys the session referenced by the token. It is idempotent:
// an unknown, malformed or already-removed token is not an error.
func (a *Auth) Logout(ctx context.Context, token string) error {
	sessionID, err := a.sessionIDFromToken(token)
	if err != nil || sessionID == "" {
		return nil
	}

	return a.db.DeleteSession(ctx, sessionID)
}

// SessionFromRequest resolves the request's token to a live session record.
// Expired and unknown sessions are reported as models.ErrSessionNotFound.
func (a *Auth) SessionFromRequest(request *http.Request) (*models.Session, error) {
	tokenString := a.tokenFromAuthorizationHeaderOrCookie(request)
	if tokenString == "" {
		return nil, models.ErrSessionNotFound
	}

	sessionID, err := a.sessionIDFromToken(tokenString)
	if err != nil || sessionID == "" {
		return nil, models.ErrSessionNotFound
	}

	session, err := a.db.GetSession(request.Context(), sessionID)
	if err != nil {
		return nil, err
	}

	if session.IsExpired(time.Now().UTC()) {
		return nil, models.ErrSessionNotFound
	}

	return session, nil
}

// RequireUser is an HTTP middleware protecting authenticated-only handlers.
// It resolves the session token and stores the user and session IDs in the
// request context, or replies 401 when there is no live session.
func (a *Auth) RequireUser(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		session, err := a.SessionFromRequest(request)
		if err != nil {
			if errors.Is(err, models.ErrSessionNotFound) {
				http.Error(response, "authentication required", http.StatusUnauthorized)
				return
			}
			logger.Log.Debugln("Error calling the `a.SessionFromRequest()`: ", zap.Error(err))
			response.WriteHeader(http.StatusInternalServerError)
			return
		}

		ctx := context.WithValue(request.Context(), UserIDKey, session.UserID)
		ctx = context.WithValue(ctx, SessionIDKey, session.ID)
		requestWithCtx := request.WithContext(ctx)

		h.ServeHTTP(response, requestWithCtx)
	}

	return http.HandlerFunc(middleware)
}

// SetSessionCookie attaches the session token to the response.
func (a *Auth) SetSessionCookie(response http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(
		response,
		&http.Cookie{
			Name:     a.authCookieName,
			Value:    token,
			Path:     "/",
			Expires:  expiresAt,
			HttpOnly: true,
		},
	)
}

// ClearSessionCookie removes the session cookie from the client.
func (a *Auth) ClearSessionCookie(response http.ResponseWriter) {
	http.SetCookie(
		response,
		&http.Cookie{
			Name:     a.authCookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
		},
	)
}

// TokenFromRequest returns the raw session token presented by the request,
// or an empty string when there is none.
func (a *Auth) TokenFromRequest(request *http.Request) string {
	return a.tokenFromAuthorizationHeaderOrCookie(request)
}

func (a *Auth) tokenFromAuthorizationHeaderOrCookie(request *http.Request) string {
	tokenString := request.Header.Get("Authorization")
	if tokenString != "" {
		return tokenString
	}
	cookie, err := request.Cookie(a.authCookieName)
	if err == nil {
		tokenString = cookie.Value
	}

	return tokenString
}

func (a *Auth) sessionIDFromToken(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return a.tokenSigningSecretKey, nil
		},
	)
	if err != nil || !token.Valid {
		return "", nil
	}

	return claims.SessionID, nil
}

func (a *Auth) buildJWTString(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, *claims)

	tokenString, err := token.SignedString(a.tokenSigningSecretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}
