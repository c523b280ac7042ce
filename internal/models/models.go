// Package models holds the domain records shared between the HTTP layer,
// the services and the storage backends, together with the sentinel errors
// the services report.
package models

import (
	"errors"
	"time"
)

// User is an administrator account. The Password field holds the encoded
// argon2id digest (algorithm, parameters, salt and hash in one string),
// never a plaintext password.
type User struct {
	ID       int64  `json:"id"`
	Mail     string `json:"mail" validate:"required,email"`
	Password string `json:"-"`
}

// Session is a server-side login record. The client only ever sees a signed
// token carrying the session ID; the record itself stays in storage.
type Session struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired reports whether the session has outlived its TTL at the given moment.
func (s *Session) IsExpired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// Category is a soft-deletable record. DeletedAt is the single source of
// truth for the deleted state: a nil DeletedAt means the category is active.
type Category struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Deleted   bool       `json:"deleted"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// IsDeleted reports whether the category has been soft-deleted.
func (c *Category) IsDeleted() bool {
	return c.DeletedAt != nil
}

// LoginRequest is the credentials payload accepted by POST /login,
// either as form fields or as a JSON body.
type LoginRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned to JSON clients on successful login.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CategoryRequest is the payload for POST and PUT /api/categories.
type CategoryRequest struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name" validate:"required"`
}

const (
	StorageTypeUnknown = iota
	StorageTypePostgresql
	StorageTypeFile
	StorageTypeMemory
)

// ErrNotFound is returned when the requested record does not exist in storage.
var ErrNotFound = errors.New("record not found")

// ErrCategoryDeleted is returned when a write targets a soft-deleted category.
var ErrCategoryDeleted = errors.New("the category is marked as deleted")

// ErrEmptyName is returned when a category is created or renamed with a blank name.
var ErrEmptyName = errors.New("the category name must not be empty")

// ErrInvalidCredentials is returned for any failed login attempt. It deliberately
// does not distinguish an unknown mail from a wrong password.
var ErrInvalidCredentials = errors.New("invalid login or password")

// ErrSessionNotFound is returned when a presented token does not resolve
// to a live session.
var ErrSessionNotFound = errors.New("session not found")
