// Package user owns user registration, the first step of the event chain.
package user

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidUser = errors.New("invalid user")
	ErrEmailTaken  = errors.New("email already registered")
	ErrNotFound    = errors.New("user not found")
)

type User struct {
	ID        string
	Email     string
	Name      string
	CreatedAt time.Time
}

type Repository interface {
	Insert(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
}
