package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultTTL       = 24 * 7 * time.Hour
	sessionKeyPrefix = "fittrack-session||"
	tokensSetKey     = "fittrack-sessions"
	tokenLength      = 35
)

var (
	ErrUserExists       = errors.New("user already exists")
	ErrUserNotFound     = errors.New("user not found")
	ErrWrongCredentials = errors.New("wrong credentials")
	ErrInvalidEmail     = errors.New("invalid email")
	ErrWeakPassword     = errors.New("password too short")
	ErrSessionNotFound  = errors.New("session not found")
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Session struct {
	Token     string
	UserID    uuid.UUID
	CreatedAt time.Time
}

// sessionValue is what is stored under the session key: "<created unix>:<user id>".
func sessionValue(createdAt time.Time, userID uuid.UUID) string {
	return fmt.Sprintf("%d:%s", createdAt.Unix(), userID)
}

func parseSessionValue(token, val string) (*Session, error) {
	createdAtStr, userIDStr, found := strings.Cut(val, ":")
	if !found {
		return nil, fmt.Errorf("malformed session value [%s]", val)
	}

	createdAtUnix, err := strconv.ParseInt(createdAtStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse session created at: %w", err)
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, fmt.Errorf("parse session user id: %w", err)
	}

	return &Session{
		Token:     token,
		UserID:    userID,
		CreatedAt: time.Unix(createdAtUnix, 0),
	}, nil
}
