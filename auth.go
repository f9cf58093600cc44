package main

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidToken = errors.New("invalid token")

// Auth issues resume tokens for logged-in names and guards the debug console
type Auth struct {
	jwtSecret   []byte
	tokenTTL    time.Duration
	consoleHash []byte
	now         func() time.Time
}

// NewAuth creates an Auth from config; an empty secret is replaced by a
// random one, so tokens do not survive a restart
func NewAuth(cfg AuthConfig) (*Auth, error) {
	secret := []byte(cfg.JWTSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("generate jwt secret: %w", err)
		}
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Auth{
		jwtSecret:   secret,
		tokenTTL:    ttl,
		consoleHash: []byte(cfg.ConsolePasswordHash),
		now:         time.Now,
	}, nil
}

// IssueToken signs a token carrying name
func (a *Auth) IssueToken(name string) (string, error) {
	now := a.now()
	claims := jwt.MapClaims{
		"sub": name,
		"iat": now.Unix(),
		"exp": now.Add(a.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.jwtSecret)
}

// ValidateToken returns the name a token was issued for
func (a *Auth) ValidateToken(tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.jwtSecret, nil
	}, jwt.WithTimeFunc(a.now))
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	name, err := token.Claims.GetSubject()
	if err != nil || name == "" {
		return "", ErrInvalidToken
	}
	return name, nil
}

// ConsoleEnabled reports whether a console password is configured
func (a *Auth) ConsoleEnabled() bool {
	return len(a.consoleHash) > 0
}

// CheckConsole verifies the console password
func (a *Auth) CheckConsole(password string) bool {
	if !a.ConsoleEnabled() {
		return false
	}
	return bcrypt.CompareHashAndPassword(a.consoleHash, []byte(password)) == nil
}

// HashConsolePassword produces a value for auth.console_password_hash
func HashConsolePassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
