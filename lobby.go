package main

import (
	"errors"
	"strings"
	"unicode/utf8"
)

var (
	ErrNameLength      = errors.New("name length out of range")
	ErrNameTaken       = errors.New("name already taken")
	ErrAlreadyLoggedIn = errors.New("connection already logged in")
	ErrNotLoggedIn     = errors.New("connection not logged in")
	ErrArenaFull       = errors.New("arena is full")
	ErrNotInArena      = errors.New("connection has no ship")
)

type queued struct {
	connID string
	name   string
}

// Lobby is the spectator queue: logged-in names waiting for a seat.
// It has no lock of its own; the owning Game serializes access.
type Lobby struct {
	queue    []queued
	minChars int
	maxChars int
}

// NewLobby creates an empty queue enforcing the given name bounds
func NewLobby(minChars, maxChars int) *Lobby {
	return &Lobby{minChars: minChars, maxChars: maxChars}
}

// CheckName validates the length of a display name
func (l *Lobby) CheckName(name string) error {
	n := utf8.RuneCountInString(name)
	if strings.TrimSpace(name) == "" || n < l.minChars || n > l.maxChars {
		return ErrNameLength
	}
	return nil
}

// Add queues a connection under name
func (l *Lobby) Add(connID, name string) {
	l.queue = append(l.queue, queued{connID: connID, name: name})
}

// Remove drops a connection from the queue, returning its name
func (l *Lobby) Remove(connID string) (string, bool) {
	for i, q := range l.queue {
		if q.connID == connID {
			l.queue = append(l.queue[:i], l.queue[i+1:]...)
			return q.name, true
		}
	}
	return "", false
}

// NameOf returns the queued name of a connection
func (l *Lobby) NameOf(connID string) (string, bool) {
	for _, q := range l.queue {
		if q.connID == connID {
			return q.name, true
		}
	}
	return "", false
}

// Has reports whether name is queued
func (l *Lobby) Has(name string) bool {
	for _, q := range l.queue {
		if q.name == name {
			return true
		}
	}
	return false
}

// Names lists queued names in arrival order
func (l *Lobby) Names() []string {
	names := make([]string, len(l.queue))
	for i, q := range l.queue {
		names[i] = q.name
	}
	return names
}
