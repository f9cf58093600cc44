package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckName(t *testing.T) {
	l := NewLobby(2, 16)

	tests := []struct {
		name string
		ok   bool
	}{
		{"ab", true},
		{"Sixteen_Letters_", true},
		{"Seventeen_Letters", false},
		{"a", false},
		{"", false},
		{"  ", false},
		{"Ahoy 世界", true},
		{"船長", true},
	}
	for _, tt := range tests {
		err := l.CheckName(tt.name)
		if tt.ok {
			assert.NoError(t, err, "%q", tt.name)
		} else {
			assert.ErrorIs(t, err, ErrNameLength, "%q", tt.name)
		}
	}
}

func TestLobbyQueueOrder(t *testing.T) {
	l := NewLobby(2, 16)
	l.Add("c1", "First")
	l.Add("c2", "Second")
	l.Add("c3", "Third")

	assert.Equal(t, []string{"First", "Second", "Third"}, l.Names())
	assert.True(t, l.Has("Second"))

	name, ok := l.Remove("c2")
	assert.True(t, ok)
	assert.Equal(t, "Second", name)
	assert.False(t, l.Has("Second"))
	assert.Equal(t, []string{"First", "Third"}, l.Names())

	_, ok = l.Remove("c2")
	assert.False(t, ok)

	name, ok = l.NameOf("c3")
	assert.True(t, ok)
	assert.Equal(t, "Third", name)
	_, ok = l.NameOf("missing")
	assert.False(t, ok)
}

func TestLobbyEmptyNames(t *testing.T) {
	l := NewLobby(2, 16)
	assert.NotNil(t, l.Names())
	assert.Empty(t, l.Names())
}
