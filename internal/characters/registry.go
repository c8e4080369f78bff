package characters

import (
	"fmt"
	"strconv"
)

// Character is a persona the bot can speak as
type Character struct {
	ID                string
	SystemInstruction string
	Color             int
	AvatarURL         string
}

// Registry is an ordered, immutable set of characters
type Registry struct {
	keys []string
	byID map[string]Character
}

// NewRegistry builds a registry keeping the definition order of chars.
// Duplicate IDs keep their first position and the last definition.
func NewRegistry(chars ...Character) *Registry {
	r := &Registry{byID: make(map[string]Character, len(chars))}
	for _, c := range chars {
		if _, ok := r.byID[c.ID]; !ok {
			r.keys = append(r.keys, c.ID)
		}
		r.byID[c.ID] = c
	}
	return r
}

// Keys returns character IDs in definition order
func (r *Registry) Keys() []string {
	keys := make([]string, len(r.keys))
	copy(keys, r.keys)
	return keys
}

// Len returns the number of characters
func (r *Registry) Len() int {
	return len(r.keys)
}

// Get looks up a character by its canonical ID
func (r *Registry) Get(id string) (Character, bool) {
	c, ok := r.byID[id]
	return c, ok
}

// Resolve turns a user supplied token into a canonical character ID.
// A token made only of ASCII digits is an index into Keys; anything else must be an exact ID.
func (r *Registry) Resolve(token string) (string, error) {
	if isDigits(token) {
		index, err := strconv.Atoi(token)
		if err != nil || index >= len(r.keys) {
			return "", &IndexError{Index: token, Max: len(r.keys) - 1, Valid: r.Keys()}
		}
		return r.keys[index], nil
	}

	if _, ok := r.byID[token]; !ok {
		return "", &UnknownCharacterError{Token: token, Valid: r.Keys()}
	}
	return token, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// IndexError is returned when a numeric token is outside the registry
type IndexError struct {
	Index string
	Max   int
	Valid []string
}

// Error implements the error interface
func (e *IndexError) Error() string {
	return fmt.Sprintf("character index %s out of range: max %d %v", e.Index, e.Max, e.Valid)
}

// UnknownCharacterError is returned when a token names no character
type UnknownCharacterError struct {
	Token string
	Valid []string
}

// Error implements the error interface
func (e *UnknownCharacterError) Error() string {
	return fmt.Sprintf("unknown character %q: must be one of %v", e.Token, e.Valid)
}
