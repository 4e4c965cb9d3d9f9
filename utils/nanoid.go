// Package utils generates the short ids used for board tasks and
// notifications.
package utils

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Alphanumeric only, so ids are safe in URL paths and websocket topics.
const (
	alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	idLength = 16
)

// NanoID returns a random id of the default length.
func NanoID() string {
	return NanoString(idLength)
}

// NanoString returns a random id of n characters.
func NanoString(n int) string {
	return gonanoid.MustGenerate(alphabet, n)
}
