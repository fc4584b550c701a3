package app

import (
	"crypto/rand"
	"fmt"
)

const (
	// DefaultRoomCodeLength is the default length for room codes
	DefaultRoomCodeLength = 8

	maxCodeAttempts = 10
)

// RoomCodeChars are characters used for room codes (no ambiguous chars)
const RoomCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// CodeGenerator returns a new candidate room code
type CodeGenerator func() (string, error)

// NewRoomCodeGenerator returns a generator of uppercase display-friendly codes
func NewRoomCodeGenerator(length int) CodeGenerator {
	if length <= 0 {
		length = DefaultRoomCodeLength
	}
	return func() (string, error) {
		b := make([]byte, length)
		if _, err := rand.Read(b); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}

		code := make([]byte, length)
		for i := range code {
			code[i] = RoomCodeChars[int(b[i])%len(RoomCodeChars)]
		}
		return string(code), nil
	}
}
