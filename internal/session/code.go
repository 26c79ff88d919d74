package session

import (
	"crypto/rand"
	"log"
	"math/big"
)

// Room codes are short enough to read out loud or type from another screen.
const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6
)

// newRoomCode creates a random room code (e.g. "A4X9L2").
// Each character is drawn independently and uniformly from the alphabet.
// Uniqueness is the Registry's job, not the generator's.
func newRoomCode() string {
	code := make([]byte, codeLength)
	for i := range code {
		code[i] = codeAlphabet[randomIndex(len(codeAlphabet))]
	}
	return string(code)
}

// randomIndex returns a cryptographically secure random index for a slice of given length.
func randomIndex(max int) int {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		log.Panic("Failed to generate random index:", err)
	}
	return int(n.Int64())
}
