package model

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"time"
)

// IDLength is the length of every identifier in hex characters.
const IDLength = 24

// NewID returns a 24 character hex identifier: 6 bytes of unix milliseconds
// followed by 6 random bytes, so ids sort roughly by creation time.
func NewID() string {
	var b [12]byte
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(time.Now().UnixMilli()))
	copy(b[:6], ts[2:])
	if _, err := rand.Read(b[6:]); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b[:])
}

// IsID reports whether s has the shape of an identifier.
func IsID(s string) bool {
	if len(s) != IDLength {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
