// Package ident generates and validates the identifiers used in
// handshakes: short game ids that appear in URLs, long player ids and
// passes that stay invisible to users, and throwaway display names.
package ident

import (
	"fmt"
	"math/rand"
	"regexp"
)

// Short-code alphabet omissions are intentional: 0 & o, 1 & l, z & 2
// and s & 5 are easy to misread for each other.
const shortChars = "abcdefghijkmnpqrtuvwxy346789"

const longChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

const (
	gameIDLen    = 4
	longIDLen    = 8
	minNameLen   = 2
	minGameLen   = 4
	minPlayerLen = 8
	minPassLen   = 8
	maxLen       = 16
)

var (
	idPattern   = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	namePattern = regexp.MustCompile(`^[a-zA-Z0-9-_ ]+$`)
)

// RandomGameID returns a 4-char lowercase code, easy to read and
// remember.
func RandomGameID(rng *rand.Rand) string {
	return randomString(rng, shortChars, gameIDLen)
}

// RandomPlayerID returns an 8-char mixed-case code.
func RandomPlayerID(rng *rand.Rand) string {
	return randomString(rng, longChars, longIDLen)
}

// RandomPass returns an 8-char mixed-case pass.
func RandomPass(rng *rand.Rand) string {
	return randomString(rng, longChars, longIDLen)
}

// RandomPlayerName builds adjective + animal + 2-digit number.
func RandomPlayerName(rng *rand.Rand) string {
	return fmt.Sprintf("%s%s%d",
		adjectives[rng.Intn(len(adjectives))],
		animals[rng.Intn(len(animals))],
		11+rng.Intn(89))
}

func randomString(rng *rand.Rand, charset string, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = charset[rng.Intn(len(charset))]
	}
	return string(b)
}

func ValidGameID(id string) bool {
	return len(id) >= minGameLen && len(id) <= maxLen && idPattern.MatchString(id)
}

func ValidPlayerID(id string) bool {
	return len(id) >= minPlayerLen && len(id) <= maxLen && idPattern.MatchString(id)
}

func ValidPass(pass string) bool {
	return len(pass) >= minPassLen && len(pass) <= maxLen && idPattern.MatchString(pass)
}

func ValidName(name string) bool {
	return len(name) >= minNameLen && len(name) <= maxLen && namePattern.MatchString(name)
}

var adjectives = []string{
	"Brave", "Calm", "Clever", "Daring", "Eager", "Fuzzy", "Gentle",
	"Happy", "Jolly", "Keen", "Lucky", "Mighty", "Nimble", "Quick",
	"Quiet", "Sleepy", "Sneaky", "Speedy", "Sunny", "Witty",
}

var animals = []string{
	"Badger", "Beaver", "Crane", "Dingo", "Ferret", "Gecko", "Heron",
	"Ibis", "Jackal", "Koala", "Lemur", "Marmot", "Newt", "Otter",
	"Panda", "Quail", "Raccoon", "Shrew", "Toucan", "Walrus",
}
