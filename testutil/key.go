package testutil

import "math/rand"

// RandomKey generates a random 10-character string key, e.g. for use as an
// isolated key namespace in tests that share a redis server.
func RandomKey() string {
	const letters = "abcdefghijklmnopqrstuvwxyz0123456789"
	key := make([]byte, 10)
	for i := range key {
		key[i] = letters[rand.Intn(len(letters))]
	}
	return string(key)
}
