package test

import (
	"math/rand"
	"sync"
	"time"
)

const asciiLetters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var (
	rngMu sync.Mutex
	rng   = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// RandomPassword returns a pseudo-random alphanumeric string within the
// provided bounds.
func RandomPassword(minLen, maxLen int) string {
	if minLen <= 0 {
		minLen = 1
	}
	if maxLen < minLen {
		maxLen = minLen
	}
	length := minLen
	if maxLen > minLen {
		length += randomIntn(maxLen - minLen + 1)
	}
	buf := make([]byte, length)
	for i := range buf {
		buf[i] = asciiLetters[randomIntn(len(asciiLetters))]
	}
	return string(buf)
}

// RandomEmail returns an address with a mixed case local part and an upper
// case domain, so lookups must normalise it.
func RandomEmail() string {
	return RandomPassword(4, 12) + "@EXAMPLE.com"
}

func randomIntn(n int) int {
	rngMu.Lock()
	defer rngMu.Unlock()
	return rng.Intn(n)
}
