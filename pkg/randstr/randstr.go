package randstr

import (
	"crypto/rand"
	"math/big"
)

type RandStr struct {
	letterBytes []byte
}

func New(letterBytes []byte) *RandStr {
	return &RandStr{letterBytes: letterBytes}
}

// GenerateRandomString returns a random string of the given length built from
// the configured alphabet.
func (r *RandStr) GenerateRandomString(length int) string {
	max := big.NewInt(int64(len(r.letterBytes)))

	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand is unavailable, no meaningful recovery
			panic(err)
		}
		b[i] = r.letterBytes[n.Int64()]
	}

	return string(b)
}
