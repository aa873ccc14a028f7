package gic

import (
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/sha3"
)

const deterministicReaderDST = CiphersuiteID + "DETERMINISTIC_READER_"

// NewDeterministicReader returns an endless SHAKE-256 stream keyed by seed.
// Two readers built from the same seed yield the same octets, which makes
// Setup and key generation reproducible in tests and benchmark runs.
func NewDeterministicReader(seed []byte) io.Reader {
	shake := sha3.NewShake256()
	shake.Write([]byte(deterministicReaderDST))
	shake.Write(I2OSP(len(seed), 8))
	shake.Write(seed)
	return shake
}

// ReadRandom reads exactly n octets from r, defaulting to crypto/rand.
func ReadRandom(r io.Reader, n int) ([]byte, error) {
	if r == nil {
		r = rand.Reader
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("failed to read random octets: %w", err)
	}
	return buf, nil
}
