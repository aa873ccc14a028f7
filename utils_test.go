package gic

import (
	"encoding/hex"
	"errors"
	"io"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestI2OSP(t *testing.T) {
	assert.Equal(t, []byte{0x01}, I2OSP(1, 1))
	assert.Equal(t, []byte{0x01, 0x02}, I2OSP(0x0102, 2))
	assert.Equal(t, []byte{0x00, 0x01, 0x02}, I2OSP(0x0102, 3))
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 0x11}, I2OSP(17, 8))
	assert.Nil(t, I2OSP(5, 0))
}

func TestOS2IP(t *testing.T) {
	assert.Equal(t, int64(0), OS2IP(nil).Int64())
	assert.Equal(t, int64(0x0102), OS2IP([]byte{0x00, 0x01, 0x02}).Int64())
}

func TestFixedBytes(t *testing.T) {
	assert.Equal(t, []byte{0, 0, 0xff}, FixedBytes(big.NewInt(255), 3))
	assert.Nil(t, FixedBytes(big.NewInt(256), 1), "value does not fit")
	assert.Nil(t, FixedBytes(big.NewInt(-1), 4), "negative value")
}

func TestExpandMessageXOF(t *testing.T) {
	dst := []byte("QUUX-V01-CS02-with-expander-SHAKE256")
	a := ExpandMessageXOF([]byte("abc"), dst, 32)
	b := ExpandMessageXOF([]byte("abc"), dst, 32)
	require.Len(t, a, 32)
	assert.Equal(t, a, b)

	// RFC 9380, Appendix K.6, msg = "abc", len_in_bytes = 0x20.
	want, err := hex.DecodeString("b39e493867e2767216792abce1f2676c197c0692aed061560ead251821808e07")
	require.NoError(t, err)
	assert.Equal(t, want, a)

	assert.NotEqual(t, a, ExpandMessageXOF([]byte("abc"), append(dst, '!'), 32))
	assert.NotEqual(t, a, ExpandMessageXOF([]byte("abd"), dst, 32))
}

func TestExpandMessageXOFDoesNotAliasDST(t *testing.T) {
	backing := make([]byte, 3, 16)
	copy(backing, "dst")
	ExpandMessageXOF([]byte("m"), backing, 16)
	assert.Equal(t, byte(0), backing[:4][3], "dst backing array must not be written")
}

func TestConcat(t *testing.T) {
	assert.Equal(t, []byte{1, 2, 3}, concat([]byte{1}, nil, []byte{2, 3}))
	assert.Empty(t, concat())
}

func TestDeterministicReader(t *testing.T) {
	read := func(seed string, n int) []byte {
		buf := make([]byte, n)
		_, err := io.ReadFull(NewDeterministicReader([]byte(seed)), buf)
		require.NoError(t, err)
		return buf
	}
	assert.Equal(t, read("seed", 64), read("seed", 64))
	assert.NotEqual(t, read("seed", 64), read("seed2", 64))
	assert.Equal(t, read("seed", 32), read("seed", 64)[:32], "stream must be a prefix-stable sequence")
}

func TestReadRandom(t *testing.T) {
	b, err := ReadRandom(nil, 16)
	require.NoError(t, err)
	assert.Len(t, b, 16)

	_, err = ReadRandom(io.LimitReader(NewDeterministicReader(nil), 4), 16)
	assert.Error(t, err)
}

func TestErrorf(t *testing.T) {
	cause := errors.New("bad point")
	err := Errorf(ErrMalformedEncoding, "cannot decode: %w", Errorf(ErrInvalidParameter, "%v", cause))
	assert.ErrorIs(t, err, ErrMalformedEncoding)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	assert.NotErrorIs(t, err, ErrDomainMismatch)
	assert.Contains(t, err.Error(), "INVALID: malformed encoding: cannot decode")
}

func TestTag(t *testing.T) {
	assert.True(t, TagGQ.Known())
	assert.True(t, TagBLS.Known())
	assert.False(t, Tag(0).Known())
	assert.Equal(t, "schnorr", TagSchnorr.String())
	assert.Equal(t, "tag(0x7f)", Tag(0x7f).String())
}

func TestEncodeParametersRejectsInvalidInput(t *testing.T) {
	params := &SystemParameters{
		Backend:       TagGQ,
		Level:         Level128,
		Group:         "RSA-512",
		Modulus:       big.NewInt(-7),
		ChallengeBits: 128,
		Hash:          "XOF:SHAKE-256",
	}
	_, err := EncodeParameters(params)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	params.Modulus = big.NewInt(77)
	params.Level = 0
	_, err = EncodeParameters(params)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, err = EncodeParameters(nil)
	assert.ErrorIs(t, err, ErrDomainMismatch)
}

func TestDecodeParametersRejectsNonMinimalIntegers(t *testing.T) {
	params := &SystemParameters{
		Backend:       TagGQ,
		Level:         Level128,
		Group:         "g",
		Modulus:       big.NewInt(77),
		ChallengeBits: 128,
		Hash:          "h",
	}
	octets, err := EncodeParameters(params)
	require.NoError(t, err)

	decoded, err := DecodeParameters(octets)
	require.NoError(t, err)
	assert.True(t, decoded.Equal(params))
	assert.Nil(t, decoded.Order)
	assert.Nil(t, decoded.Generator)

	// tag, kind, level, bits, lp(group) = 1+1+2+2+3; then lp(modulus).
	i := 9
	require.Equal(t, []byte{0, 1, 77}, octets[i:i+3])
	padded := append(append(append([]byte{}, octets[:i]...), 0, 2, 0, 77), octets[i+3:]...)
	_, err = DecodeParameters(padded)
	assert.ErrorIs(t, err, ErrMalformedEncoding)
}
