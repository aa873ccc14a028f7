package gq

import (
	"crypto/rand"
	"math/big"
	"testing"

	gic "github.com/Iscaraca/gic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBits = 512

func newTestBackend(t *testing.T, seed string) (*Backend, *gic.SystemParameters) {
	t.Helper()
	b := New(WithModulusBits(testBits))
	params, err := b.Setup(gic.Level128, gic.NewDeterministicReader([]byte(seed)))
	require.NoError(t, err, "Setup should not fail")
	return b, params
}

func TestGenerateModulus(t *testing.T) {
	v := big.NewInt(DefaultExponent)
	n1, err := GenerateModulus(gic.NewDeterministicReader([]byte("modulus")), testBits, v)
	require.NoError(t, err)
	n2, err := GenerateModulus(gic.NewDeterministicReader([]byte("modulus")), testBits, v)
	require.NoError(t, err)

	assert.Equal(t, testBits, n1.BitLen())
	assert.Equal(t, 0, n1.Cmp(n2), "same seed must give the same modulus")
	assert.False(t, n1.ProbablyPrime(20))

	_, err = GenerateModulus(rand.Reader, 256, v)
	assert.ErrorIs(t, err, gic.ErrInvalidParameter, "modulus too small")
	_, err = GenerateModulus(rand.Reader, testBits, big.NewInt(4))
	assert.ErrorIs(t, err, gic.ErrInvalidParameter, "even exponent")
}

func TestSetupParameters(t *testing.T) {
	_, params := newTestBackend(t, "setup")
	assert.Equal(t, gic.TagGQ, params.Backend)
	assert.Equal(t, "RSA-512", params.Group)
	assert.Nil(t, params.Order, "the group order stays unknown")
	assert.Equal(t, int64(DefaultExponent), params.Exponent.Int64())
	assert.Equal(t, DefaultChallengeBits, params.ChallengeBits)

	_, err := New(WithModulusBits(testBits)).Setup(256, rand.Reader)
	assert.ErrorIs(t, err, gic.ErrInvalidParameter)

	_, err = New(WithModulusBits(testBits), WithChallengeBits(100)).Setup(gic.Level128, rand.Reader)
	assert.ErrorIs(t, err, gic.ErrInvalidParameter, "challenge bits not a multiple of 8")
}

func TestLoadValidatesParameters(t *testing.T) {
	_, params := newTestBackend(t, "load")
	require.NoError(t, New().Load(params))

	prime, err := rand.Prime(rand.Reader, testBits)
	require.NoError(t, err)
	bad := *params
	bad.Modulus = prime
	assert.ErrorIs(t, New().Load(&bad), gic.ErrInvalidParameter, "prime modulus")

	bad = *params
	bad.Modulus = new(big.Int).Lsh(params.Modulus, 1)
	bad.Group = "RSA-513"
	assert.ErrorIs(t, New().Load(&bad), gic.ErrInvalidParameter, "even modulus")

	bad = *params
	bad.Order = big.NewInt(7)
	assert.ErrorIs(t, New().Load(&bad), gic.ErrInvalidParameter, "order must stay unknown")

	bad = *params
	bad.Group = "RSA-3072"
	assert.ErrorIs(t, New().Load(&bad), gic.ErrInvalidParameter, "group name")
}

func TestUnconfiguredBackend(t *testing.T) {
	b := New()
	_, _, err := b.GenerateCAKeyPair(rand.Reader)
	assert.ErrorIs(t, err, gic.ErrInvalidParameter)
	_, err = b.HashToChallenge([]byte("x"))
	assert.ErrorIs(t, err, gic.ErrInvalidParameter)
	assert.Nil(t, b.Parameters())
}

func TestCombinationLaw(t *testing.T) {
	b, _ := newTestBackend(t, "combination")
	rnd := gic.NewDeterministicReader([]byte("gq combination law"))
	for i := 0; i < 8; i++ {
		k, K, err := b.GenerateUserContribution(rnd)
		require.NoError(t, err)
		c, C, err := b.GenerateCAKeyPair(rnd)
		require.NoError(t, err)
		e, err := b.HashToChallenge([]byte{byte(i)})
		require.NoError(t, err)

		sk, err := b.CombinePrivate(k, c, e)
		require.NoError(t, err)
		pk, err := b.CombinePublic(K, C, e)
		require.NoError(t, err)
		derived, err := b.PublicKey(sk)
		require.NoError(t, err)
		assert.True(t, pk.Equal(derived), "PublicKey(k^e·c) must equal K^e·C")
	}
}

func TestKeyGenIsInverseExponent(t *testing.T) {
	b, params := newTestBackend(t, "keygen")
	s, pk, err := b.GenerateCAKeyPair(gic.NewDeterministicReader([]byte("ca")))
	require.NoError(t, err)

	// pk · s^v = 1 mod N
	sv := new(big.Int).Exp(s.(*secret).v, params.Exponent, params.Modulus)
	prod := sv.Mul(sv, pk.(*element).v)
	prod.Mod(prod, params.Modulus)
	assert.Equal(t, int64(1), prod.Int64())
}

func TestChallengeRange(t *testing.T) {
	b, _ := newTestBackend(t, "challenge")
	bound := new(big.Int).Lsh(big.NewInt(1), DefaultChallengeBits)

	for i := 0; i < 32; i++ {
		e, err := b.HashToChallenge([]byte{byte(i)})
		require.NoError(t, err)
		v := e.(*challenge).v
		assert.True(t, v.Sign() > 0 && v.Cmp(bound) <= 0, "challenge %d outside [1, 2^128]", i)

		octets, err := b.EncodeChallenge(e)
		require.NoError(t, err)
		require.Len(t, octets, DefaultChallengeBits/8+1)
		decoded, err := b.DecodeChallenge(octets)
		require.NoError(t, err)
		assert.True(t, decoded.Equal(e))
	}

	size := b.ChallengeSize()
	_, err := b.DecodeChallenge(make([]byte, size))
	assert.ErrorIs(t, err, gic.ErrMalformedEncoding, "zero challenge")

	_, err = b.DecodeChallenge(gic.FixedBytes(bound, size))
	assert.NoError(t, err, "2^λ is the largest challenge")

	_, err = b.DecodeChallenge(gic.FixedBytes(new(big.Int).Add(bound, big.NewInt(1)), size))
	assert.ErrorIs(t, err, gic.ErrMalformedEncoding, "challenge above 2^λ")
}

func TestDecodeElementRange(t *testing.T) {
	b, params := newTestBackend(t, "decode")
	n := params.Modulus
	size := b.ElementSize()

	for _, v := range []*big.Int{
		big.NewInt(0),
		big.NewInt(1),
		new(big.Int).Sub(n, big.NewInt(1)),
	} {
		_, err := b.DecodeElement(gic.FixedBytes(v, size))
		assert.ErrorIs(t, err, gic.ErrMalformedEncoding, "degenerate residue %s", v)
	}

	_, err := b.DecodeElement(gic.FixedBytes(n, size))
	assert.ErrorIs(t, err, gic.ErrMalformedEncoding, "N itself is not reduced")

	_, err = b.DecodeElement(gic.FixedBytes(big.NewInt(2), size))
	assert.NoError(t, err)
	_, err = b.DecodeScalar(gic.FixedBytes(new(big.Int).Sub(n, big.NewInt(2)), size))
	assert.NoError(t, err)
}

func TestDecodeRejectsFactorsOfKnownModulus(t *testing.T) {
	p, err := rand.Prime(rand.Reader, testBits/2)
	require.NoError(t, err)
	q, err := rand.Prime(rand.Reader, testBits/2)
	require.NoError(t, err)
	n := new(big.Int).Mul(p, q)

	b := New(WithModulus(n))
	_, err = b.Setup(gic.Level128, nil)
	require.NoError(t, err)

	_, err = b.DecodeElement(gic.FixedBytes(p, b.ElementSize()))
	assert.ErrorIs(t, err, gic.ErrMalformedEncoding)
	assert.ErrorIs(t, err, gic.ErrInvalidParameter)
}

func TestElementsOfAnotherModulus(t *testing.T) {
	a, _ := newTestBackend(t, "first")
	b, _ := newTestBackend(t, "second")
	_, K, err := b.GenerateUserContribution(rand.Reader)
	require.NoError(t, err)
	_, C, err := a.GenerateCAKeyPair(rand.Reader)
	require.NoError(t, err)

	_, err = a.Mul(K, C)
	assert.ErrorIs(t, err, gic.ErrDomainMismatch)
	assert.False(t, K.Equal(C))
}

func TestDeriveContributionIsDeterministic(t *testing.T) {
	b, _ := newTestBackend(t, "derive")
	seed := []byte("0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef")
	s1, p1, err := b.DeriveContribution(seed)
	require.NoError(t, err)
	s2, p2, err := b.DeriveContribution(seed)
	require.NoError(t, err)
	assert.True(t, s1.Equal(s2))
	assert.True(t, p1.Equal(p2))

	_, _, err = b.DeriveContribution(seed[:10])
	assert.ErrorIs(t, err, gic.ErrDomainMismatch)
}
