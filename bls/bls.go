// Package bls instantiates the generic implicit-certificate protocol over the
// G1 group of BLS12-381, used purely as a prime-order discrete-log group.
//
//	H = (Z_r, +), E = (G1, +), KeyGen(s) = s·G1
package bls

import (
	"io"
	"math/big"

	gic "github.com/Iscaraca/gic"
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fp"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

type scalar struct{ v fr.Element }

func (s *scalar) Bytes() []byte { return ScalarToOctets(s.v) }

func (s *scalar) Equal(o gic.Scalar) bool {
	t, ok := o.(*scalar)
	return ok && t != nil && s.v.Equal(&t.v)
}

type point struct{ p bls12381.G1Affine }

func (p *point) Bytes() []byte { return PointToOctetsG1(p.p) }

func (p *point) Equal(o gic.Element) bool {
	t, ok := o.(*point)
	return ok && t != nil && p.p.Equal(&t.p)
}

type challenge struct{ v fr.Element }

func (c *challenge) Bytes() []byte { return ScalarToOctets(c.v) }

func (c *challenge) Equal(o gic.Challenge) bool {
	t, ok := o.(*challenge)
	return ok && t != nil && c.v.Equal(&t.v)
}

// Backend implements gic.Backend over BLS12-381 G1. Its parameters are fixed
// constants, so a Backend is usable as soon as it is created; Setup only
// validates the requested level.
type Backend struct {
	params *gic.SystemParameters
}

var _ gic.Backend = (*Backend)(nil)

// New returns a backend bound to the standard BLS12-381 parameters.
func New() *Backend {
	return &Backend{params: standardParameters(gic.Level128)}
}

func standardParameters(level gic.SecurityLevel) *gic.SystemParameters {
	return &gic.SystemParameters{
		Backend:       gic.TagBLS,
		Level:         level,
		Group:         GroupName,
		Modulus:       fp.Modulus(),
		Order:         fr.Modulus(),
		Generator:     PointToOctetsG1(g1Aff),
		ChallengeBits: fr.Bits,
		Hash:          HashID,
	}
}

// Tag returns gic.TagBLS.
func (b *Backend) Tag() gic.Tag { return gic.TagBLS }

// Name returns the backend name used in reports.
func (b *Backend) Name() string { return "bls12-381" }

// Parameters returns the bound parameters.
func (b *Backend) Parameters() *gic.SystemParameters { return b.params }

// ScalarSize is the width of an encoded scalar mod r.
func (b *Backend) ScalarSize() int { return OctetScalarLength }

// ElementSize is the width of a compressed G1 point.
func (b *Backend) ElementSize() int { return OctetPointLength }

// ChallengeSize is the width of an encoded challenge, a scalar mod r.
func (b *Backend) ChallengeSize() int { return OctetChallengeSize }

// Setup validates the generator and the requested level. The random source
// is unused: all parameters are standard.
func (b *Backend) Setup(level gic.SecurityLevel, _ io.Reader) (*gic.SystemParameters, error) {
	if level != gic.Level128 {
		return nil, gic.Errorf(gic.ErrInvalidParameter, "unsupported security level %d", level)
	}
	if err := validPoint(&g1Aff); err != nil {
		return nil, err
	}
	b.params = standardParameters(level)
	return b.params, nil
}

// Load accepts only the standard BLS12-381 G1 description.
func (b *Backend) Load(params *gic.SystemParameters) error {
	if params == nil || params.Backend != gic.TagBLS {
		return gic.Errorf(gic.ErrInvalidParameter, "parameters are not for %s", b.Name())
	}
	if !params.Equal(standardParameters(params.Level)) || params.Level != gic.Level128 {
		return gic.Errorf(gic.ErrInvalidParameter, "parameters do not describe %s at level 128", GroupName)
	}
	b.params = params
	return nil
}

// GenerateCAKeyPair samples a CA key pair from rand.
func (b *Backend) GenerateCAKeyPair(rand io.Reader) (gic.Scalar, gic.Element, error) {
	return b.sample(rand)
}

// GenerateUserContribution samples a requester contribution from rand.
func (b *Backend) GenerateUserContribution(rand io.Reader) (gic.Scalar, gic.Element, error) {
	return b.sample(rand)
}

// sample draws a non-zero scalar from ExpandLen random octets reduced mod r.
func (b *Backend) sample(rand io.Reader) (gic.Scalar, gic.Element, error) {
	for {
		octets, err := gic.ReadRandom(rand, ExpandLen)
		if err != nil {
			return nil, nil, err
		}
		var s fr.Element
		s.SetBytes(octets)
		if s.IsZero() {
			continue
		}
		return b.keyPair(s)
	}
}

// DeriveContribution hashes seed to a scalar and returns it with its point.
func (b *Backend) DeriveContribution(seed []byte) (gic.Scalar, gic.Element, error) {
	if len(seed) != gic.SeedLength {
		return nil, nil, gic.Errorf(gic.ErrDomainMismatch, "seed length %d, expected %d", len(seed), gic.SeedLength)
	}
	s, err := hashToScalar(seed, []byte(ContributionDST))
	if err != nil {
		return nil, nil, err
	}
	return b.keyPair(s)
}

func (b *Backend) keyPair(s fr.Element) (gic.Scalar, gic.Element, error) {
	sk := &scalar{v: s}
	pk, err := b.PublicKey(sk)
	if err != nil {
		return nil, nil, err
	}
	return sk, pk, nil
}

// PublicKey computes s·G1 and checks the result is a non-identity subgroup
// element.
func (b *Backend) PublicKey(sk gic.Scalar) (gic.Element, error) {
	s, err := b.scalar(sk)
	if err != nil {
		return nil, err
	}
	var pk bls12381.G1Affine
	pk.ScalarMultiplicationBase(s.v.BigInt(new(big.Int)))
	if err := validPoint(&pk); err != nil {
		return nil, err
	}
	return &point{p: pk}, nil
}

// Mul adds two G1 points.
func (b *Backend) Mul(x, y gic.Element) (gic.Element, error) {
	px, err := b.point(x)
	if err != nil {
		return nil, err
	}
	py, err := b.point(y)
	if err != nil {
		return nil, err
	}
	var sum bls12381.G1Affine
	sum.Add(&px.p, &py.p)
	if err := validPoint(&sum); err != nil {
		return nil, err
	}
	return &point{p: sum}, nil
}

// CombinePublic computes e·R + pk_CA.
func (b *Backend) CombinePublic(R, pkCA gic.Element, e gic.Challenge) (gic.Element, error) {
	pR, err := b.point(R)
	if err != nil {
		return nil, err
	}
	pC, err := b.point(pkCA)
	if err != nil {
		return nil, err
	}
	c, err := b.challenge(e)
	if err != nil {
		return nil, err
	}

	var eR bls12381.G1Jac
	eR.FromAffine(&pR.p)
	eR.ScalarMultiplication(&eR, c.v.BigInt(new(big.Int)))
	var C bls12381.G1Jac
	C.FromAffine(&pC.p)
	eR.AddAssign(&C)

	var pk bls12381.G1Affine
	pk.FromJacobian(&eR)
	if err := validPoint(&pk); err != nil {
		return nil, err
	}
	return &point{p: pk}, nil
}

// CombinePrivate computes e·r + c mod r.
func (b *Backend) CombinePrivate(r, completion gic.Scalar, e gic.Challenge) (gic.Scalar, error) {
	sr, err := b.scalar(r)
	if err != nil {
		return nil, err
	}
	sc, err := b.scalar(completion)
	if err != nil {
		return nil, err
	}
	c, err := b.challenge(e)
	if err != nil {
		return nil, err
	}

	var sk fr.Element
	sk.Mul(&c.v, &sr.v)
	sk.Add(&sk, &sc.v)
	if sk.IsZero() {
		return nil, gic.Errorf(gic.ErrInvalidParameter, "combined secret is zero")
	}
	return &scalar{v: sk}, nil
}

// HashToChallenge maps msg to a non-zero scalar mod r.
func (b *Backend) HashToChallenge(msg []byte) (gic.Challenge, error) {
	e, err := hashToScalar(msg, []byte(ChallengeDST))
	if err != nil {
		return nil, err
	}
	return &challenge{v: e}, nil
}

// EncodeScalar returns the 32-octet form of s.
func (b *Backend) EncodeScalar(s gic.Scalar) ([]byte, error) {
	v, err := b.scalar(s)
	if err != nil {
		return nil, err
	}
	return v.Bytes(), nil
}

// DecodeScalar parses a canonical non-zero scalar.
func (b *Backend) DecodeScalar(octets []byte) (gic.Scalar, error) {
	s, err := OctetsToScalar(octets)
	if err != nil {
		return nil, err
	}
	return &scalar{v: s}, nil
}

// EncodeElement returns the compressed form of e.
func (b *Backend) EncodeElement(e gic.Element) ([]byte, error) {
	p, err := b.point(e)
	if err != nil {
		return nil, err
	}
	return p.Bytes(), nil
}

// DecodeElement parses and validates a compressed G1 point.
func (b *Backend) DecodeElement(octets []byte) (gic.Element, error) {
	p, err := OctetsToPointG1(octets)
	if err != nil {
		return nil, err
	}
	return &point{p: p}, nil
}

// EncodeChallenge returns the 32-octet form of e.
func (b *Backend) EncodeChallenge(e gic.Challenge) ([]byte, error) {
	c, err := b.challenge(e)
	if err != nil {
		return nil, err
	}
	return c.Bytes(), nil
}

// DecodeChallenge parses a canonical non-zero challenge.
func (b *Backend) DecodeChallenge(octets []byte) (gic.Challenge, error) {
	s, err := OctetsToScalar(octets)
	if err != nil {
		return nil, err
	}
	return &challenge{v: s}, nil
}

func (b *Backend) scalar(s gic.Scalar) (*scalar, error) {
	v, ok := s.(*scalar)
	if !ok || v == nil {
		return nil, gic.Errorf(gic.ErrDomainMismatch, "%T is not a BLS12-381 scalar", s)
	}
	if v.v.IsZero() {
		return nil, gic.Errorf(gic.ErrDomainMismatch, "scalar is zero")
	}
	return v, nil
}

func (b *Backend) point(e gic.Element) (*point, error) {
	v, ok := e.(*point)
	if !ok || v == nil {
		return nil, gic.Errorf(gic.ErrDomainMismatch, "%T is not a BLS12-381 G1 point", e)
	}
	if v.p.IsInfinity() {
		return nil, gic.Errorf(gic.ErrDomainMismatch, "G1 point is identity")
	}
	return v, nil
}

func (b *Backend) challenge(e gic.Challenge) (*challenge, error) {
	v, ok := e.(*challenge)
	if !ok || v == nil {
		return nil, gic.Errorf(gic.ErrDomainMismatch, "%T is not a BLS12-381 challenge", e)
	}
	if v.v.IsZero() {
		return nil, gic.Errorf(gic.ErrDomainMismatch, "challenge is zero")
	}
	return v, nil
}
