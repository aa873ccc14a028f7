// Package schnorr instantiates the generic implicit-certificate protocol over
// the prime-order group of NIST P-256, in the manner of ECQV.
//
//	H = (Z_n, +), E = (P-256, +), KeyGen(s) = s·G
package schnorr

import (
	"io"
	"math/big"

	"filippo.io/nistec"
	gic "github.com/Iscaraca/gic"
)

type scalar struct{ v *big.Int }

func (s *scalar) Bytes() []byte { return ScalarToOctets(s.v) }

func (s *scalar) Equal(o gic.Scalar) bool {
	t, ok := o.(*scalar)
	return ok && t != nil && s.v.Cmp(t.v) == 0
}

// point caches the compressed encoding, which also serves for equality.
type point struct {
	p   *nistec.P256Point
	enc []byte
}

func newPoint(p *nistec.P256Point) *point {
	return &point{p: p, enc: PointToOctets(p)}
}

func (p *point) Bytes() []byte { return append([]byte{}, p.enc...) }

func (p *point) Equal(o gic.Element) bool {
	t, ok := o.(*point)
	return ok && t != nil && string(p.enc) == string(t.enc)
}

type challenge struct{ v *big.Int }

func (c *challenge) Bytes() []byte { return ScalarToOctets(c.v) }

func (c *challenge) Equal(o gic.Challenge) bool {
	t, ok := o.(*challenge)
	return ok && t != nil && c.v.Cmp(t.v) == 0
}

// Backend implements gic.Backend over P-256.
type Backend struct {
	params *gic.SystemParameters
}

var _ gic.Backend = (*Backend)(nil)

// New returns a backend bound to the standard P-256 parameters.
func New() *Backend {
	return &Backend{params: standardParameters(gic.Level128)}
}

func standardParameters(level gic.SecurityLevel) *gic.SystemParameters {
	return &gic.SystemParameters{
		Backend:       gic.TagSchnorr,
		Level:         level,
		Group:         GroupName,
		Modulus:       FieldModulus(),
		Order:         Order(),
		Generator:     PointToOctets(generator()),
		ChallengeBits: groupOrder.BitLen(),
		Hash:          HashID,
	}
}

// Tag returns gic.TagSchnorr.
func (b *Backend) Tag() gic.Tag { return gic.TagSchnorr }

// Name returns the backend name used in reports.
func (b *Backend) Name() string { return "schnorr-p256" }

// Parameters returns the bound parameters.
func (b *Backend) Parameters() *gic.SystemParameters { return b.params }

// ScalarSize is the width of an encoded scalar mod n.
func (b *Backend) ScalarSize() int { return OctetScalarLength }

// ElementSize is the width of a compressed point.
func (b *Backend) ElementSize() int { return OctetPointLength }

// ChallengeSize is the width of an encoded challenge, a scalar mod n.
func (b *Backend) ChallengeSize() int { return OctetChallengeSize }

// Setup checks the level and the base point. P-256 offers roughly 128 bits
// of security, so no other level is served.
func (b *Backend) Setup(level gic.SecurityLevel, _ io.Reader) (*gic.SystemParameters, error) {
	if level != gic.Level128 {
		return nil, gic.Errorf(gic.ErrInvalidParameter, "unsupported security level %d", level)
	}
	if _, err := OctetsToPoint(PointToOctets(generator())); err != nil {
		return nil, err
	}
	b.params = standardParameters(level)
	return b.params, nil
}

// Load accepts only the standard P-256 description.
func (b *Backend) Load(params *gic.SystemParameters) error {
	if params == nil || params.Backend != gic.TagSchnorr {
		return gic.Errorf(gic.ErrInvalidParameter, "parameters are not for %s", b.Name())
	}
	if params.Level != gic.Level128 || !params.Equal(standardParameters(params.Level)) {
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

// sample draws a non-zero scalar from ExpandLen random octets reduced mod n.
func (b *Backend) sample(rand io.Reader) (gic.Scalar, gic.Element, error) {
	for {
		octets, err := gic.ReadRandom(rand, ExpandLen)
		if err != nil {
			return nil, nil, err
		}
		s := gic.OS2IP(octets)
		s.Mod(s, groupOrder)
		if s.Sign() != 0 {
			return b.keyPair(s)
		}
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

func (b *Backend) keyPair(s *big.Int) (gic.Scalar, gic.Element, error) {
	sk := &scalar{v: s}
	pk, err := b.PublicKey(sk)
	if err != nil {
		return nil, nil, err
	}
	return sk, pk, nil
}

// PublicKey computes s·G.
func (b *Backend) PublicKey(sk gic.Scalar) (gic.Element, error) {
	s, err := b.scalar(sk)
	if err != nil {
		return nil, err
	}
	pk, err := nistec.NewP256Point().ScalarBaseMult(s.Bytes())
	if err != nil {
		return nil, gic.Errorf(gic.ErrInvalidParameter, "scalar base multiplication: %v", err)
	}
	return b.toPoint(pk)
}

// Mul adds two points.
func (b *Backend) Mul(x, y gic.Element) (gic.Element, error) {
	px, err := b.point(x)
	if err != nil {
		return nil, err
	}
	py, err := b.point(y)
	if err != nil {
		return nil, err
	}
	return b.toPoint(nistec.NewP256Point().Add(px.p, py.p))
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

	eR, err := nistec.NewP256Point().ScalarMult(pR.p, c.Bytes())
	if err != nil {
		return nil, gic.Errorf(gic.ErrInvalidParameter, "scalar multiplication: %v", err)
	}
	return b.toPoint(nistec.NewP256Point().Add(eR, pC.p))
}

// CombinePrivate computes e·r + c mod n.
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

	sk := new(big.Int).Mul(c.v, sr.v)
	sk.Add(sk, sc.v).Mod(sk, groupOrder)
	if sk.Sign() == 0 {
		return nil, gic.Errorf(gic.ErrInvalidParameter, "combined secret is zero")
	}
	return &scalar{v: sk}, nil
}

// HashToChallenge maps msg to a non-zero scalar mod n.
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

// DecodeElement parses and validates a compressed point.
func (b *Backend) DecodeElement(octets []byte) (gic.Element, error) {
	p, err := OctetsToPoint(octets)
	if err != nil {
		return nil, err
	}
	return newPoint(p), nil
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

func (b *Backend) toPoint(p *nistec.P256Point) (gic.Element, error) {
	if isIdentity(p) {
		return nil, gic.Errorf(gic.ErrInvalidParameter, "point is identity")
	}
	return newPoint(p), nil
}

func (b *Backend) scalar(s gic.Scalar) (*scalar, error) {
	v, ok := s.(*scalar)
	if !ok || v == nil || v.v == nil {
		return nil, gic.Errorf(gic.ErrDomainMismatch, "%T is not a P-256 scalar", s)
	}
	if v.v.Sign() <= 0 || v.v.Cmp(groupOrder) >= 0 {
		return nil, gic.Errorf(gic.ErrDomainMismatch, "scalar outside [1, n)")
	}
	return v, nil
}

func (b *Backend) point(e gic.Element) (*point, error) {
	v, ok := e.(*point)
	if !ok || v == nil || v.p == nil {
		return nil, gic.Errorf(gic.ErrDomainMismatch, "%T is not a P-256 point", e)
	}
	if len(v.enc) != OctetPointLength {
		return nil, gic.Errorf(gic.ErrDomainMismatch, "point is identity")
	}
	return v, nil
}

func (b *Backend) challenge(e gic.Challenge) (*challenge, error) {
	v, ok := e.(*challenge)
	if !ok || v == nil || v.v == nil {
		return nil, gic.Errorf(gic.ErrDomainMismatch, "%T is not a P-256 challenge", e)
	}
	if v.v.Sign() <= 0 || v.v.Cmp(groupOrder) >= 0 {
		return nil, gic.Errorf(gic.ErrDomainMismatch, "challenge outside [1, n)")
	}
	return v, nil
}
