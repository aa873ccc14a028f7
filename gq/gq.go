// Package gq instantiates the generic implicit-certificate protocol over the
// multiplicative group Z_N^* of an RSA modulus of unknown factorisation, after
// Guillou-Quisquater.
//
//	H = E = (Z_N^*, ·), KeyGen(s) = s^(-v) mod N
//
// The group order is unknown to every party, so challenges are drawn from a
// fixed integer interval [1, 2^λ] instead of a residue ring.
package gq

import (
	"fmt"
	"io"
	"math/big"

	gic "github.com/Iscaraca/gic"
)

type residue struct {
	v *big.Int
	n *big.Int
}

func (r *residue) bytes() []byte { return gic.FixedBytes(r.v, (r.n.BitLen()+7)/8) }

func (r *residue) equal(o *residue) bool {
	return r.n.Cmp(o.n) == 0 && r.v.Cmp(o.v) == 0
}

type secret struct{ residue }

func (s *secret) Bytes() []byte { return s.bytes() }

func (s *secret) Equal(o gic.Scalar) bool {
	t, ok := o.(*secret)
	return ok && t != nil && s.equal(&t.residue)
}

type element struct{ residue }

func (e *element) Bytes() []byte { return e.bytes() }

func (e *element) Equal(o gic.Element) bool {
	t, ok := o.(*element)
	return ok && t != nil && e.equal(&t.residue)
}

type challenge struct {
	v    *big.Int
	bits int
}

func (c *challenge) Bytes() []byte { return gic.FixedBytes(c.v, c.bits/8+1) }

func (c *challenge) Equal(o gic.Challenge) bool {
	t, ok := o.(*challenge)
	return ok && t != nil && c.bits == t.bits && c.v.Cmp(t.v) == 0
}

// Backend implements gic.Backend over Z_N^*. A Backend has no parameters
// until Setup or Load binds a modulus.
type Backend struct {
	modulusBits   int
	exponent      *big.Int
	challengeBits int
	preset        *big.Int

	params *gic.SystemParameters
	n      *big.Int
	size   int
	// bound is 2^λ, the largest challenge.
	bound *big.Int
}

var _ gic.Backend = (*Backend)(nil)

// Option configures a Backend.
type Option func(*Backend)

// WithModulusBits overrides the modulus size Setup generates.
func WithModulusBits(bits int) Option {
	return func(b *Backend) {
		b.modulusBits = bits
	}
}

// WithModulus makes Setup use n instead of generating a modulus.
func WithModulus(n *big.Int) Option {
	return func(b *Backend) {
		b.preset = n
	}
}

// WithExponent overrides the public exponent v.
func WithExponent(v *big.Int) Option {
	return func(b *Backend) {
		b.exponent = v
	}
}

// WithChallengeBits sets λ, the bit length of the challenge interval.
func WithChallengeBits(bits int) Option {
	return func(b *Backend) {
		b.challengeBits = bits
	}
}

// New returns an unconfigured GQ backend.
func New(opts ...Option) *Backend {
	b := &Backend{
		exponent:      big.NewInt(DefaultExponent),
		challengeBits: DefaultChallengeBits,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Tag returns gic.TagGQ.
func (b *Backend) Tag() gic.Tag { return gic.TagGQ }

// Name returns the backend name used in reports.
func (b *Backend) Name() string { return "gq" }

// Parameters returns the bound parameters, nil before Setup or Load.
func (b *Backend) Parameters() *gic.SystemParameters { return b.params }

// ScalarSize is ⌈|N|/8⌉, zero before parameters are bound.
func (b *Backend) ScalarSize() int { return b.size }

// ElementSize is ⌈|N|/8⌉, zero before parameters are bound.
func (b *Backend) ElementSize() int { return b.size }

// ChallengeSize is λ/8+1, enough to hold 2^λ.
func (b *Backend) ChallengeSize() int { return b.challengeBits/8 + 1 }

// Setup generates a modulus for level from rand, or validates the one given
// with WithModulus.
func (b *Backend) Setup(level gic.SecurityLevel, rand io.Reader) (*gic.SystemParameters, error) {
	if level != gic.Level128 {
		return nil, gic.Errorf(gic.ErrInvalidParameter, "unsupported security level %d", level)
	}
	if err := checkChallengeBits(b.challengeBits); err != nil {
		return nil, err
	}
	if b.exponent == nil {
		return nil, gic.Errorf(gic.ErrInvalidParameter, "missing exponent")
	}

	n := b.preset
	if n == nil {
		bits := b.modulusBits
		if bits == 0 {
			bits = DefaultModulusBits
		}
		var err error
		if n, err = GenerateModulus(rand, bits, b.exponent); err != nil {
			return nil, err
		}
	}

	params := &gic.SystemParameters{
		Backend:       gic.TagGQ,
		Level:         level,
		Group:         fmt.Sprintf("RSA-%d", n.BitLen()),
		Modulus:       new(big.Int).Set(n),
		Exponent:      new(big.Int).Set(b.exponent),
		ChallengeBits: b.challengeBits,
		Hash:          HashID,
	}
	if err := b.Load(params); err != nil {
		return nil, err
	}
	return params, nil
}

// Load validates params and binds them.
func (b *Backend) Load(params *gic.SystemParameters) error {
	if params == nil || params.Backend != gic.TagGQ {
		return gic.Errorf(gic.ErrInvalidParameter, "parameters are not for %s", b.Name())
	}
	n, v := params.Modulus, params.Exponent
	if n == nil || n.BitLen() < MinModulusBits || n.Bit(0) == 0 {
		return gic.Errorf(gic.ErrInvalidParameter, "modulus must be odd with at least %d bits", MinModulusBits)
	}
	if n.ProbablyPrime(primeRounds) {
		return gic.Errorf(gic.ErrInvalidParameter, "modulus is prime")
	}
	if v == nil || v.Cmp(two) <= 0 || v.Bit(0) == 0 || v.Cmp(n) >= 0 {
		return gic.Errorf(gic.ErrInvalidParameter, "exponent must be odd and in (2, N)")
	}
	if params.Order != nil || len(params.Generator) != 0 {
		return gic.Errorf(gic.ErrInvalidParameter, "GQ parameters carry no group order or generator")
	}
	if params.Hash != HashID {
		return gic.Errorf(gic.ErrInvalidParameter, "hash %q, expected %q", params.Hash, HashID)
	}
	if params.Group != fmt.Sprintf("RSA-%d", n.BitLen()) {
		return gic.Errorf(gic.ErrInvalidParameter, "group name %q does not match modulus", params.Group)
	}
	if err := checkChallengeBits(params.ChallengeBits); err != nil {
		return err
	}

	b.params = params
	b.n = n
	b.size = (n.BitLen() + 7) / 8
	b.exponent = v
	b.challengeBits = params.ChallengeBits
	b.bound = new(big.Int).Lsh(one, uint(params.ChallengeBits))
	return nil
}

func checkChallengeBits(bits int) error {
	if bits < MinChallengeBits || bits > MaxChallengeBits || bits%8 != 0 {
		return gic.Errorf(gic.ErrInvalidParameter, "challenge size %d bits, need a multiple of 8 in [%d, %d]",
			bits, MinChallengeBits, MaxChallengeBits)
	}
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

func (b *Backend) sample(rand io.Reader) (gic.Scalar, gic.Element, error) {
	if err := b.ready(); err != nil {
		return nil, nil, err
	}
	for {
		octets, err := gic.ReadRandom(rand, b.size+samplingMargin)
		if err != nil {
			return nil, nil, err
		}
		if s, ok := b.reduce(octets); ok {
			return b.keyPair(s)
		}
	}
}

// DeriveContribution expands seed with a one-octet counter until the result
// reduces to a valid residue.
func (b *Backend) DeriveContribution(seed []byte) (gic.Scalar, gic.Element, error) {
	if err := b.ready(); err != nil {
		return nil, nil, err
	}
	if len(seed) != gic.SeedLength {
		return nil, nil, gic.Errorf(gic.ErrDomainMismatch, "seed length %d, expected %d", len(seed), gic.SeedLength)
	}
	msg := make([]byte, len(seed)+1)
	copy(msg, seed)
	for ctr := 0; ctr < 256; ctr++ {
		msg[len(seed)] = byte(ctr)
		octets := gic.ExpandMessageXOF(msg, []byte(ContributionDST), b.size+samplingMargin)
		if s, ok := b.reduce(octets); ok {
			return b.keyPair(s)
		}
	}
	return nil, nil, gic.Errorf(gic.ErrInvalidParameter, "no valid residue derived from seed")
}

func (b *Backend) reduce(octets []byte) (*big.Int, bool) {
	s := new(big.Int).SetBytes(octets)
	s.Mod(s, b.n)
	return s, b.valid(s)
}

func (b *Backend) keyPair(s *big.Int) (gic.Scalar, gic.Element, error) {
	sk := &secret{residue{v: s, n: b.n}}
	pk, err := b.PublicKey(sk)
	if err != nil {
		return nil, nil, err
	}
	return sk, pk, nil
}

// PublicKey computes s^(-v) mod N.
func (b *Backend) PublicKey(sk gic.Scalar) (gic.Element, error) {
	s, err := b.secret(sk)
	if err != nil {
		return nil, err
	}
	inv := new(big.Int).ModInverse(s.v, b.n)
	if inv == nil {
		return nil, gic.Errorf(gic.ErrInvalidParameter, "secret is not invertible mod N")
	}
	return b.element(inv.Exp(inv, b.exponent, b.n))
}

// Mul multiplies two residues mod N.
func (b *Backend) Mul(x, y gic.Element) (gic.Element, error) {
	ex, err := b.checkElement(x)
	if err != nil {
		return nil, err
	}
	ey, err := b.checkElement(y)
	if err != nil {
		return nil, err
	}
	z := new(big.Int).Mul(ex.v, ey.v)
	return b.element(z.Mod(z, b.n))
}

// CombinePublic computes R^e · pk_CA mod N.
func (b *Backend) CombinePublic(R, pkCA gic.Element, e gic.Challenge) (gic.Element, error) {
	eR, err := b.checkElement(R)
	if err != nil {
		return nil, err
	}
	eC, err := b.checkElement(pkCA)
	if err != nil {
		return nil, err
	}
	c, err := b.challenge(e)
	if err != nil {
		return nil, err
	}
	z := new(big.Int).Exp(eR.v, c.v, b.n)
	z.Mul(z, eC.v).Mod(z, b.n)
	return b.element(z)
}

// CombinePrivate computes r^e · c mod N.
func (b *Backend) CombinePrivate(r, completion gic.Scalar, e gic.Challenge) (gic.Scalar, error) {
	sr, err := b.secret(r)
	if err != nil {
		return nil, err
	}
	sc, err := b.secret(completion)
	if err != nil {
		return nil, err
	}
	c, err := b.challenge(e)
	if err != nil {
		return nil, err
	}
	z := new(big.Int).Exp(sr.v, c.v, b.n)
	z.Mul(z, sc.v).Mod(z, b.n)
	if !b.valid(z) {
		return nil, gic.Errorf(gic.ErrInvalidParameter, "combined secret is degenerate")
	}
	return &secret{residue{v: z, n: b.n}}, nil
}

// HashToChallenge computes e = 1 + OS2IP(expand_message_xof(msg, λ/8)), so
// that e lies in [1, 2^λ].
func (b *Backend) HashToChallenge(msg []byte) (gic.Challenge, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	octets := gic.ExpandMessageXOF(msg, []byte(ChallengeDST), b.challengeBits/8)
	e := gic.OS2IP(octets)
	e.Add(e, one)
	return &challenge{v: e, bits: b.challengeBits}, nil
}

// EncodeScalar returns the fixed-width form of s.
func (b *Backend) EncodeScalar(s gic.Scalar) ([]byte, error) {
	v, err := b.secret(s)
	if err != nil {
		return nil, err
	}
	return v.Bytes(), nil
}

// DecodeScalar parses a valid residue.
func (b *Backend) DecodeScalar(octets []byte) (gic.Scalar, error) {
	v, err := b.decodeResidue(octets)
	if err != nil {
		return nil, err
	}
	return &secret{residue{v: v, n: b.n}}, nil
}

// EncodeElement returns the fixed-width form of e.
func (b *Backend) EncodeElement(e gic.Element) ([]byte, error) {
	v, err := b.checkElement(e)
	if err != nil {
		return nil, err
	}
	return v.Bytes(), nil
}

// DecodeElement parses a valid residue.
func (b *Backend) DecodeElement(octets []byte) (gic.Element, error) {
	v, err := b.decodeResidue(octets)
	if err != nil {
		return nil, err
	}
	return &element{residue{v: v, n: b.n}}, nil
}

// EncodeChallenge returns e on λ/8+1 octets.
func (b *Backend) EncodeChallenge(e gic.Challenge) ([]byte, error) {
	c, err := b.challenge(e)
	if err != nil {
		return nil, err
	}
	return c.Bytes(), nil
}

// DecodeChallenge parses a challenge in [1, 2^λ].
func (b *Backend) DecodeChallenge(octets []byte) (gic.Challenge, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	if len(octets) != b.ChallengeSize() {
		return nil, gic.Errorf(gic.ErrMalformedEncoding, "challenge length %d, expected %d", len(octets), b.ChallengeSize())
	}
	e := gic.OS2IP(octets)
	if e.Sign() == 0 || e.Cmp(b.bound) > 0 {
		return nil, gic.Errorf(gic.ErrMalformedEncoding, "challenge outside [1, 2^%d]", b.challengeBits)
	}
	return &challenge{v: e, bits: b.challengeBits}, nil
}

func (b *Backend) decodeResidue(octets []byte) (*big.Int, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	if len(octets) != b.size {
		return nil, gic.Errorf(gic.ErrMalformedEncoding, "residue length %d, expected %d", len(octets), b.size)
	}
	v := gic.OS2IP(octets)
	if v.Cmp(b.n) >= 0 {
		return nil, gic.Errorf(gic.ErrMalformedEncoding, "residue is not reduced mod N")
	}
	if !b.valid(v) {
		return nil, gic.Errorf(gic.ErrMalformedEncoding, "%w",
			gic.Errorf(gic.ErrInvalidParameter, "residue is degenerate or shares a factor with N"))
	}
	return v, nil
}

// valid reports 2 <= x <= N-2 and gcd(x, N) = 1. This rejects 0 and ±1, the
// only residues whose order is publicly known.
func (b *Backend) valid(x *big.Int) bool {
	if x.Cmp(two) < 0 {
		return false
	}
	if new(big.Int).Sub(b.n, x).Cmp(two) < 0 {
		return false
	}
	return new(big.Int).GCD(nil, nil, x, b.n).Cmp(one) == 0
}

func (b *Backend) ready() error {
	if b.n == nil {
		return gic.Errorf(gic.ErrInvalidParameter, "%s backend has no parameters, call Setup or Load", b.Name())
	}
	return nil
}

func (b *Backend) element(v *big.Int) (gic.Element, error) {
	if !b.valid(v) {
		return nil, gic.Errorf(gic.ErrInvalidParameter, "result is degenerate")
	}
	return &element{residue{v: v, n: b.n}}, nil
}

func (b *Backend) secret(s gic.Scalar) (*secret, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	v, ok := s.(*secret)
	if !ok || v == nil {
		return nil, gic.Errorf(gic.ErrDomainMismatch, "%T is not a GQ secret", s)
	}
	if err := b.checkResidue(&v.residue); err != nil {
		return nil, err
	}
	return v, nil
}

func (b *Backend) checkElement(e gic.Element) (*element, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	v, ok := e.(*element)
	if !ok || v == nil {
		return nil, gic.Errorf(gic.ErrDomainMismatch, "%T is not a GQ element", e)
	}
	if err := b.checkResidue(&v.residue); err != nil {
		return nil, err
	}
	return v, nil
}

func (b *Backend) checkResidue(r *residue) error {
	if r.n == nil || r.n.Cmp(b.n) != 0 {
		return gic.Errorf(gic.ErrDomainMismatch, "residue belongs to a different modulus")
	}
	if r.v == nil || !b.valid(r.v) {
		return gic.Errorf(gic.ErrDomainMismatch, "residue outside Z_N^* \\ {0, ±1}")
	}
	return nil
}

func (b *Backend) challenge(e gic.Challenge) (*challenge, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	v, ok := e.(*challenge)
	if !ok || v == nil {
		return nil, gic.Errorf(gic.ErrDomainMismatch, "%T is not a GQ challenge", e)
	}
	if v.bits != b.challengeBits || v.v == nil || v.v.Sign() <= 0 || v.v.Cmp(b.bound) > 0 {
		return nil, gic.Errorf(gic.ErrDomainMismatch, "challenge outside [1, 2^%d]", b.challengeBits)
	}
	return v, nil
}
