package gic

import (
	"crypto/rand"
	"fmt"
	"io"
)

// Protocol runs the generic implicit-certificate scheme over one Backend. It
// holds no algebraic state of its own; parameters live in the backend, keys
// are returned to the caller.
//
// A Protocol is not safe for concurrent Setup calls. Concurrent runs should
// each own a backend instance.
type Protocol struct {
	backend Backend
	rand    io.Reader
}

// Option configures a Protocol.
type Option func(*Protocol)

// WithRandom injects the random source used by Setup and
// GenerateUserContribution. The default is crypto/rand.Reader.
func WithRandom(r io.Reader) Option {
	return func(p *Protocol) {
		if r != nil {
			p.rand = r
		}
	}
}

// New returns a protocol instance bound to backend.
func New(backend Backend, opts ...Option) *Protocol {
	p := &Protocol{backend: backend, rand: rand.Reader}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Backend returns the instantiation the protocol dispatches to.
func (p *Protocol) Backend() Backend {
	return p.backend
}

// Setup selects parameters meeting level and generates the CA key pair.
func (p *Protocol) Setup(level SecurityLevel) (*SystemParameters, *CAKeyPair, error) {
	params, err := p.backend.Setup(level, p.rand)
	if err != nil {
		return nil, nil, err
	}
	sk, pk, err := p.backend.GenerateCAKeyPair(p.rand)
	if err != nil {
		return nil, nil, err
	}
	return params, &CAKeyPair{Secret: sk, Public: pk}, nil
}

// GenerateUserContribution samples the requester's ephemeral (r, R).
func (p *Protocol) GenerateUserContribution() (*UserContribution, error) {
	r, R, err := p.backend.GenerateUserContribution(p.rand)
	if err != nil {
		return nil, err
	}
	return &UserContribution{Secret: r, Commitment: R}, nil
}

// ICertGen issues a certificate for identity over the requester's commitment
// R. It is a pure function of its inputs: the issuer's per-certificate
// contribution is derived from the CA secret and the request.
//
// Procedure:
// 1. (k_C, K_C) = DeriveContribution(issuer_seed(sk_CA, id, R))
// 2. R_U = R ⊗ K_C
// 3. iCert = (id, R_U, K_C)
// 4. e = HashToChallenge(Encode(iCert))
// 5. completion = CombinePrivate(k_C, sk_CA, e)
func (p *Protocol) ICertGen(ca *CAKeyPair, identity string, R Element) (*ICert, *CompletionValue, error) {
	if ca == nil || ca.Secret == nil || ca.Public == nil {
		return nil, nil, Errorf(ErrDomainMismatch, "missing CA key pair")
	}
	if R == nil {
		return nil, nil, Errorf(ErrDomainMismatch, "missing user commitment")
	}

	// 1. (k_C, K_C) = DeriveContribution(seed)
	seed, err := p.issuerSeed(ca.Secret, identity, R)
	if err != nil {
		return nil, nil, err
	}
	kC, KC, err := p.backend.DeriveContribution(seed)
	if err != nil {
		return nil, nil, err
	}

	// 2. R_U = R ⊗ K_C
	RU, err := p.backend.Mul(R, KC)
	if err != nil {
		return nil, nil, err
	}

	// 3. iCert = (id, R_U, K_C)
	cert := &ICert{
		Backend:      p.backend.Tag(),
		Commitment:   RU,
		Identity:     identity,
		Contribution: KC,
	}

	// 4. e = HashToChallenge(Encode(iCert))
	e, err := p.Challenge(cert)
	if err != nil {
		return nil, nil, err
	}

	// 5. completion = CombinePrivate(k_C, sk_CA, e)
	value, err := p.backend.CombinePrivate(kC, ca.Secret, e)
	if err != nil {
		return nil, nil, err
	}

	return cert, &CompletionValue{Value: value, Challenge: e}, nil
}

// Issue runs ICertGen and hands the completion value to ch. Only the
// certificate is returned to the caller.
func (p *Protocol) Issue(ca *CAKeyPair, identity string, R Element, ch DeliveryChannel) (*ICert, error) {
	cert, completion, err := p.ICertGen(ca, identity, R)
	if err != nil {
		return nil, err
	}
	if err := ch.Deliver(identity, completion); err != nil {
		return nil, fmt.Errorf("failed to deliver completion value for %q: %w", identity, err)
	}
	return cert, nil
}

// SKGen derives the user's secret key sk = CombinePrivate(r, completion, e),
// with e recomputed locally from the certificate.
func (p *Protocol) SKGen(cert *ICert, r Scalar, completion *CompletionValue) (Scalar, error) {
	if completion == nil || completion.Value == nil {
		return nil, Errorf(ErrDomainMismatch, "missing completion value")
	}
	if r == nil {
		return nil, Errorf(ErrDomainMismatch, "missing user secret")
	}

	e, err := p.Challenge(cert)
	if err != nil {
		return nil, err
	}
	if completion.Challenge != nil && !e.Equal(completion.Challenge) {
		return nil, Errorf(ErrReconstructionMismatch, "issuer challenge differs from recomputed challenge")
	}

	return p.backend.CombinePrivate(r, completion.Value, e)
}

// PKRecon reconstructs the user's public key from public data alone:
// pk = CombinePublic(R_U, pk_CA, e).
func (p *Protocol) PKRecon(cert *ICert, pkCA Element) (Element, error) {
	if pkCA == nil {
		return nil, Errorf(ErrDomainMismatch, "missing CA public key")
	}
	e, err := p.Challenge(cert)
	if err != nil {
		return nil, err
	}
	return p.backend.CombinePublic(cert.Commitment, pkCA, e)
}

// PKReconEncoded decodes a certificate received on the wire and reconstructs
// the public key it binds.
func (p *Protocol) PKReconEncoded(certOctets []byte, pkCA Element) (Element, error) {
	cert, err := p.DecodeCertificate(certOctets)
	if err != nil {
		return nil, err
	}
	return p.PKRecon(cert, pkCA)
}

// Challenge computes e = HashToChallenge(Encode(iCert)).
func (p *Protocol) Challenge(cert *ICert) (Challenge, error) {
	octets, err := p.EncodeCertificate(cert)
	if err != nil {
		return nil, err
	}
	return p.backend.HashToChallenge(octets)
}

// PublicKey applies the backend's key-derivation map.
func (p *Protocol) PublicKey(sk Scalar) (Element, error) {
	return p.backend.PublicKey(sk)
}

// Reconstruct runs both reconstruction sides for the requester and checks that
// they agree.
func (p *Protocol) Reconstruct(cert *ICert, contribution *UserContribution, completion *CompletionValue, pkCA Element) (*UserKeyPair, error) {
	if contribution == nil {
		return nil, Errorf(ErrDomainMismatch, "missing user contribution")
	}
	sk, err := p.SKGen(cert, contribution.Secret, completion)
	if err != nil {
		return nil, err
	}
	pk, err := p.PKRecon(cert, pkCA)
	if err != nil {
		return nil, err
	}
	if err := p.VerifyKeyPair(sk, pk); err != nil {
		return nil, err
	}
	return &UserKeyPair{Secret: sk, Public: pk}, nil
}

// VerifyKeyPair checks pk == PublicKey(sk).
func (p *Protocol) VerifyKeyPair(sk Scalar, pk Element) error {
	derived, err := p.backend.PublicKey(sk)
	if err != nil {
		return err
	}
	if !derived.Equal(pk) {
		return Errorf(ErrReconstructionMismatch, "reconstructed public key does not match secret key")
	}
	return nil
}

// DeliveryChannel is the confidential issuer-to-user channel that carries a
// completion value to the single requesting user. The protocol core does not
// implement it.
type DeliveryChannel interface {
	Deliver(identity string, completion *CompletionValue) error
}
