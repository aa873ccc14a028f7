package gic

// CAKeyPair is the issuer's long-term key pair. It is never part of a
// certificate.
type CAKeyPair struct {
	Secret Scalar
	Public Element
}

// UserContribution is the requester's ephemeral randomness r and its public
// commitment R. Only R leaves the user.
type UserContribution struct {
	Secret     Scalar
	Commitment Element
}

// ICert is the public data of an implicit certificate. It carries no secret
// material and is immutable once issued.
type ICert struct {
	Backend Tag
	// Commitment is the reconstruction value R_U = R ⊗ K_C.
	Commitment Element
	Identity   string
	// Contribution is the issuer's per-certificate public contribution K_C.
	Contribution Element
}

// CompletionValue is the secondary output of iCertGen, for the requesting user
// only. Challenge is the issuer's e; when present SKGen checks it against its
// own recomputation.
type CompletionValue struct {
	Value     Scalar
	Challenge Challenge
}

// UserKeyPair is the reconstructed key pair. Secret comes from SKGen, Public
// from PKRecon.
type UserKeyPair struct {
	Secret Scalar
	Public Element
}

// Equal reports whether both key pairs hold the same values.
func (k *CAKeyPair) Equal(o *CAKeyPair) bool {
	if k == nil || o == nil {
		return k == o
	}
	return equalScalar(k.Secret, o.Secret) && equalElement(k.Public, o.Public)
}

// Equal reports whether both contributions hold the same values.
func (u *UserContribution) Equal(o *UserContribution) bool {
	if u == nil || o == nil {
		return u == o
	}
	return equalScalar(u.Secret, o.Secret) && equalElement(u.Commitment, o.Commitment)
}

// Equal reports whether both certificates bind the same data.
func (c *ICert) Equal(o *ICert) bool {
	if c == nil || o == nil {
		return c == o
	}
	return c.Backend == o.Backend &&
		c.Identity == o.Identity &&
		equalElement(c.Commitment, o.Commitment) &&
		equalElement(c.Contribution, o.Contribution)
}

// Equal compares values and challenges; a missing challenge only equals a
// missing challenge.
func (c *CompletionValue) Equal(o *CompletionValue) bool {
	if c == nil || o == nil {
		return c == o
	}
	if (c.Challenge == nil) != (o.Challenge == nil) {
		return false
	}
	if c.Challenge != nil && !c.Challenge.Equal(o.Challenge) {
		return false
	}
	return equalScalar(c.Value, o.Value)
}

// Equal reports whether both key pairs hold the same values.
func (k *UserKeyPair) Equal(o *UserKeyPair) bool {
	if k == nil || o == nil {
		return k == o
	}
	return equalScalar(k.Secret, o.Secret) && equalElement(k.Public, o.Public)
}

func equalScalar(a, b Scalar) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}

func equalElement(a, b Element) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}
