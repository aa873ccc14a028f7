package bls

import (
	gic "github.com/Iscaraca/gic"
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// Fetch the built-in generator
var (
	_, _, g1Aff, _ = bls12381.Generators()
)

// PointToOctetsG1 converts a G1 point to octets using compression
func PointToOctetsG1(p bls12381.G1Affine) []byte {
	bytes := p.Bytes()
	return bytes[:]
}

// OctetsToPointG1 decodes a compressed G1 point and validates it.
//
// 1. if length(octets) != 48, return INVALID
// 2. P = octets_to_point_g1(octets); if P is INVALID, return INVALID
// 3. if subgroup_check(P) is INVALID, return INVALID
// 4. if P == Identity_G1, return INVALID
func OctetsToPointG1(octets []byte) (bls12381.G1Affine, error) {
	var point bls12381.G1Affine

	// 1. if length(octets) != 48, return INVALID
	if len(octets) != OctetPointLength {
		return point, gic.Errorf(gic.ErrMalformedEncoding, "G1 point length %d, expected %d", len(octets), OctetPointLength)
	}

	// 2. P = octets_to_point_g1(octets)
	n, err := point.SetBytes(octets)
	if err != nil {
		return point, gic.Errorf(gic.ErrMalformedEncoding, "cannot decode G1 point: %w",
			gic.Errorf(gic.ErrInvalidParameter, "%v", err))
	}
	if n != OctetPointLength {
		return point, gic.Errorf(gic.ErrMalformedEncoding, "G1 point is not compressed")
	}

	// 3. SetBytes performs the subgroup check; repeat it for the on-curve case
	if !point.IsOnCurve() || !point.IsInSubGroup() {
		return point, gic.Errorf(gic.ErrMalformedEncoding, "%w",
			gic.Errorf(gic.ErrInvalidParameter, "point not in correct subgroup"))
	}

	// 4. if P == Identity_G1, return INVALID
	if point.IsInfinity() {
		return point, gic.Errorf(gic.ErrMalformedEncoding, "%w",
			gic.Errorf(gic.ErrInvalidParameter, "G1 point is identity"))
	}

	return point, nil
}

// ScalarToOctets returns the 32-octet big-endian form of s.
func ScalarToOctets(s fr.Element) []byte {
	bytes := s.Bytes()
	return bytes[:]
}

// OctetsToScalar decodes a canonical, non-zero scalar.
func OctetsToScalar(octets []byte) (fr.Element, error) {
	var s fr.Element
	if len(octets) != OctetScalarLength {
		return s, gic.Errorf(gic.ErrMalformedEncoding, "scalar length %d, expected %d", len(octets), OctetScalarLength)
	}
	if err := s.SetBytesCanonical(octets); err != nil {
		return s, gic.Errorf(gic.ErrMalformedEncoding, "scalar out of range: %v", err)
	}
	if s.IsZero() {
		return s, gic.Errorf(gic.ErrMalformedEncoding, "scalar is zero")
	}
	return s, nil
}

func validPoint(p *bls12381.G1Affine) error {
	if p.IsInfinity() {
		return gic.Errorf(gic.ErrInvalidParameter, "G1 point is identity")
	}
	if !p.IsOnCurve() || !p.IsInSubGroup() {
		return gic.Errorf(gic.ErrInvalidParameter, "point not in correct subgroup")
	}
	return nil
}
