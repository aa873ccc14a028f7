package schnorr

import (
	"math/big"

	"filippo.io/nistec"
	gic "github.com/Iscaraca/gic"
)

// generator returns a fresh copy of the P-256 base point.
func generator() *nistec.P256Point {
	return nistec.NewP256Point().SetGenerator()
}

// PointToOctets returns the SEC1 compressed form of p: the parity of Y as
// 0x02 or 0x03, followed by X on 32 octets. The identity encodes as a single
// zero octet.
func PointToOctets(p *nistec.P256Point) []byte {
	return p.BytesCompressed()
}

// OctetsToPoint decodes a SEC1 compressed point and validates it.
//
// 1. if length(octets) != 33, return INVALID
// 2. if octets[0] is not 0x02 or 0x03, return INVALID
// 3. x = OS2IP(octets[1:]); if x >= p, return INVALID
// 4. y = sqrt(x^3 - 3x + b); if no root exists, return INVALID
// 5. choose the root whose parity matches octets[0]
func OctetsToPoint(octets []byte) (*nistec.P256Point, error) {
	// 1. if length(octets) != 33, return INVALID
	if len(octets) != OctetPointLength {
		return nil, gic.Errorf(gic.ErrMalformedEncoding, "point length %d, expected %d", len(octets), OctetPointLength)
	}

	// 2. prefix
	prefix := octets[0]
	if prefix != prefixEven && prefix != prefixOdd {
		return nil, gic.Errorf(gic.ErrMalformedEncoding, "point prefix 0x%02x is not compressed", prefix)
	}

	// 3. x = OS2IP(octets[1:])
	if new(big.Int).SetBytes(octets[1:]).Cmp(fieldModulus) >= 0 {
		return nil, gic.Errorf(gic.ErrMalformedEncoding, "x-coordinate out of range")
	}

	// 4. and 5. are done by SetBytes, which only fails here when x^3 - 3x + b
	// has no square root.
	p, err := nistec.NewP256Point().SetBytes(octets)
	if err != nil {
		return nil, gic.Errorf(gic.ErrMalformedEncoding, "%w",
			gic.Errorf(gic.ErrInvalidParameter, "x-coordinate is not on the curve: %v", err))
	}
	return p, nil
}

// ScalarToOctets returns the 32-octet big-endian form of s.
func ScalarToOctets(s *big.Int) []byte {
	return gic.FixedBytes(s, OctetScalarLength)
}

// OctetsToScalar decodes a canonical, non-zero scalar.
func OctetsToScalar(octets []byte) (*big.Int, error) {
	if len(octets) != OctetScalarLength {
		return nil, gic.Errorf(gic.ErrMalformedEncoding, "scalar length %d, expected %d", len(octets), OctetScalarLength)
	}
	s := gic.OS2IP(octets)
	if s.Cmp(groupOrder) >= 0 {
		return nil, gic.Errorf(gic.ErrMalformedEncoding, "scalar out of range")
	}
	if s.Sign() == 0 {
		return nil, gic.Errorf(gic.ErrMalformedEncoding, "scalar is zero")
	}
	return s, nil
}

func isIdentity(p *nistec.P256Point) bool {
	return len(p.BytesCompressed()) == 1
}
