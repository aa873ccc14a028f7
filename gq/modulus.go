package gq

import (
	"io"
	"math/big"

	gic "github.com/Iscaraca/gic"
)

var (
	one = big.NewInt(1)
	two = big.NewInt(2)
)

// GenerateModulus returns N = p·q with |N| = bits, where p and q are distinct
// primes of bits/2 bits each, both with the two top bits set and with
// gcd(v, p-1) = gcd(v, q-1) = 1. The factors are discarded.
//
// Candidates are drawn from rand only, so a deterministic reader yields a
// deterministic modulus.
func GenerateModulus(rand io.Reader, bits int, v *big.Int) (*big.Int, error) {
	if bits < MinModulusBits || bits%2 != 0 {
		return nil, gic.Errorf(gic.ErrInvalidParameter, "modulus size %d, need an even size of at least %d bits", bits, MinModulusBits)
	}
	if v == nil || v.Cmp(two) <= 0 || v.Bit(0) == 0 {
		return nil, gic.Errorf(gic.ErrInvalidParameter, "exponent must be odd and greater than 2")
	}

	for {
		p, err := generatePrime(rand, bits/2, v)
		if err != nil {
			return nil, err
		}
		q, err := generatePrime(rand, bits/2, v)
		if err != nil {
			return nil, err
		}
		if p.Cmp(q) == 0 {
			continue
		}
		n := new(big.Int).Mul(p, q)
		if n.BitLen() == bits {
			return n, nil
		}
	}
}

// generatePrime draws odd candidates of exactly bits bits until one is
// probably prime and coprime to v after subtracting one.
func generatePrime(rand io.Reader, bits int, v *big.Int) (*big.Int, error) {
	size := (bits + 7) / 8
	excess := uint(size*8 - bits)
	pm1 := new(big.Int)
	gcd := new(big.Int)

	for {
		octets, err := gic.ReadRandom(rand, size)
		if err != nil {
			return nil, err
		}
		octets[0] &= byte(0xFF >> excess)

		p := new(big.Int).SetBytes(octets)
		p.SetBit(p, bits-1, 1)
		p.SetBit(p, bits-2, 1)
		p.SetBit(p, 0, 1)

		if !p.ProbablyPrime(primeRounds) {
			continue
		}
		pm1.Sub(p, one)
		if gcd.GCD(nil, nil, v, pm1).Cmp(one) != 0 {
			continue
		}
		return p, nil
	}
}
