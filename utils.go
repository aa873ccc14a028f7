package gic

import (
	"encoding/binary"
	"math/big"

	"golang.org/x/crypto/sha3"
)

// ================================================================
// Encoding utilities

// I2OSP converts an integer to an octet string of specified length
// As defined in RFC 3447, Section 4.1
func I2OSP(val int, length int) []byte {
	if length <= 0 {
		return nil
	}

	result := make([]byte, length)
	switch length {
	case 1:
		result[0] = byte(val)
	case 2:
		binary.BigEndian.PutUint16(result, uint16(val))
	case 4:
		binary.BigEndian.PutUint32(result, uint32(val))
	case 8:
		binary.BigEndian.PutUint64(result, uint64(val))
	default:
		for i := length - 1; i >= 0; i-- {
			result[i] = byte(val & 0xFF)
			val >>= 8
		}
	}

	return result
}

// OS2IP interprets an octet string as a big-endian non-negative integer
// As defined in RFC 3447, Section 4.2
func OS2IP(octets []byte) *big.Int {
	return new(big.Int).SetBytes(octets)
}

// FixedBytes writes x big-endian into exactly length octets. It returns nil
// when x is negative or does not fit.
func FixedBytes(x *big.Int, length int) []byte {
	if x.Sign() < 0 || (x.BitLen()+7)/8 > length {
		return nil
	}
	out := make([]byte, length)
	x.FillBytes(out)
	return out
}

// ================================================================
// Hashing utilities

// ExpandMessageXOF implements expand_message_xof as defined in
// RFC 9380, Section 5.3.3 for SHAKE-256
func ExpandMessageXOF(msg []byte, dst []byte, lenInBytes int) []byte {
	shake := sha3.NewShake256()

	// DST_prime = DST || I2OSP(len(DST), 1)
	dstPrime := make([]byte, 0, len(dst)+1)
	dstPrime = append(dstPrime, dst...)
	dstPrime = append(dstPrime, byte(len(dst)))

	// msg || I2OSP(len_in_bytes, 2) || DST_prime
	shake.Write(msg)
	shake.Write(I2OSP(lenInBytes, 2))
	shake.Write(dstPrime)

	output := make([]byte, lenInBytes)
	shake.Read(output)
	return output
}

// concat joins octet strings into a fresh slice.
func concat(parts ...[]byte) []byte {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]byte, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
