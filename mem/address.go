// Package mem defines the memory address model shared by the caches and the
// bus.
package mem

import (
	"errors"
	"fmt"
	"math/bits"
)

// Byte size units.
const (
	B  uint64 = 1
	KB        = 1024 * B
	MB        = 1024 * KB
)

// ErrInvalidGeometry is returned when a cache geometry cannot be expressed as
// address bit fields.
var ErrInvalidGeometry = errors.New("invalid cache geometry")

// An Address is a memory address split into its cache fields.
type Address struct {
	Tag    uint64
	Set    uint64
	Offset uint64
}

// AddressLayout splits addresses into tag, set index and line offset by shift
// and mask.
type AddressLayout struct {
	width      int
	offsetBits int
	setBits    int
	tagBits    int
}

// NewAddressLayout derives the bit fields of a cache with the given total
// size, line size and associativity, for addresses of the given width.
func NewAddressLayout(
	cacheSize, lineSize uint64,
	associativity, width int,
) (AddressLayout, error) {
	if lineSize == 0 || associativity <= 0 || cacheSize == 0 {
		return AddressLayout{}, fmt.Errorf(
			"%w: size %d, line %d, ways %d",
			ErrInvalidGeometry, cacheSize, lineSize, associativity)
	}

	if !isPowerOfTwo(lineSize) {
		return AddressLayout{}, fmt.Errorf(
			"%w: line size %d is not a power of two",
			ErrInvalidGeometry, lineSize)
	}

	setSize := lineSize * uint64(associativity)
	if cacheSize%setSize != 0 {
		return AddressLayout{}, fmt.Errorf(
			"%w: cache size %d is not a whole number of %d-byte sets",
			ErrInvalidGeometry, cacheSize, setSize)
	}

	numSets := cacheSize / setSize
	if !isPowerOfTwo(numSets) {
		return AddressLayout{}, fmt.Errorf(
			"%w: %d sets is not a power of two",
			ErrInvalidGeometry, numSets)
	}

	l := AddressLayout{
		width:      width,
		offsetBits: bits.TrailingZeros64(lineSize),
		setBits:    bits.TrailingZeros64(numSets),
	}
	l.tagBits = width - l.offsetBits - l.setBits

	if width > 64 || l.tagBits < 0 {
		return AddressLayout{}, fmt.Errorf(
			"%w: %d offset and %d set bits do not fit %d-bit addresses",
			ErrInvalidGeometry, l.offsetBits, l.setBits, width)
	}

	return l, nil
}

// MustNewAddressLayout is NewAddressLayout that panics on error.
func MustNewAddressLayout(
	cacheSize, lineSize uint64,
	associativity, width int,
) AddressLayout {
	l, err := NewAddressLayout(cacheSize, lineSize, associativity, width)
	if err != nil {
		panic(err)
	}

	return l
}

func isPowerOfTwo(n uint64) bool {
	return n != 0 && n&(n-1) == 0
}

// Width returns the address width in bits.
func (l AddressLayout) Width() int {
	return l.width
}

// OffsetBits returns the number of line offset bits.
func (l AddressLayout) OffsetBits() int {
	return l.offsetBits
}

// SetBits returns the number of set index bits.
func (l AddressLayout) SetBits() int {
	return l.setBits
}

// TagBits returns the number of tag bits.
func (l AddressLayout) TagBits() int {
	return l.tagBits
}

// NumSets returns the number of sets addressed by the set index.
func (l AddressLayout) NumSets() int {
	return 1 << l.setBits
}

// LineSize returns the line size in bytes.
func (l AddressLayout) LineSize() int {
	return 1 << l.offsetBits
}

// Decode splits an address into its fields. Bits above the address width are
// ignored.
func (l AddressLayout) Decode(addr uint64) Address {
	return Address{
		Offset: addr & mask(l.offsetBits),
		Set:    (addr >> l.offsetBits) & mask(l.setBits),
		Tag:    (addr >> (l.offsetBits + l.setBits)) & mask(l.tagBits),
	}
}

// Encode assembles an address from its fields.
func (l AddressLayout) Encode(a Address) uint64 {
	return (a.Tag&mask(l.tagBits))<<(l.offsetBits+l.setBits) |
		(a.Set&mask(l.setBits))<<l.offsetBits |
		a.Offset&mask(l.offsetBits)
}

// LineAddress clears the offset bits of addr.
func (l AddressLayout) LineAddress(addr uint64) uint64 {
	return addr &^ mask(l.offsetBits) & mask(l.width)
}

func mask(n int) uint64 {
	if n >= 64 {
		return ^uint64(0)
	}

	return (uint64(1) << n) - 1
}
