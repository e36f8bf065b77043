package xorname

import (
	"errors"
	"strings"
)

// Prefix identifies a section of the name space by its leading bits.
//
// The zero Prefix has no bits and matches every name.
type Prefix struct {
	bits Name
	len  int
}

// NewPrefix returns the prefix of the first bitLen bits of name.
func NewPrefix(name Name, bitLen int) Prefix {
	if bitLen < 0 {
		bitLen = 0
	}
	if bitLen > Len*8 {
		bitLen = Len * 8
	}
	p := Prefix{len: bitLen}
	for i := 0; i < bitLen; i++ {
		if name.Bit(i) {
			p.bits[i/8] |= 0x80 >> uint(i%8)
		}
	}
	return p
}

// ParsePrefix parses a string of '0' and '1' characters. The empty string is
// the root prefix.
func ParsePrefix(s string) (Prefix, error) {
	if len(s) > Len*8 {
		return Prefix{}, errors.New("xorname: prefix too long")
	}
	p := Prefix{len: len(s)}
	for i, c := range s {
		switch c {
		case '0':
		case '1':
			p.bits[i/8] |= 0x80 >> uint(i%8)
		default:
			return Prefix{}, errors.New("xorname: prefix must be a binary string")
		}
	}
	return p, nil
}

// BitLen returns the number of significant bits.
func (p Prefix) BitLen() int { return p.len }

// Matches reports whether name falls within p.
func (p Prefix) Matches(name Name) bool {
	for i := 0; i < p.len; i++ {
		if name.Bit(i) != p.bits.Bit(i) {
			return false
		}
	}
	return true
}

// Responsible implements dispatch.Router.
func (p Prefix) Responsible(name Name) bool { return p.Matches(name) }

func (p Prefix) String() string {
	var sb strings.Builder
	sb.WriteString("Prefix(")
	for i := 0; i < p.len; i++ {
		if p.bits.Bit(i) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	sb.WriteByte(')')
	return sb.String()
}
