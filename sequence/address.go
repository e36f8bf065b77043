package sequence

import (
	"fmt"

	"xdao.co/seqnet/xorname"
)

// Kind is the visibility of a Sequence.
type Kind uint8

const (
	Public Kind = iota + 1
	Private
)

func (k Kind) String() string {
	switch k {
	case Public:
		return "public"
	case Private:
		return "private"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	switch k {
	case Public, Private:
		return []byte(k.String()), nil
	default:
		return nil, fmt.Errorf("sequence: invalid kind %d", uint8(k))
	}
}

func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "public":
		*k = Public
	case "private":
		*k = Private
	default:
		return fmt.Errorf("sequence: invalid kind %q", string(b))
	}
	return nil
}

// Address identifies one Sequence instance. Two Sequences with the same name
// and tag but different visibility are different Sequences.
type Address struct {
	Kind Kind         `json:"kind"`
	Name xorname.Name `json:"name"`
	Tag  uint64       `json:"tag"`
}

func PublicAddress(name xorname.Name, tag uint64) Address {
	return Address{Kind: Public, Name: name, Tag: tag}
}

func PrivateAddress(name xorname.Name, tag uint64) Address {
	return Address{Kind: Private, Name: name, Tag: tag}
}

// IsPub reports whether the address refers to a public Sequence.
func (a Address) IsPub() bool { return a.Kind == Public }

func (a Address) String() string {
	return fmt.Sprintf("%s/%s/%d", a.Kind, a.Name.Short(), a.Tag)
}
