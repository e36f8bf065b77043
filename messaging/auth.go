package messaging

import "fmt"

// AuthorisationKind is the capability a request requires. Deciding whether a
// principal holds it is left to the authorization engine.
type AuthorisationKind uint8

const (
	PublicRead AuthorisationKind = iota + 1
	PrivateRead
	Write
)

func (k AuthorisationKind) String() string {
	switch k {
	case PublicRead:
		return "PublicRead"
	case PrivateRead:
		return "PrivateRead"
	case Write:
		return "Write"
	default:
		return fmt.Sprintf("AuthorisationKind(%d)", uint8(k))
	}
}
