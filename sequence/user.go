package sequence

import (
	"xdao.co/seqnet/keys"
)

const anyoneText = "anyone"

// User is a principal in a public permission set: either a specific key or
// the catch-all Anyone.
type User struct {
	key keys.PublicKey
}

func Anyone() User { return User{} }

func UserKey(k keys.PublicKey) User { return User{key: k} }

// IsAnyone reports whether u is the catch-all principal.
func (u User) IsAnyone() bool { return u.key.IsZero() }

// Key returns the user's key. ok is false for Anyone.
func (u User) Key() (keys.PublicKey, bool) {
	return u.key, !u.key.IsZero()
}

func (u User) String() string {
	if u.IsAnyone() {
		return anyoneText
	}
	return u.key.String()
}

func (u User) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

func (u *User) UnmarshalText(b []byte) error {
	if string(b) == anyoneText {
		*u = Anyone()
		return nil
	}
	k, err := keys.Parse(string(b))
	if err != nil {
		return err
	}
	*u = UserKey(k)
	return nil
}

// Owner is the principal allowed to perform owner-gated actions, together
// with the Sequence lengths at the time ownership was assigned.
type Owner struct {
	PublicKey        keys.PublicKey `json:"public_key"`
	EntriesIndex     uint64         `json:"entries_index"`
	PermissionsIndex uint64         `json:"permissions_index"`
}
