package sequence

import (
	"errors"

	"xdao.co/seqnet/keys"
)

// Permissions is the access-control set of a Sequence. It is implemented by
// PubPermissions and PrivPermissions only.
type Permissions interface {
	Kind() Kind
	// ForUser returns the entry for one user. Private sets only hold keys,
	// so Anyone never matches there.
	ForUser(u User) (UserPermissions, bool)
	isPermissions()
}

// UserPermissions is the set granted to one user. It is implemented by
// PubUserPermissions and PrivUserPermissions only.
type UserPermissions interface {
	Kind() Kind
	isUserPermissions()
}

type PubUserPermissions struct {
	Append bool `json:"append"`
	Admin  bool `json:"admin"`
}

func (PubUserPermissions) Kind() Kind          { return Public }
func (PubUserPermissions) isUserPermissions() {}

type PrivUserPermissions struct {
	Read   bool `json:"read"`
	Append bool `json:"append"`
	Admin  bool `json:"admin"`
}

func (PrivUserPermissions) Kind() Kind          { return Private }
func (PrivUserPermissions) isUserPermissions() {}

// PubPermissions is keyed by User so that Anyone can be granted rights.
type PubPermissions struct {
	Entries      map[User]PubUserPermissions `json:"entries"`
	EntriesIndex uint64                      `json:"entries_index"`
	OwnersIndex  uint64                      `json:"owners_index"`
}

func (PubPermissions) Kind() Kind      { return Public }
func (PubPermissions) isPermissions() {}

func (p PubPermissions) ForUser(u User) (UserPermissions, bool) {
	up, ok := p.Entries[u]
	if !ok {
		return nil, false
	}
	return up, true
}

// CanAppend checks the key's own entry first and falls back to Anyone.
func (p PubPermissions) CanAppend(k keys.PublicKey) bool {
	if up, ok := p.Entries[UserKey(k)]; ok {
		return up.Append
	}
	return p.Entries[Anyone()].Append
}

func (p PubPermissions) IsAdmin(k keys.PublicKey) bool {
	if up, ok := p.Entries[UserKey(k)]; ok {
		return up.Admin
	}
	return p.Entries[Anyone()].Admin
}

type PrivPermissions struct {
	Entries      map[keys.PublicKey]PrivUserPermissions `json:"entries"`
	EntriesIndex uint64                                  `json:"entries_index"`
	OwnersIndex  uint64                                  `json:"owners_index"`
}

func (PrivPermissions) Kind() Kind      { return Private }
func (PrivPermissions) isPermissions() {}

func (p PrivPermissions) ForUser(u User) (UserPermissions, bool) {
	k, ok := u.Key()
	if !ok {
		return nil, false
	}
	up, ok := p.Entries[k]
	if !ok {
		return nil, false
	}
	return up, true
}

func (p PrivPermissions) CanRead(k keys.PublicKey) bool   { return p.Entries[k].Read }
func (p PrivPermissions) CanAppend(k keys.PublicKey) bool { return p.Entries[k].Append }
func (p PrivPermissions) IsAdmin(k keys.PublicKey) bool   { return p.Entries[k].Admin }

var errNoPermissions = errors.New("sequence: permissions envelope holds neither public nor private set")

// PermissionsEnvelope is the JSON form of a Permissions value.
type PermissionsEnvelope struct {
	Public  *PubPermissions  `json:"public,omitempty"`
	Private *PrivPermissions `json:"private,omitempty"`
}

// WrapPermissions returns the envelope for p. A nil p yields an empty envelope.
func WrapPermissions(p Permissions) PermissionsEnvelope {
	switch v := p.(type) {
	case PubPermissions:
		return PermissionsEnvelope{Public: &v}
	case PrivPermissions:
		return PermissionsEnvelope{Private: &v}
	default:
		return PermissionsEnvelope{}
	}
}

func (e PermissionsEnvelope) Unwrap() (Permissions, error) {
	switch {
	case e.Public != nil && e.Private == nil:
		return *e.Public, nil
	case e.Private != nil && e.Public == nil:
		return *e.Private, nil
	default:
		return nil, errNoPermissions
	}
}

// UserPermissionsEnvelope is the JSON form of a UserPermissions value.
type UserPermissionsEnvelope struct {
	Public  *PubUserPermissions  `json:"public,omitempty"`
	Private *PrivUserPermissions `json:"private,omitempty"`
}

func WrapUserPermissions(p UserPermissions) UserPermissionsEnvelope {
	switch v := p.(type) {
	case PubUserPermissions:
		return UserPermissionsEnvelope{Public: &v}
	case PrivUserPermissions:
		return UserPermissionsEnvelope{Private: &v}
	default:
		return UserPermissionsEnvelope{}
	}
}

func (e UserPermissionsEnvelope) Unwrap() (UserPermissions, error) {
	switch {
	case e.Public != nil && e.Private == nil:
		return *e.Public, nil
	case e.Private != nil && e.Public == nil:
		return *e.Private, nil
	default:
		return nil, errNoPermissions
	}
}
