package sequence

import (
	"encoding/json"
	"errors"
	"fmt"

	"xdao.co/seqnet/xorname"
)

var (
	ErrPermissionsKind = errors.New("sequence: permissions do not match address visibility")
	ErrMissingOwner    = errors.New("sequence: owner is required")
)

// Data is a whole Sequence: its address, current owner, permissions and
// entries. It is also the descriptor carried by a create request.
type Data struct {
	Address     Address
	Owner       Owner
	Permissions Permissions
	Entries     []Entry
}

// Name returns the content name the Sequence is stored under.
func (d Data) Name() xorname.Name { return d.Address.Name }

// Validate checks the structural invariants of a new Sequence.
func (d Data) Validate() error {
	if d.Address.Kind != Public && d.Address.Kind != Private {
		return fmt.Errorf("sequence: invalid kind %d", uint8(d.Address.Kind))
	}
	if d.Owner.PublicKey.IsZero() {
		return ErrMissingOwner
	}
	if d.Permissions != nil && d.Permissions.Kind() != d.Address.Kind {
		return ErrPermissionsKind
	}
	return nil
}

type dataJSON struct {
	Address     Address              `json:"address"`
	Owner       Owner                `json:"owner"`
	Permissions *PermissionsEnvelope `json:"permissions,omitempty"`
	Entries     []Entry              `json:"entries,omitempty"`
}

func (d Data) MarshalJSON() ([]byte, error) {
	out := dataJSON{Address: d.Address, Owner: d.Owner, Entries: d.Entries}
	if d.Permissions != nil {
		env := WrapPermissions(d.Permissions)
		out.Permissions = &env
	}
	return json.Marshal(out)
}

func (d *Data) UnmarshalJSON(b []byte) error {
	var in dataJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	*d = Data{Address: in.Address, Owner: in.Owner, Entries: in.Entries}
	if in.Permissions != nil {
		p, err := in.Permissions.Unwrap()
		if err != nil {
			return err
		}
		d.Permissions = p
	}
	return nil
}
