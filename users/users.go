package users

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"

	"github.com/jrsteele09/go-auth-broker/internal/utils"
)

// Wire names of the profile attributes the broker knows about.
const (
	fieldID        = "id"
	fieldUsername  = "username"
	fieldEmail     = "email"
	fieldFirstName = "first_name"
	fieldLastName  = "last_name"
	fieldName      = "name"
	fieldImage     = "image"
)

// Profile is the user record returned by the backend token service.
// The broker treats it as an attribute bag: attributes it does not know about
// are kept in Extra and written back unchanged. Attributes the backend did not
// send stay nil and are omitted when the profile is serialised.
type Profile struct {
	ID        json.RawMessage // Backend identifier exactly as sent (number, string or UUID)
	Username  string          // Login name, omitted when empty
	Email     *string         // Email address
	FirstName *string         // Given name
	LastName  *string         // Family name
	Name      *string         // Display name (federated providers)
	Image     *string         // Avatar URL (federated providers)

	Extra map[string]json.RawMessage // Unrecognised attributes, verbatim
}

// DisplayName returns the best human readable name for the profile.
func (p Profile) DisplayName() string {
	if name := utils.Value(p.Name); name != "" {
		return name
	}
	first, last := utils.Value(p.FirstName), utils.Value(p.LastName)
	switch {
	case first != "" && last != "":
		return first + " " + last
	case first != "":
		return first
	case last != "":
		return last
	}
	return p.Username
}

// IsZero reports whether the backend sent no attributes at all.
func (p Profile) IsZero() bool {
	return p.ID == nil && p.Username == "" && p.Email == nil && p.FirstName == nil &&
		p.LastName == nil && p.Name == nil && p.Image == nil && len(p.Extra) == 0
}

// Clone returns a deep copy so callers can never alias another claim's profile.
func (p Profile) Clone() Profile {
	c := Profile{
		ID:        bytes.Clone(p.ID),
		Username:  p.Username,
		Email:     utils.Clone(p.Email),
		FirstName: utils.Clone(p.FirstName),
		LastName:  utils.Clone(p.LastName),
		Name:      utils.Clone(p.Name),
		Image:     utils.Clone(p.Image),
	}
	if p.Extra != nil {
		c.Extra = make(map[string]json.RawMessage, len(p.Extra))
		for k, v := range p.Extra {
			c.Extra[k] = bytes.Clone(v)
		}
	}
	return c
}

// Equal compares two profiles attribute by attribute.
func (p Profile) Equal(o Profile) bool {
	a, errA := p.MarshalJSON()
	b, errB := o.MarshalJSON()
	return errA == nil && errB == nil && bytes.Equal(a, b)
}

// MarshalJSON writes known and extra attributes as a single object.
// encoding/json sorts map keys, so the output is stable for equal profiles.
func (p Profile) MarshalJSON() ([]byte, error) {
	fields := make(map[string]json.RawMessage, len(p.Extra)+7)
	maps.Copy(fields, p.Extra)

	set := func(key string, v any) error {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", key, err)
		}
		fields[key] = raw
		return nil
	}

	if p.ID != nil {
		fields[fieldID] = p.ID
	}
	if p.Username != "" {
		if err := set(fieldUsername, p.Username); err != nil {
			return nil, err
		}
	}
	optional := []struct {
		key   string
		value *string
	}{
		{fieldEmail, p.Email},
		{fieldFirstName, p.FirstName},
		{fieldLastName, p.LastName},
		{fieldName, p.Name},
		{fieldImage, p.Image},
	}
	for _, o := range optional {
		if o.value == nil {
			continue
		}
		if err := set(o.key, *o.value); err != nil {
			return nil, err
		}
	}
	return json.Marshal(fields)
}

// UnmarshalJSON reads a backend user object. JSON null is treated as absent.
func (p *Profile) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("decode user profile: %w", err)
	}

	*p = Profile{}
	for key, raw := range fields {
		if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			continue
		}
		var err error
		switch key {
		case fieldID:
			p.ID = bytes.Clone(raw)
		case fieldUsername:
			err = json.Unmarshal(raw, &p.Username)
		case fieldEmail:
			p.Email, err = decodeString(raw)
		case fieldFirstName:
			p.FirstName, err = decodeString(raw)
		case fieldLastName:
			p.LastName, err = decodeString(raw)
		case fieldName:
			p.Name, err = decodeString(raw)
		case fieldImage:
			p.Image, err = decodeString(raw)
		default:
			if p.Extra == nil {
				p.Extra = make(map[string]json.RawMessage)
			}
			p.Extra[key] = bytes.Clone(raw)
		}
		if err != nil {
			return fmt.Errorf("decode user profile field %q: %w", key, err)
		}
	}
	return nil
}

func decodeString(raw json.RawMessage) (*string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
