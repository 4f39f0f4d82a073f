package trustpolicy

import (
	"encoding/json"
	"fmt"
)

// Parse decodes a trust policy document from its JSON form, accepting the
// flexible AWS shapes for Principal and Action.
func Parse(data []byte) (*Document, error) {
	if len(data) == 0 {
		return nil, ErrEmptyDocument
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%s, %w", err, ErrInvalidDocument)
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}

	return &doc, nil
}

// Marshal encodes the document back to JSON for an UpdateAssumeRolePolicy
// call. Single-element string-or-slice values collapse back to plain strings
// so an untouched document round-trips into its familiar form.
func (d *Document) Marshal() ([]byte, error) {
	return json.Marshal(d)
}

// UnmarshalJSON accepts both a single string and an array of strings.
func (s *StringOrSlice) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = StringOrSlice{str}
		return nil
	}

	var arr []string
	if err := json.Unmarshal(data, &arr); err != nil {
		return fmt.Errorf("expected string or []string: %w", err)
	}
	*s = StringOrSlice(arr)
	return nil
}

// MarshalJSON emits a bare string for single values, an array otherwise.
func (s StringOrSlice) MarshalJSON() ([]byte, error) {
	if len(s) == 1 {
		return json.Marshal(s[0])
	}
	return json.Marshal([]string(s))
}

type principalAlias struct {
	AWS       StringOrSlice `json:"AWS,omitempty"`
	Service   StringOrSlice `json:"Service,omitempty"`
	Federated StringOrSlice `json:"Federated,omitempty"`
}

// UnmarshalJSON accepts the wildcard form "*" as well as the keyed object form.
func (p *Principal) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		if str == "*" {
			p.Wildcard = true
			return nil
		}
		return fmt.Errorf("principal string must be %q, got %q", "*", str)
	}

	var obj principalAlias
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("expected principal as \"*\" or object: %w", err)
	}

	p.AWS = obj.AWS
	p.Service = obj.Service
	p.Federated = obj.Federated
	p.Wildcard = false
	return nil
}

func (p Principal) MarshalJSON() ([]byte, error) {
	if p.Wildcard {
		return json.Marshal("*")
	}
	return json.Marshal(principalAlias{
		AWS:       p.AWS,
		Service:   p.Service,
		Federated: p.Federated,
	})
}
