// Package trustpolicy models IAM role trust policy documents
// (AssumeRolePolicyDocument) closely enough to answer one question - is a
// given principal already allowed to assume the role - and to append a new
// grant without disturbing anything else in the document.
package trustpolicy

import (
	"errors"
	"fmt"
)

const (
	// DefaultVersion is the policy language version used for brand new statements.
	DefaultVersion = "2012-10-17"
	// AssumeRoleAction is the STS action a trust policy statement must allow.
	AssumeRoleAction = "sts:AssumeRole"

	EffectAllow = "Allow"
	EffectDeny  = "Deny"
)

var (
	ErrEmptyDocument   = errors.New("empty trust policy document")
	ErrInvalidDocument = errors.New("invalid trust policy document")
)

// Document is an IAM trust policy. Version is carried through verbatim on
// every rewrite, Statement keeps its original order.
type Document struct {
	Version   string      `json:"Version"`
	Statement []Statement `json:"Statement"`
}

// Statement is a single trust policy statement.
type Statement struct {
	Sid       string         `json:"Sid,omitempty"`
	Effect    string         `json:"Effect"`
	Principal Principal      `json:"Principal"`
	Action    StringOrSlice  `json:"Action"`
	Condition ConditionBlock `json:"Condition,omitempty"`
}

// Principal is the Principal element of a statement. AWS accepts several
// shapes: the wildcard string "*", or an object keyed by AWS, Service or
// Federated whose values are a string or a list of strings.
type Principal struct {
	AWS       StringOrSlice `json:"AWS,omitempty"`
	Service   StringOrSlice `json:"Service,omitempty"`
	Federated StringOrSlice `json:"Federated,omitempty"`
	Wildcard  bool          `json:"-"`
}

// StringOrSlice holds AWS JSON fields that may be a string or []string.
type StringOrSlice []string

// ConditionBlock maps a condition operator to its key/values, e.g.
// {"StringEquals": {"sts:ExternalId": ["x"]}}. It is preserved untouched
// across document rewrites.
type ConditionBlock map[string]map[string]StringOrSlice

// Contains reports whether the slice holds value.
func (s StringOrSlice) Contains(value string) bool {
	for _, v := range s {
		if v == value {
			return true
		}
	}
	return false
}

// Validate checks the structural invariants that must hold before the
// document can be safely rewritten.
func (d *Document) Validate() error {
	if d.Version == "" {
		return fmt.Errorf("missing Version field, %w", ErrInvalidDocument)
	}
	for i, stmt := range d.Statement {
		if stmt.Effect != EffectAllow && stmt.Effect != EffectDeny {
			return fmt.Errorf("statement %d: Effect must be Allow or Deny, got %q, %w", i, stmt.Effect, ErrInvalidDocument)
		}
		if len(stmt.Action) == 0 {
			return fmt.Errorf("statement %d: missing Action field, %w", i, ErrInvalidDocument)
		}
	}
	return nil
}

// Covers reports whether arn is already permitted to assume the role, i.e.
// some existing Allow statement lists it as an AWS principal with an
// assume-role action.
func (d *Document) Covers(arn string) bool {
	for _, stmt := range d.Statement {
		if stmt.Effect != EffectAllow {
			continue
		}
		if !stmt.Action.Contains(AssumeRoleAction) {
			continue
		}
		if stmt.Principal.AWS.Contains(arn) {
			return true
		}
	}
	return false
}

// Grant appends a single Allow/AssumeRole statement for arn. Existing
// statements are never reordered or removed. Callers are expected to check
// Covers first, Grant itself does not deduplicate.
func (d *Document) Grant(arn string) {
	d.Statement = append(d.Statement, Statement{
		Effect:    EffectAllow,
		Principal: Principal{AWS: StringOrSlice{arn}},
		Action:    StringOrSlice{AssumeRoleAction},
	})
}
