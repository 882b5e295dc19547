package core

import (
	"fmt"
	"strings"
)

// LegacyPersonal is the contract id older backups use to tag living expenses.
const LegacyPersonal = "personal"

// Scope says whether an expense belongs to a contract or to the household.
// The zero Scope is invalid.
type Scope struct {
	contractID string
	personal   bool
}

func BusinessScope(contractID string) Scope {
	return Scope{contractID: strings.TrimSpace(contractID)}
}

func PersonalScope() Scope {
	return Scope{personal: true}
}

// ScopeFromLegacy maps a stored contract id, where "personal" marks a living expense.
func ScopeFromLegacy(contractID string) Scope {
	if contractID == LegacyPersonal {
		return PersonalScope()
	}
	return BusinessScope(contractID)
}

func (s Scope) IsPersonal() bool { return s.personal }

// ContractID is empty for personal expenses.
func (s Scope) ContractID() string { return s.contractID }

// BelongsTo reports whether the expense is charged to the given contract.
func (s Scope) BelongsTo(contractID string) bool {
	return !s.personal && s.contractID != "" && s.contractID == contractID
}

// Legacy returns the stored form: the contract id or "personal".
func (s Scope) Legacy() string {
	if s.personal {
		return LegacyPersonal
	}
	return s.contractID
}

func (s Scope) Validate() error {
	if !s.personal && s.contractID == "" {
		return fmt.Errorf("%w: expense needs a contract or personal scope", ErrMissingReference)
	}
	return nil
}

func (s Scope) String() string { return s.Legacy() }
