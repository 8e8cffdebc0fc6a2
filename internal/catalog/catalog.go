// Package catalog provides the immutable two-role operator catalog.
//
// The catalog is loaded once at process start from an embedded definition and
// never mutated afterwards, so it needs no synchronization.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed operators.json
var operatorsJSON []byte

// Role identifies which side of the catalog an operator belongs to.
type Role string

const (
	// RoleAttacker marks operators on the attacking side.
	RoleAttacker Role = "attacker"
	// RoleDefender marks operators on the defending side.
	RoleDefender Role = "defender"
)

// Roles lists both catalog roles in display order.
var Roles = []Role{RoleAttacker, RoleDefender}

// Catalog is an ordered partition of operator names into two disjoint roles.
type Catalog struct {
	attackers []string
	defenders []string
	roles     map[string]Role
}

type definition struct {
	Attackers []string `json:"attackers"`
	Defenders []string `json:"defenders"`
}

// Load parses and validates the embedded operator definition.
func Load() (*Catalog, error) {
	var def definition
	if err := json.Unmarshal(operatorsJSON, &def); err != nil {
		return nil, fmt.Errorf("parse operator definition: %w", err)
	}
	return build(def.Attackers, def.Defenders)
}

// build assembles a catalog from two role lists, rejecting duplicates within
// or across roles.
func build(attackers, defenders []string) (*Catalog, error) {
	cat := &Catalog{
		attackers: append([]string(nil), attackers...),
		defenders: append([]string(nil), defenders...),
		roles:     make(map[string]Role, len(attackers)+len(defenders)),
	}
	for _, name := range attackers {
		if name == "" {
			return nil, fmt.Errorf("operator name is empty")
		}
		if _, ok := cat.roles[name]; ok {
			return nil, fmt.Errorf("duplicate operator %q", name)
		}
		cat.roles[name] = RoleAttacker
	}
	for _, name := range defenders {
		if name == "" {
			return nil, fmt.Errorf("operator name is empty")
		}
		if _, ok := cat.roles[name]; ok {
			return nil, fmt.Errorf("duplicate operator %q", name)
		}
		cat.roles[name] = RoleDefender
	}
	return cat, nil
}

// Contains reports whether name is a catalog operator.
func (c *Catalog) Contains(name string) bool {
	_, ok := c.roles[name]
	return ok
}

// RoleOf returns the role of a catalog operator.
func (c *Catalog) RoleOf(name string) (Role, bool) {
	role, ok := c.roles[name]
	return role, ok
}

// Size returns the total operator count across both roles.
func (c *Catalog) Size() int {
	return len(c.roles)
}

// RoleSize returns the operator count for one role.
func (c *Catalog) RoleSize(role Role) int {
	switch role {
	case RoleAttacker:
		return len(c.attackers)
	case RoleDefender:
		return len(c.defenders)
	default:
		return 0
	}
}

// Operators returns a copy of the ordered operator list for one role.
func (c *Catalog) Operators(role Role) []string {
	switch role {
	case RoleAttacker:
		return append([]string(nil), c.attackers...)
	case RoleDefender:
		return append([]string(nil), c.defenders...)
	default:
		return nil
	}
}
