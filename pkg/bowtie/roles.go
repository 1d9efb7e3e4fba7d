package bowtie

import (
	"fmt"
	"strings"
)

// Role is the part a node plays in a bow-tie diagram.
type Role string

const (
	RoleLatent              Role = "latent"
	RoleCause               Role = "cause"
	RoleConsequence         Role = "consequence"
	RoleContext             Role = "context"
	RoleTopEvent            Role = "top event"
	RolePreventativeBarrier Role = "preventative barrier"
	RoleMitigationBarrier   Role = "mitigation barrier"
	RoleEscalatoryFactor    Role = "escalatory factor"
)

// Roles lists every diagram role in left-to-right reading order.
var Roles = []Role{
	RoleContext,
	RoleCause,
	RolePreventativeBarrier,
	RoleTopEvent,
	RoleMitigationBarrier,
	RoleEscalatoryFactor,
	RoleConsequence,
}

var roleCodes = map[Role]string{
	RoleLatent:              "rv",
	RoleCause:               "ca",
	RoleConsequence:         "co",
	RoleContext:             "con",
	RoleTopEvent:            "te",
	RolePreventativeBarrier: "pb",
	RoleMitigationBarrier:   "mb",
	RoleEscalatoryFactor:    "ef",
}

var roleTitles = map[Role]string{
	RoleLatent:              "Variable",
	RoleCause:               "Cause",
	RoleConsequence:         "Consequence",
	RoleContext:             "Context",
	RoleTopEvent:            "Top Event",
	RolePreventativeBarrier: "Preventative Barrier",
	RoleMitigationBarrier:   "Mitigation Barrier",
	RoleEscalatoryFactor:    "Escalatory Factor",
}

// Code is the short form used in scenario files, e.g. "pb".
func (r Role) Code() string {
	return roleCodes[r]
}

// Title is the heading shown on diagram labels.
func (r Role) Title() string {
	if t, ok := roleTitles[r]; ok {
		return t
	}
	return string(r)
}

// IsBarrier reports whether r is either barrier role.
func (r Role) IsBarrier() bool {
	return r == RolePreventativeBarrier || r == RoleMitigationBarrier
}

// ParseRole accepts a role name, its code or its title, case-insensitively.
func ParseRole(s string) (Role, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.ReplaceAll(key, "_", " ")
	key = strings.ReplaceAll(key, "-", " ")
	for role, code := range roleCodes {
		if key == string(role) || key == code || key == strings.ToLower(roleTitles[role]) {
			return role, nil
		}
	}
	// "topevent" and "preventativebarrier" style spellings
	compact := strings.ReplaceAll(key, " ", "")
	for role := range roleCodes {
		if compact == strings.ReplaceAll(string(role), " ", "") {
			return role, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", s)
}
