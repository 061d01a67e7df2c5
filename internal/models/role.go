package models

import "strings"

type Role string

const (
	RoleAdmin          Role = "admin"
	RoleDesignHead     Role = "design_head"
	RoleDesignLead     Role = "design_lead"
	RoleDesigner       Role = "designer"
	RoleAMHead         Role = "am_head"
	RoleAMLead         Role = "am_lead"
	RoleAccountManager Role = "account_manager"
	RoleGeneralManager Role = "general_manager"
	RoleMember         Role = "member"
)

type Team string

const (
	TeamDesign     Team = "Design"
	TeamAM         Team = "AM"
	TeamAccounts   Team = "Accounts"
	TeamCreative   Team = "Creative"
	TeamManagement Team = "Management"
)

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleDesignHead, RoleDesignLead, RoleDesigner,
		RoleAMHead, RoleAMLead, RoleAccountManager, RoleGeneralManager, RoleMember:
		return true
	}
	return false
}

// IsDesignSupervisor is true for design heads and leads.
func (r Role) IsDesignSupervisor() bool {
	return r == RoleDesignHead || r == RoleDesignLead
}

// IsAccountManager is true for every account-management role.
func (r Role) IsAccountManager() bool {
	return r == RoleAMHead || r == RoleAMLead || r == RoleAccountManager
}

// ParseRole maps a free-text role label such as "Design Lead", "design_head"
// or "AM" onto the closed role set. Unrecognized labels become RoleMember.
func ParseRole(label string) Role {
	if r := Role(strings.ToLower(strings.TrimSpace(label))); r.IsValid() {
		return r
	}

	normalized := strings.ToLower(label)
	normalized = strings.NewReplacer("_", " ", "-", " ").Replace(normalized)
	words := strings.Fields(normalized)
	normalized = strings.Join(words, " ")

	switch {
	case strings.Contains(normalized, "design head"):
		return RoleDesignHead
	case strings.Contains(normalized, "design lead"):
		return RoleDesignLead
	case strings.Contains(normalized, "design"):
		return RoleDesigner
	}

	hasWord := func(w string) bool {
		for _, word := range words {
			if word == w {
				return true
			}
		}
		return false
	}

	switch {
	case hasWord("admin"):
		return RoleAdmin
	case hasWord("am") && hasWord("head"):
		return RoleAMHead
	case hasWord("am") && hasWord("lead"):
		return RoleAMLead
	case hasWord("am") || strings.Contains(normalized, "account manager"):
		return RoleAccountManager
	case hasWord("gm") || strings.Contains(normalized, "general manager"):
		return RoleGeneralManager
	}
	return RoleMember
}
