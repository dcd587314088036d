package domain

// Role is the single role a user holds at any moment. The hierarchy is
// non-linear: super_admin > chapter_admin > executive > member, while
// industry_partner sits outside that chain with its own global surface.
type Role string

const (
	RoleSuperAdmin      Role = "super_admin"
	RoleChapterAdmin    Role = "chapter_admin"
	RoleExecutive       Role = "executive"
	RoleMember          Role = "member"
	RoleIndustryPartner Role = "industry_partner"
)

// Roles lists every valid role.
var Roles = []Role{
	RoleSuperAdmin,
	RoleChapterAdmin,
	RoleExecutive,
	RoleMember,
	RoleIndustryPartner,
}

// ParseRole validates a raw role string.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	switch r {
	case RoleSuperAdmin, RoleChapterAdmin, RoleExecutive, RoleMember, RoleIndustryPartner:
		return r, true
	}
	return "", false
}

func (r Role) String() string { return string(r) }

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

// Global reports whether the role is chapter-independent. Global roles are
// the only ones allowed to exist without a chapter.
func (r Role) Global() bool {
	return r == RoleSuperAdmin || r == RoleIndustryPartner
}

// Capability predicates. All permissions derive from the role; none are
// stored independently, so they can never desynchronize.

func (r Role) IsSuperAdmin() bool { return r == RoleSuperAdmin }

func (r Role) IsChapterAdmin() bool {
	return r == RoleChapterAdmin || r == RoleSuperAdmin
}

func (r Role) IsExecutiveOrHigher() bool {
	return r == RoleExecutive || r == RoleChapterAdmin || r == RoleSuperAdmin
}

func (r Role) HasGlobalAccess() bool {
	return r == RoleSuperAdmin || r == RoleIndustryPartner
}

func (r Role) HasCrossChapterAccess() bool {
	return r == RoleSuperAdmin || r == RoleIndustryPartner
}

func (r Role) CanManageResearch() bool {
	return r == RoleExecutive || r == RoleChapterAdmin || r == RoleSuperAdmin || r == RoleIndustryPartner
}

func (r Role) CanManageEvents() bool {
	return r == RoleExecutive || r == RoleChapterAdmin || r == RoleSuperAdmin
}

func (r Role) CanManageCourses() bool {
	return r == RoleChapterAdmin || r == RoleSuperAdmin || r == RoleIndustryPartner
}

func (r Role) HasAnalyticsAccess() bool {
	return r == RoleChapterAdmin || r == RoleSuperAdmin
}

// PermissionFlags is the derived permission set returned to clients on login
// and profile reads. Computed, never persisted.
type PermissionFlags struct {
	CanManageChapter        bool `json:"canManageChapter"`
	CanManageUsers          bool `json:"canManageUsers"`
	CanManageResearch       bool `json:"canManageResearch"`
	CanManageEvents         bool `json:"canManageEvents"`
	CanAccessGlobalFeatures bool `json:"canAccessGlobalFeatures"`
}

// Permissions derives the client-facing permission flags from the role.
func (r Role) Permissions() PermissionFlags {
	return PermissionFlags{
		CanManageChapter:        r.IsChapterAdmin(),
		CanManageUsers:          r.IsChapterAdmin(),
		CanManageResearch:       r.CanManageResearch(),
		CanManageEvents:         r.CanManageEvents(),
		CanAccessGlobalFeatures: r.HasGlobalAccess(),
	}
}
