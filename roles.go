package portal

// Role is the tagged union identifying which collection a principal
// belongs to. It doubles as the authorization role: the three kinds are
// disjoint and each maps to exactly one privilege set.
type Role string

const (
	// RoleJobSeeker can submit applications and manage its own profile.
	RoleJobSeeker Role = "job_seeker"
	// RoleRecruiter can post jobs and decide applications.
	RoleRecruiter Role = "recruiter"
	// RoleAdmin can do everything recruiters can, plus user administration.
	RoleAdmin Role = "admin"
)

// IsValid checks if the role is one of the three principal kinds.
func (r Role) IsValid() bool {
	switch r {
	case RoleJobSeeker, RoleRecruiter, RoleAdmin:
		return true
	default:
		return false
	}
}

// CanDecideApplications reports whether the role may approve or reject
// job applications.
func (r Role) CanDecideApplications() bool {
	return r == RoleRecruiter || r == RoleAdmin
}

// CanPostJobs reports whether the role may create job postings.
func (r Role) CanPostJobs() bool {
	return r == RoleRecruiter || r == RoleAdmin
}

// In reports membership in an allowed set.
func (r Role) In(allowed ...Role) bool {
	for _, a := range allowed {
		if r == a {
			return true
		}
	}
	return false
}

// AllRoles returns the three principal kinds.
func AllRoles() []Role {
	return []Role{RoleJobSeeker, RoleRecruiter, RoleAdmin}
}

// ParseRole safely parses a string into a Role.
func ParseRole(raw string) (Role, bool) {
	role := Role(raw)
	return role, role.IsValid()
}

// ParseRouteRole maps the role segment used by the HTTP surface
// (/api/:role/login) onto a Role. It accepts the spellings clients
// historically used.
func ParseRouteRole(segment string) (Role, bool) {
	switch segment {
	case "seeker", "seekers", "job-seeker", string(RoleJobSeeker):
		return RoleJobSeeker, true
	case "recruiter", "recruiters":
		return RoleRecruiter, true
	case "admin", "admins", "administrator":
		return RoleAdmin, true
	default:
		return "", false
	}
}
