package portal_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	portal "github.com/hiredesk/portal"
)

func TestRoleIsValid(t *testing.T) {
	for _, r := range portal.AllRoles() {
		assert.True(t, r.IsValid(), "role %q", r)
	}

	assert.False(t, portal.Role("").IsValid())
	assert.False(t, portal.Role("ghost").IsValid())
	assert.False(t, portal.Role("Admin").IsValid())
}

func TestRoleCapabilities(t *testing.T) {
	assert.False(t, portal.RoleJobSeeker.CanDecideApplications())
	assert.True(t, portal.RoleRecruiter.CanDecideApplications())
	assert.True(t, portal.RoleAdmin.CanDecideApplications())

	assert.False(t, portal.RoleJobSeeker.CanPostJobs())
	assert.True(t, portal.RoleRecruiter.CanPostJobs())
	assert.True(t, portal.RoleAdmin.CanPostJobs())
}

func TestParseRole(t *testing.T) {
	role, ok := portal.ParseRole("recruiter")
	assert.True(t, ok)
	assert.Equal(t, portal.RoleRecruiter, role)

	_, ok = portal.ParseRole("superuser")
	assert.False(t, ok)
}

func TestParseRouteRole(t *testing.T) {
	cases := map[string]portal.Role{
		"seeker":     portal.RoleJobSeeker,
		"seekers":    portal.RoleJobSeeker,
		"job-seeker": portal.RoleJobSeeker,
		"job_seeker": portal.RoleJobSeeker,
		"recruiter":  portal.RoleRecruiter,
		"recruiters": portal.RoleRecruiter,
		"admin":      portal.RoleAdmin,
		"admins":     portal.RoleAdmin,
	}

	for segment, want := range cases {
		got, ok := portal.ParseRouteRole(segment)
		assert.True(t, ok, "segment %q", segment)
		assert.Equal(t, want, got, "segment %q", segment)
	}

	for _, segment := range []string{"", "users", "Admin"} {
		_, ok := portal.ParseRouteRole(segment)
		assert.False(t, ok, "segment %q", segment)
	}
}
