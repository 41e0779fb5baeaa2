package portal

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Principal is an authenticated identity from one of the three
// collections. Role() names the collection the record came from; the
// resolver guarantees it matches the token's principal-kind tag.
type Principal interface {
	ID() string
	Name() string
	Email() string
	Role() Role
	Active() bool
	CredentialHash() string
}

// JobSeeker is a candidate account.
type JobSeeker struct {
	bun.BaseModel `bun:"table:job_seekers,alias:jsk"`

	SeekerID        uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	FullName        string     `bun:"full_name,notnull" json:"full_name,omitempty"`
	EmailAddr       string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash    string     `bun:"password_hash,notnull" json:"-"`
	Phone           string     `bun:"phone" json:"phone,omitempty"`
	Headline        string     `bun:"headline" json:"headline,omitempty"`
	Skills          string     `bun:"skills" json:"skills,omitempty"`
	ExperienceYears int        `bun:"experience_years" json:"experience_years,omitempty"`
	IsActive        bool       `bun:"is_active,notnull,default:true" json:"is_active"`
	LastLoginAt     *time.Time `bun:"last_login_at,nullzero" json:"last_login_at,omitempty"`
	CreatedAt       *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt       *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

func (s *JobSeeker) ID() string             { return s.SeekerID.String() }
func (s *JobSeeker) Name() string           { return s.FullName }
func (s *JobSeeker) Email() string          { return s.EmailAddr }
func (s *JobSeeker) Role() Role             { return RoleJobSeeker }
func (s *JobSeeker) Active() bool           { return s.IsActive }
func (s *JobSeeker) CredentialHash() string { return s.PasswordHash }

// Recruiter is a company-side account.
type Recruiter struct {
	bun.BaseModel `bun:"table:recruiters,alias:rct"`

	RecruiterID    uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	FullName       string     `bun:"full_name,notnull" json:"full_name,omitempty"`
	EmailAddr      string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash   string     `bun:"password_hash,notnull" json:"-"`
	Mobile         string     `bun:"mobile" json:"mobile,omitempty"`
	CompanyName    string     `bun:"company_name" json:"company_name,omitempty"`
	CompanyWebsite string     `bun:"company_website" json:"company_website,omitempty"`
	CompanySize    string     `bun:"company_size" json:"company_size,omitempty"`
	Industry       string     `bun:"industry" json:"industry,omitempty"`
	IsActive       bool       `bun:"is_active,notnull,default:true" json:"is_active"`
	CreatedAt      *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt      *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

func (r *Recruiter) ID() string             { return r.RecruiterID.String() }
func (r *Recruiter) Name() string           { return r.FullName }
func (r *Recruiter) Email() string          { return r.EmailAddr }
func (r *Recruiter) Role() Role             { return RoleRecruiter }
func (r *Recruiter) Active() bool           { return r.IsActive }
func (r *Recruiter) CredentialHash() string { return r.PasswordHash }

// Administrator is a back-office account.
type Administrator struct {
	bun.BaseModel `bun:"table:administrators,alias:adm"`

	AdminID      uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	FullName     string     `bun:"full_name,notnull" json:"full_name,omitempty"`
	EmailAddr    string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash string     `bun:"password_hash,notnull" json:"-"`
	IsActive     bool       `bun:"is_active,notnull,default:true" json:"is_active"`
	CreatedAt    *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

func (a *Administrator) ID() string             { return a.AdminID.String() }
func (a *Administrator) Name() string           { return a.FullName }
func (a *Administrator) Email() string          { return a.EmailAddr }
func (a *Administrator) Role() Role             { return RoleAdmin }
func (a *Administrator) Active() bool           { return a.IsActive }
func (a *Administrator) CredentialHash() string { return a.PasswordHash }

// JobStatus is the posting lifecycle flag.
type JobStatus string

const (
	JobStatusOpen   JobStatus = "open"
	JobStatusClosed JobStatus = "closed"
)

// Job is a posting. The core reads it to check posting ownership and
// deadline validity; full posting CRUD lives with the recruiter/admin
// controllers.
type Job struct {
	bun.BaseModel `bun:"table:jobs,alias:job"`

	JobID        uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Title        string     `bun:"title,notnull" json:"title,omitempty"`
	Description  string     `bun:"description" json:"description,omitempty"`
	Location     string     `bun:"location" json:"location,omitempty"`
	SalaryRange  string     `bun:"salary_range" json:"salary_range,omitempty"`
	Status       JobStatus  `bun:"status,notnull,default:'open'" json:"status,omitempty"`
	Deadline     *time.Time `bun:"deadline,nullzero" json:"deadline,omitempty"`
	PostedByID   uuid.UUID  `bun:"posted_by_id,type:uuid,notnull" json:"posted_by_id,omitempty"`
	PostedByKind Role       `bun:"posted_by_kind,notnull" json:"posted_by_kind,omitempty"`
	CreatedAt    *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt    *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// AcceptsApplications reports whether a submission against this job is
// valid at the given instant.
func (j *Job) AcceptsApplications(now time.Time) bool {
	if j.Status != JobStatusOpen {
		return false
	}
	if j.Deadline != nil && now.After(*j.Deadline) {
		return false
	}
	return true
}

// ApplicationStatus is the application decision state.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

// IsValid checks the status is one of the known states.
func (s ApplicationStatus) IsValid() bool {
	switch s {
	case ApplicationPending, ApplicationApproved, ApplicationRejected:
		return true
	default:
		return false
	}
}

// IsDecision reports whether the status is a caller-settable decision.
// Transitioning into pending from outside is never valid.
func (s ApplicationStatus) IsDecision() bool {
	return s == ApplicationApproved || s == ApplicationRejected
}

// ParseApplicationStatus converts a raw string into a decision status.
func ParseApplicationStatus(raw string) (ApplicationStatus, bool) {
	s := ApplicationStatus(raw)
	return s, s.IsValid()
}

// Application is one submission of a job seeker against a job posting.
// Status is the only field mutated after creation.
type Application struct {
	bun.BaseModel `bun:"table:applications,alias:app"`

	ApplicationID   uuid.UUID         `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	JobID           uuid.UUID         `bun:"job_id,type:uuid,notnull" json:"job_id,omitempty"`
	ApplicantID     uuid.UUID         `bun:"applicant_id,type:uuid,notnull" json:"applicant_id,omitempty"`
	FullName        string            `bun:"full_name,notnull" json:"full_name,omitempty"`
	EmailAddr       string            `bun:"email,notnull" json:"email,omitempty"`
	Phone           string            `bun:"phone" json:"phone,omitempty"`
	LinkedinProfile string            `bun:"linkedin_profile" json:"linkedin_profile,omitempty"`
	PortfolioURL    string            `bun:"portfolio_url" json:"portfolio_url,omitempty"`
	NoticePeriod    string            `bun:"notice_period" json:"notice_period,omitempty"`
	CurrentSalary   string            `bun:"current_salary" json:"current_salary,omitempty"`
	ExpectedSalary  string            `bun:"expected_salary" json:"expected_salary,omitempty"`
	ResumeRef       string            `bun:"resume_ref,notnull" json:"resume_ref,omitempty"`
	CoverLetter     string            `bun:"cover_letter" json:"cover_letter,omitempty"`
	Status          ApplicationStatus `bun:"status,notnull,default:'pending'" json:"status,omitempty"`
	AppliedAt       *time.Time        `bun:"applied_at,nullzero,default:current_timestamp" json:"applied_at,omitempty"`
	DecidedAt       *time.Time        `bun:"decided_at,nullzero" json:"decided_at,omitempty"`
}

// EnsureStatus normalizes a zero-value status to pending.
func (a *Application) EnsureStatus() {
	if a.Status == "" {
		a.Status = ApplicationPending
	}
}

// PrincipalSummary is the wire-safe projection of a principal returned by
// login and registration. It never carries the password hash.
type PrincipalSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	Active bool   `json:"active"`
}

// NewPrincipalSummary builds the projection for any principal kind.
func NewPrincipalSummary(p Principal) PrincipalSummary {
	return PrincipalSummary{
		ID:     p.ID(),
		Name:   p.Name(),
		Email:  p.Email(),
		Role:   p.Role(),
		Active: p.Active(),
	}
}
