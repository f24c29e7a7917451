package user

import (
	"strings"
	"time"
)

const (
	RoleAdmin     = "admin"
	RoleJobseeker = "jobseeker"
	RoleEmployer  = "employer"
)

var ValidRoles = map[string]struct{}{
	RoleAdmin:     {},
	RoleJobseeker: {},
	RoleEmployer:  {},
}

type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	FullName     string     `json:"full_name"`
	PhoneNumber  string     `json:"phone_number"`
	Gender       string     `json:"gender"`
	DateOfBirth  *time.Time `json:"date_of_birth,omitempty"`
	Role         string     `json:"role"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	AdminProfile     *AdminProfile     `json:"admin_profile,omitempty"`
	JobseekerProfile *JobseekerProfile `json:"jobseeker_profile,omitempty"`
	EmployerProfile  *EmployerProfile  `json:"employer_profile,omitempty"`
}

type AdminProfile struct {
	UserID         string `json:"user_id"`
	IsSuperAdmin   bool   `json:"is_super_admin"`
	CanManageUsers bool   `json:"can_manage_users"`
	CanManageJobs  bool   `json:"can_manage_jobs"`
}

type JobseekerProfile struct {
	UserID           string   `json:"user_id"`
	Bio              string   `json:"bio"`
	Resume           string   `json:"resume"`
	Skills           string   `json:"skills"`
	SkillsList       []string `json:"skills_list"`
	Experience       int      `json:"experience"`
	CurrentPosition  string   `json:"current_position"`
	CurrentCompany   string   `json:"current_company"`
	ExpectedSalary   *float64 `json:"expected_salary,omitempty"`
	Location         string   `json:"location"`
	Education        string   `json:"education"`
	LinkedinProfile  string   `json:"linkedin_profile"`
	GithubProfile    string   `json:"github_profile"`
	ProfileCompleted bool     `json:"profile_completed"`
}

type EmployerProfile struct {
	UserID         string `json:"user_id"`
	Company        string `json:"company"`
	AboutCompany   string `json:"about_company"`
	CompanyWebsite string `json:"company_website"`
	Industry       string `json:"industry"`
	CompanySize    *int   `json:"company_size,omitempty"`
	Location       string `json:"location"`
	IsVerified     bool   `json:"is_verified"`
	ContactPerson  string `json:"contact_person"`
	ContactEmail   string `json:"contact_email"`
}

// Derive fills the computed fields not stored in the database.
func (u *User) Derive() {
	u.FullName = strings.TrimSpace(u.FirstName + " " + u.LastName)
	if u.JobseekerProfile != nil {
		u.JobseekerProfile.SkillsList = SplitSkills(u.JobseekerProfile.Skills)
	}
}

// SplitSkills parses a comma separated skills string into a clean list.
func SplitSkills(skills string) []string {
	out := []string{}
	for _, skill := range strings.Split(skills, ",") {
		skill = strings.TrimSpace(skill)
		if skill != "" {
			out = append(out, skill)
		}
	}
	return out
}

// NormalizeSkills reformats a comma separated skills string with
// single-space separators and no empty entries.
func NormalizeSkills(skills string) string {
	return strings.Join(SplitSkills(skills), ", ")
}
