package user

import (
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/ksuid"
)

const userCols = `id, email, username, password_hash, first_name, last_name, phone_number, gender, date_of_birth, role, is_active, created_at, updated_at`

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db}
}

// SaveUser inserts the user row and its role profile in one
// transaction so a half-registered account can never be observed.
func (r *Repository) SaveUser(u *User) error {
	userID, err := ksuid.NewRandom()
	if err != nil {
		return errors.Wrap(err, "unable to generate user id")
	}
	u.ID = userID.String()
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	u.IsActive = true

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	_, err = tx.Exec(
		`INSERT INTO users (id, email, username, password_hash, first_name, last_name, phone_number, gender, date_of_birth, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, TRUE, $11, $12)`,
		u.ID,
		u.Email,
		u.Username,
		u.PasswordHash,
		u.FirstName,
		u.LastName,
		u.PhoneNumber,
		u.Gender,
		u.DateOfBirth,
		u.Role,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		tx.Rollback()
		return err
	}
	switch u.Role {
	case RoleAdmin:
		_, err = tx.Exec(`INSERT INTO admin_profile (user_id) VALUES ($1)`, u.ID)
	case RoleEmployer:
		_, err = tx.Exec(`INSERT INTO employer_profile (user_id) VALUES ($1)`, u.ID)
	default:
		_, err = tx.Exec(`INSERT INTO jobseeker_profile (user_id) VALUES ($1)`, u.ID)
	}
	if err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (r *Repository) UserByID(userID string) (*User, error) {
	return r.userByQuery(`SELECT `+userCols+` FROM users WHERE id = $1`, userID)
}

func (r *Repository) UserByEmail(email string) (*User, error) {
	return r.userByQuery(`SELECT `+userCols+` FROM users WHERE lower(email) = lower($1)`, email)
}

func (r *Repository) EmailExists(email string) (bool, error) {
	var count int
	err := r.db.QueryRow(`SELECT count(*) FROM users WHERE lower(email) = lower($1)`, email).Scan(&count)
	return count > 0, err
}

func (r *Repository) UsernameExists(username string) (bool, error) {
	var count int
	err := r.db.QueryRow(`SELECT count(*) FROM users WHERE lower(username) = lower($1)`, username).Scan(&count)
	return count > 0, err
}

func (r *Repository) UpdatePassword(userID, passwordHash string) error {
	_, err := r.db.Exec(
		`UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`,
		passwordHash, time.Now().UTC(), userID)
	return err
}

// UpdateUserDetails writes the caller-editable account columns.
func (r *Repository) UpdateUserDetails(u *User) error {
	_, err := r.db.Exec(
		`UPDATE users SET first_name = $1, last_name = $2, phone_number = $3, gender = $4, date_of_birth = $5, updated_at = $6 WHERE id = $7`,
		u.FirstName,
		u.LastName,
		u.PhoneNumber,
		u.Gender,
		u.DateOfBirth,
		time.Now().UTC(),
		u.ID,
	)
	return err
}

func (r *Repository) UpdateJobseekerProfile(p *JobseekerProfile) error {
	_, err := r.db.Exec(
		`UPDATE jobseeker_profile SET bio = $1, resume = $2, skills = $3, experience = $4, current_position = $5, current_company = $6, expected_salary = $7, location = $8, education = $9, linkedin_profile = $10, github_profile = $11, profile_completed = $12 WHERE user_id = $13`,
		p.Bio,
		p.Resume,
		NormalizeSkills(p.Skills),
		p.Experience,
		p.CurrentPosition,
		p.CurrentCompany,
		p.ExpectedSalary,
		p.Location,
		p.Education,
		p.LinkedinProfile,
		p.GithubProfile,
		p.ProfileCompleted,
		p.UserID,
	)
	return err
}

func (r *Repository) UpdateEmployerProfile(p *EmployerProfile) error {
	_, err := r.db.Exec(
		`UPDATE employer_profile SET company = $1, about_company = $2, company_website = $3, industry = $4, company_size = $5, location = $6, contact_person = $7, contact_email = $8 WHERE user_id = $9`,
		p.Company,
		p.AboutCompany,
		p.CompanyWebsite,
		p.Industry,
		p.CompanySize,
		p.Location,
		p.ContactPerson,
		p.ContactEmail,
		p.UserID,
	)
	return err
}

func (r *Repository) userByQuery(query string, args ...interface{}) (*User, error) {
	u := &User{}
	var dateOfBirth sql.NullTime
	err := r.db.QueryRow(query, args...).Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&u.PhoneNumber,
		&u.Gender,
		&dateOfBirth,
		&u.Role,
		&u.IsActive,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if dateOfBirth.Valid {
		u.DateOfBirth = &dateOfBirth.Time
	}
	if err := r.loadProfile(u); err != nil {
		return nil, err
	}
	u.Derive()
	return u, nil
}

func (r *Repository) loadProfile(u *User) error {
	switch u.Role {
	case RoleAdmin:
		p := &AdminProfile{}
		err := r.db.QueryRow(
			`SELECT user_id, is_super_admin, can_manage_users, can_manage_jobs FROM admin_profile WHERE user_id = $1`,
			u.ID).Scan(&p.UserID, &p.IsSuperAdmin, &p.CanManageUsers, &p.CanManageJobs)
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return err
		}
		u.AdminProfile = p
	case RoleEmployer:
		p := &EmployerProfile{}
		var companySize sql.NullInt64
		err := r.db.QueryRow(
			`SELECT user_id, company, about_company, company_website, industry, company_size, location, is_verified, contact_person, contact_email FROM employer_profile WHERE user_id = $1`,
			u.ID).Scan(
			&p.UserID,
			&p.Company,
			&p.AboutCompany,
			&p.CompanyWebsite,
			&p.Industry,
			&companySize,
			&p.Location,
			&p.IsVerified,
			&p.ContactPerson,
			&p.ContactEmail,
		)
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return err
		}
		if companySize.Valid {
			size := int(companySize.Int64)
			p.CompanySize = &size
		}
		u.EmployerProfile = p
	default:
		p := &JobseekerProfile{}
		var expectedSalary sql.NullFloat64
		err := r.db.QueryRow(
			`SELECT user_id, bio, resume, skills, experience, current_position, current_company, expected_salary, location, education, linkedin_profile, github_profile, profile_completed FROM jobseeker_profile WHERE user_id = $1`,
			u.ID).Scan(
			&p.UserID,
			&p.Bio,
			&p.Resume,
			&p.Skills,
			&p.Experience,
			&p.CurrentPosition,
			&p.CurrentCompany,
			&expectedSalary,
			&p.Location,
			&p.Education,
			&p.LinkedinProfile,
			&p.GithubProfile,
			&p.ProfileCompleted,
		)
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return err
		}
		if expectedSalary.Valid {
			p.ExpectedSalary = &expectedSalary.Float64
		}
		u.JobseekerProfile = p
	}
	return nil
}
