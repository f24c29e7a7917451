package database

import (
	"database/sql"
	"fmt"
	"time"
)

// Table Structure:
//
// CREATE TABLE IF NOT EXISTS users (
// 	id CHAR(27) NOT NULL UNIQUE,
// 	email VARCHAR(255) NOT NULL UNIQUE,
// 	username VARCHAR(150) NOT NULL UNIQUE,
// 	password_hash VARCHAR(255) NOT NULL,
// 	first_name VARCHAR(150) NOT NULL DEFAULT '',
// 	last_name VARCHAR(150) NOT NULL DEFAULT '',
// 	phone_number VARCHAR(20) NOT NULL DEFAULT '',
// 	gender VARCHAR(10) NOT NULL DEFAULT '',
// 	date_of_birth DATE,
// 	role VARCHAR(50) NOT NULL DEFAULT 'jobseeker',
// 	is_active BOOLEAN NOT NULL DEFAULT TRUE,
// 	created_at TIMESTAMP NOT NULL,
// 	updated_at TIMESTAMP NOT NULL,
// 	PRIMARY KEY(id)
// );
//
// CREATE TABLE IF NOT EXISTS admin_profile (
// 	user_id CHAR(27) NOT NULL UNIQUE REFERENCES users(id),
// 	is_super_admin BOOLEAN NOT NULL DEFAULT FALSE,
// 	can_manage_users BOOLEAN NOT NULL DEFAULT TRUE,
// 	can_manage_jobs BOOLEAN NOT NULL DEFAULT TRUE,
// 	PRIMARY KEY(user_id)
// );
//
// CREATE TABLE IF NOT EXISTS jobseeker_profile (
// 	user_id CHAR(27) NOT NULL UNIQUE REFERENCES users(id),
// 	bio TEXT NOT NULL DEFAULT '',
// 	resume TEXT NOT NULL DEFAULT '',
// 	skills TEXT NOT NULL DEFAULT '',
// 	experience INTEGER NOT NULL DEFAULT 0,
// 	current_position VARCHAR(100) NOT NULL DEFAULT '',
// 	current_company VARCHAR(100) NOT NULL DEFAULT '',
// 	expected_salary NUMERIC(10,2),
// 	location VARCHAR(50) NOT NULL DEFAULT '',
// 	education TEXT NOT NULL DEFAULT '',
// 	linkedin_profile VARCHAR(255) NOT NULL DEFAULT '',
// 	github_profile VARCHAR(255) NOT NULL DEFAULT '',
// 	profile_completed BOOLEAN NOT NULL DEFAULT FALSE,
// 	PRIMARY KEY(user_id)
// );
//
// CREATE TABLE IF NOT EXISTS employer_profile (
// 	user_id CHAR(27) NOT NULL UNIQUE REFERENCES users(id),
// 	company VARCHAR(200) NOT NULL DEFAULT '',
// 	about_company TEXT NOT NULL DEFAULT '',
// 	company_website VARCHAR(255) NOT NULL DEFAULT '',
// 	industry VARCHAR(200) NOT NULL DEFAULT '',
// 	company_size INTEGER,
// 	location VARCHAR(50) NOT NULL DEFAULT '',
// 	is_verified BOOLEAN NOT NULL DEFAULT FALSE,
// 	contact_person VARCHAR(100) NOT NULL DEFAULT '',
// 	contact_email VARCHAR(255) NOT NULL DEFAULT '',
// 	PRIMARY KEY(user_id)
// );
//
// CREATE TABLE IF NOT EXISTS job (
// 	id SERIAL,
// 	employer_id CHAR(27) REFERENCES users(id),
// 	title VARCHAR(255) NOT NULL,
// 	slug VARCHAR(255) NOT NULL UNIQUE,
// 	description TEXT NOT NULL,
// 	company VARCHAR(255) NOT NULL,
// 	location VARCHAR(255) NOT NULL,
// 	employment_type VARCHAR(25) NOT NULL DEFAULT 'full_time',
// 	job_type VARCHAR(20) NOT NULL,
// 	experience_level VARCHAR(20) NOT NULL,
// 	experience INTEGER NOT NULL DEFAULT 0,
// 	salary_range VARCHAR(50) NOT NULL DEFAULT '',
// 	skills TEXT[] NOT NULL DEFAULT '{}',
// 	requirements TEXT[] NOT NULL DEFAULT '{}',
// 	benefits TEXT[] NOT NULL DEFAULT '{}',
// 	status VARCHAR(25) NOT NULL DEFAULT 'draft',
// 	is_active BOOLEAN NOT NULL DEFAULT TRUE,
// 	views INTEGER NOT NULL DEFAULT 0,
// 	applicants INTEGER NOT NULL DEFAULT 0,
// 	posted_date TIMESTAMP NOT NULL,
// 	expiry_date TIMESTAMP,
// 	PRIMARY KEY(id)
// );
// CREATE INDEX job_company_idx ON job (company);
// CREATE INDEX job_posted_date_idx ON job (posted_date);
//
// CREATE TABLE IF NOT EXISTS saved_job (
// 	user_id CHAR(27) NOT NULL REFERENCES users(id),
// 	job_id INTEGER NOT NULL REFERENCES job(id),
// 	created_at TIMESTAMP NOT NULL,
// 	PRIMARY KEY(user_id, job_id)
// );
//
// CREATE TABLE IF NOT EXISTS refresh_token (
// 	token CHAR(27) NOT NULL UNIQUE,
// 	token_hash BYTEA NOT NULL,
// 	user_id CHAR(27) NOT NULL REFERENCES users(id),
// 	created_at TIMESTAMP NOT NULL,
// 	expires_at TIMESTAMP NOT NULL,
// 	revoked BOOLEAN NOT NULL DEFAULT FALSE,
// 	PRIMARY KEY(token)
// );
// CREATE INDEX refresh_token_hash_idx ON refresh_token (token_hash);

func GetDbConn(databaseUser string, databasePassword string, databaseHost string, databasePort string, databaseName string, sslMode string) (*sql.DB, error) {
	databaseURL := fmt.Sprintf("postgres://%v:%v@%v:%v/%v?sslmode=%s",
		databaseUser,
		databasePassword,
		databaseHost,
		databasePort,
		databaseName,
		sslMode,
	)
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	err = db.Ping()
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(20)
	db.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}

// CloseDbConn closes db conn
func CloseDbConn(conn *sql.DB) {
	conn.Close()
}
