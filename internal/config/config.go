package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

type Config struct {
	Port             string
	DatabaseUser     string
	DatabasePassword string
	DatabaseHost     string
	DatabasePort     string
	DatabaseName     string
	DatabaseSSLMode  string
	JwtSigningKey    []byte
	Env              string        // either prod or dev, disables a few security headers on dev
	JobsPerPage      int           // default page size for job listings
	MaxJobsPerPage   int           // hard cap on caller-provided page_size
	AccessTokenTTL   time.Duration // lifetime of issued access tokens
	RefreshTokenTTL  time.Duration // lifetime of issued refresh tokens
	StatsCacheTTL    time.Duration // how long aggregated stats responses are cached
}

func LoadConfig() (Config, error) {
	port := os.Getenv("PORT")
	if port == "" {
		return Config{}, fmt.Errorf("PORT cannot be empty")
	}
	databaseUser := os.Getenv("DATABASE_USER")
	if databaseUser == "" {
		return Config{}, fmt.Errorf("DATABASE_USER cannot be empty")
	}
	databasePassword := os.Getenv("DATABASE_PASSWORD")
	if databasePassword == "" {
		return Config{}, fmt.Errorf("DATABASE_PASSWORD cannot be empty")
	}
	databaseHost := os.Getenv("DATABASE_HOST")
	if databaseHost == "" {
		return Config{}, fmt.Errorf("DATABASE_HOST cannot be empty")
	}
	databasePort := os.Getenv("DATABASE_PORT")
	if databasePort == "" {
		return Config{}, fmt.Errorf("DATABASE_PORT cannot be empty")
	}
	databaseName := os.Getenv("DATABASE_NAME")
	if databaseName == "" {
		return Config{}, fmt.Errorf("DATABASE_NAME cannot be empty")
	}
	databaseSSLMode := os.Getenv("DATABASE_SSL_MODE")
	if databaseSSLMode == "" {
		return Config{}, fmt.Errorf("DATABASE_SSL_MODE cannot be empty")
	}
	env := strings.ToLower(os.Getenv("ENV"))
	if env == "" {
		return Config{}, fmt.Errorf("ENV cannot be empty")
	}
	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		return Config{}, fmt.Errorf("JWT_SIGNING_KEY cannot be empty")
	}
	jwtSigningKeyBytes, err := base64.StdEncoding.DecodeString(jwtSigningKey)
	if err != nil {
		return Config{}, errors.Wrapf(err, "unable to decode jwt signing key to bytes")
	}
	accessTokenTTL := 15 * time.Minute
	if v := os.Getenv("ACCESS_TOKEN_TTL_MINUTES"); v != "" {
		minutes, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, errors.Wrap(err, "unable to convert access token ttl to int")
		}
		accessTokenTTL = time.Duration(minutes) * time.Minute
	}
	refreshTokenTTL := 7 * 24 * time.Hour
	if v := os.Getenv("REFRESH_TOKEN_TTL_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, errors.Wrap(err, "unable to convert refresh token ttl to int")
		}
		refreshTokenTTL = time.Duration(days) * 24 * time.Hour
	}

	return Config{
		Port:             port,
		DatabaseUser:     databaseUser,
		DatabasePassword: databasePassword,
		DatabaseHost:     databaseHost,
		DatabasePort:     databasePort,
		DatabaseName:     databaseName,
		DatabaseSSLMode:  databaseSSLMode,
		JwtSigningKey:    jwtSigningKeyBytes,
		Env:              env,
		JobsPerPage:      20,
		MaxJobsPerPage:   100,
		AccessTokenTTL:   accessTokenTTL,
		RefreshTokenTTL:  refreshTokenTTL,
		StatsCacheTTL:    5 * time.Minute,
	}, nil
}
