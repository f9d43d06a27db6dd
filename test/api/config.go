/*
Copyright 2026 the GoShop Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

//nolint:err113 // dynamic errors acceptable in test code
package api

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"
)

const (
	DefaultBaseURL       = "http://localhost:8080"
	DefaultAdminEmail    = "admin@example.com"
	DefaultAdminPassword = "admin123"
)

type TestConfig struct {
	BaseURL string
	// AuthToken is attached to every request made by clients built from
	// this config unless overridden per client or per request.
	AuthToken string
	// AdminEmail and AdminPassword are the fixed admin credential used by
	// the admin token fixture.
	AdminEmail    string
	AdminPassword string
	// AdminToken short circuits the admin login when set.
	AdminToken string
	// AdminDatabaseURL enables bootstrapping the admin directly in the
	// database when login with the admin credential fails.
	AdminDatabaseURL  string
	RequestTimeout    time.Duration
	SkipIntegration   bool
	LogRequests       bool
	LogResponses      bool
	ValidateResponses bool
}

// LoadTestConfig loads configuration from environment variables and .env files.
// Malformed values are reported together rather than replaced by defaults.
func LoadTestConfig() (*TestConfig, error) {
	loadEnvFile()

	var errs []error

	config := &TestConfig{
		BaseURL:           getStringWithDefault("API_BASE_URL", DefaultBaseURL),
		AuthToken:         os.Getenv("API_AUTH_TOKEN"),
		AdminEmail:        getStringWithDefault("ADMIN_EMAIL", DefaultAdminEmail),
		AdminPassword:     getStringWithDefault("ADMIN_PASSWORD", DefaultAdminPassword),
		AdminToken:        os.Getenv("ADMIN_TOKEN"),
		AdminDatabaseURL:  os.Getenv("ADMIN_DATABASE_URL"),
		RequestTimeout:    getDuration("REQUEST_TIMEOUT", 0, &errs),
		SkipIntegration:   getBool("SKIP_INTEGRATION", false, &errs),
		LogRequests:       getBool("LOG_REQUESTS", false, &errs),
		LogResponses:      getBool("LOG_RESPONSES", false, &errs),
		ValidateResponses: getBool("VALIDATE_RESPONSES", false, &errs),
	}

	if err := validateBaseURL(config.BaseURL); err != nil {
		errs = append(errs, err)
	}

	if err := utilerrors.NewAggregate(errs); err != nil {
		return nil, fmt.Errorf("invalid test configuration: %w", err)
	}

	return config, nil
}

// MustLoadTestConfig is LoadTestConfig for contexts where a broken
// environment should abort immediately, e.g. suite setup.
func MustLoadTestConfig() *TestConfig {
	config, err := LoadTestConfig()
	if err != nil {
		panic(err)
	}

	return config
}

func getStringWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// getDuration gets a duration from environment variable or returns default.
func getDuration(key string, defaultValue time.Duration, errs *[]error) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return defaultValue
	}

	if duration < 0 {
		*errs = append(*errs, fmt.Errorf("%s: must not be negative, got %s", key, value))
		return defaultValue
	}

	return duration
}

// getBool gets a boolean from environment variable or returns default.
func getBool(key string, defaultValue bool, errs *[]error) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return defaultValue
	}

	return boolValue
}

func validateBaseURL(baseURL string) error {
	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("API_BASE_URL: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("API_BASE_URL: scheme must be http or https, got %q", u.Scheme)
	}

	if u.Host == "" {
		return fmt.Errorf("API_BASE_URL: host is required")
	}

	return nil
}

func loadEnvFile() {
	envPaths := []string{
		"../../../test/.env", // From test/api/suites directory
		"../../test/.env",    // From test/api directory
		"test/.env",          // From the repository root
	}

	var envPath string

	for _, path := range envPaths {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				envPath = absPath
				break
			}
		}
	}

	if envPath == "" {
		// .env file not found - this is OK in CI/CD where env vars are set directly
		return
	}

	// Existing environment variables win over the file.
	if err := godotenv.Load(envPath); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load .env file from %s: %v\n", envPath, err)
	}
}
