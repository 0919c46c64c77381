package config

import (
	"encoding/json"
	"os"

	"github.com/cohorttools/cohort-api/internal/flagx"
	"github.com/cohorttools/cohort-api/internal/server/auth"
	"github.com/cohorttools/cohort-api/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "6h" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON configuration
// files. After unmarshalling, its fields are copied into the runtime Config.
type JsonConfig struct {
	EndpointAddr              string         `json:"endpoint_addr"`
	DatabaseDSN               string         `json:"database_dsn"`
	SecretKey                 string         `json:"secret_key"`
	AuthTokenValidityDuration timex.Duration `json:"auth_token_validity_duration"`
	SignupRateLimitWindow     timex.Duration `json:"signup_rate_limit_window"`
	SignupRateLimitMax        int            `json:"signup_rate_limit_max"`
	LoginRateLimitWindow      timex.Duration `json:"login_rate_limit_window"`
	LoginRateLimitMax         int            `json:"login_rate_limit_max"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c or -config command-line
// flags; when neither is set, no JSON file is loaded. Unset fields keep their
// current values.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	if c.EndpointAddr != "" {
		config.EndpointAddr = c.EndpointAddr
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.AuthTokenValidityDuration.Duration != 0 {
		config.AuthTokenValidityDuration = c.AuthTokenValidityDuration.Duration
	}
	if c.SignupRateLimitWindow.Duration != 0 || c.SignupRateLimitMax != 0 {
		config.SignupRateLimit = overlayLimit(config.SignupRateLimit, c.SignupRateLimitWindow, c.SignupRateLimitMax)
	}
	if c.LoginRateLimitWindow.Duration != 0 || c.LoginRateLimitMax != 0 {
		config.LoginRateLimit = overlayLimit(config.LoginRateLimit, c.LoginRateLimitWindow, c.LoginRateLimitMax)
	}
}

func overlayLimit(current auth.LimiterConfig, window timex.Duration, max int) auth.LimiterConfig {
	if window.Duration != 0 {
		current.WindowDuration = window.Duration
	}
	if max != 0 {
		current.MaxRequests = max
	}
	return current
}
