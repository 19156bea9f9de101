package config

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/dmitrijs2005/coursevault/internal/flagx"
	"github.com/dmitrijs2005/coursevault/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration so both "15m" and integer nanoseconds are accepted.
// Fields left out of the file keep their current values.
type JsonConfig struct {
	EndpointAddrHTTP        *string         `json:"endpoint_addr_http"`
	DatabaseDSN             *string         `json:"database_dsn"`
	SecretKey               *string         `json:"secret_key"`
	SessionValidityDuration *timex.Duration `json:"session_validity_duration"`
	StorageRoot             *string         `json:"storage_root"`
	MaxUploadSize           *int64          `json:"max_upload_size"`
	AllowedExtensions       []string        `json:"allowed_extensions"`
	RedisAddr               *string         `json:"redis_addr"`
	LogFormat               *string         `json:"log_format"`
	ListLimit               *int            `json:"list_limit"`
}

// parseJson overlays values from the JSON file named by -c / -config.
// Without the flag nothing is loaded. An unreadable or malformed file panics:
// a broken configuration must not start the server.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFileFlag()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setIf(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setIf(&config.DatabaseDSN, c.DatabaseDSN)
	setIf(&config.SecretKey, c.SecretKey)
	if c.SessionValidityDuration != nil {
		config.SessionValidityDuration = c.SessionValidityDuration.Duration
	}
	setIf(&config.StorageRoot, c.StorageRoot)
	setIf(&config.MaxUploadSize, c.MaxUploadSize)
	if len(c.AllowedExtensions) > 0 {
		config.AllowedExtensions = splitExtensions(strings.Join(c.AllowedExtensions, ","))
	}
	setIf(&config.RedisAddr, c.RedisAddr)
	setIf(&config.LogFormat, c.LogFormat)
	setIf(&config.ListLimit, c.ListLimit)
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
