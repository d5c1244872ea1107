package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/assetvault/internal/flagx"
	"github.com/dmitrijs2005/assetvault/internal/timex"
)

// configEnvKey names the environment variable consulted when no -c/-config
// flag is given.
const configEnvKey = "ASSETVAULT_CONFIG"

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration so both "15m" and integer nanoseconds are accepted. Pointer
// fields distinguish "absent" from an explicit zero value.
type JsonConfig struct {
	EndpointAddrHTTP            string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC            string         `json:"endpoint_addr_grpc"`
	LogLevel                    string         `json:"log_level"`
	MetadataDriver              string         `json:"metadata_driver"`
	MongoURI                    string         `json:"mongo_uri"`
	MongoDatabase               string         `json:"mongo_database"`
	DatabaseDSN                 string         `json:"database_dsn"`
	BlobDriver                  string         `json:"blob_driver"`
	S3RootUser                  string         `json:"s3_root_user"`
	S3RootPassword              string         `json:"s3_root_password"`
	S3Bucket                    string         `json:"s3_bucket"`
	S3Region                    string         `json:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint"`
	S3UseSSL                    *bool          `json:"s3_use_ssl"`
	BlobPublicBaseURL           string         `json:"blob_public_base_url"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	MaxUploadSize               int64          `json:"max_upload_size"`
	MaxFilesPerRequest          int            `json:"max_files_per_request"`
	UploadDir                   string         `json:"upload_dir"`
	DisplayTimezone             string         `json:"display_timezone"`
	DeleteConcurrency           int            `json:"delete_concurrency"`
	RedisAddr                   string         `json:"redis_addr"`
	WorkerConcurrency           int            `json:"worker_concurrency"`
	ResendAPIKey                string         `json:"resend_api_key"`
	MailFrom                    string         `json:"mail_from"`
}

// parseJson overlays values from the JSON file named by -c/-config in args
// (or ASSETVAULT_CONFIG). Only fields present in the file with a non-zero
// value override the current config. An unreadable or malformed file panics.
func parseJson(config *Config, args []string) {
	path := flagx.ConfigPath(args, configEnvKey)
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.MetadataDriver, c.MetadataDriver)
	setString(&config.MongoURI, c.MongoURI)
	setString(&config.MongoDatabase, c.MongoDatabase)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.BlobDriver, c.BlobDriver)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	if c.S3UseSSL != nil {
		config.S3UseSSL = *c.S3UseSSL
	}
	setString(&config.BlobPublicBaseURL, c.BlobPublicBaseURL)
	setString(&config.SecretKey, c.SecretKey)
	if c.AccessTokenValidityDuration.Duration > 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.MaxUploadSize > 0 {
		config.MaxUploadSize = c.MaxUploadSize
	}
	if c.MaxFilesPerRequest > 0 {
		config.MaxFilesPerRequest = c.MaxFilesPerRequest
	}
	setString(&config.UploadDir, c.UploadDir)
	setString(&config.DisplayTimezone, c.DisplayTimezone)
	if c.DeleteConcurrency > 0 {
		config.DeleteConcurrency = c.DeleteConcurrency
	}
	setString(&config.RedisAddr, c.RedisAddr)
	if c.WorkerConcurrency > 0 {
		config.WorkerConcurrency = c.WorkerConcurrency
	}
	setString(&config.ResendAPIKey, c.ResendAPIKey)
	setString(&config.MailFrom, c.MailFrom)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
