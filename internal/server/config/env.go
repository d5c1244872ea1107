package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// envPrefix namespaces every variable read by parseEnv.
const envPrefix = "ASSETVAULT_"

// parseEnv loads .env from the working directory when present, then overlays
// any ASSETVAULT_* variables that are set and parse cleanly. Malformed
// numeric values are ignored and the previous value is kept.
func parseEnv(c *Config) {
	_ = godotenv.Load()

	readString(&c.EndpointAddrHTTP, "HTTP_ADDR")
	readString(&c.EndpointAddrGRPC, "GRPC_ADDR")
	readString(&c.LogLevel, "LOG_LEVEL")
	readString(&c.MetadataDriver, "METADATA_DRIVER")
	readString(&c.MongoURI, "MONGO_URI")
	readString(&c.MongoDatabase, "MONGO_DATABASE")
	readString(&c.DatabaseDSN, "DATABASE_DSN")
	readString(&c.BlobDriver, "BLOB_DRIVER")
	readString(&c.S3RootUser, "S3_ROOT_USER")
	readString(&c.S3RootPassword, "S3_ROOT_PASSWORD")
	readString(&c.S3Bucket, "S3_BUCKET")
	readString(&c.S3Region, "S3_REGION")
	readString(&c.S3BaseEndpoint, "S3_BASE_ENDPOINT")
	readBool(&c.S3UseSSL, "S3_USE_SSL")
	readString(&c.BlobPublicBaseURL, "BLOB_PUBLIC_BASE_URL")
	readString(&c.SecretKey, "SECRET_KEY")
	readDuration(&c.AccessTokenValidityDuration, "ACCESS_TOKEN_TTL")
	readInt64(&c.MaxUploadSize, "MAX_UPLOAD_BYTES")
	readInt(&c.MaxFilesPerRequest, "MAX_FILES")
	readString(&c.UploadDir, "UPLOAD_DIR")
	readString(&c.DisplayTimezone, "DISPLAY_TIMEZONE")
	readInt(&c.DeleteConcurrency, "DELETE_CONCURRENCY")
	readString(&c.RedisAddr, "REDIS_ADDR")
	readInt(&c.WorkerConcurrency, "WORKER_CONCURRENCY")
	readString(&c.ResendAPIKey, "RESEND_API_KEY")
	readString(&c.MailFrom, "MAIL_FROM")
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func readString(dst *string, key string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

func readBool(dst *bool, key string) {
	if v, ok := lookup(key); ok {
		if parsed, err := strconv.ParseBool(v); err == nil {
			*dst = parsed
		}
	}
}

func readInt(dst *int, key string) {
	if v, ok := lookup(key); ok {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		}
	}
}

func readInt64(dst *int64, key string) {
	if v, ok := lookup(key); ok {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = parsed
		}
	}
}

func readDuration(dst *time.Duration, key string) {
	if v, ok := lookup(key); ok {
		if parsed, err := time.ParseDuration(v); err == nil {
			*dst = parsed
		}
	}
}
