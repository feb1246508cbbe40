package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Port                 string
	CORSAllowOrigin      []string
	ObjectStoreType      string
	LocalStoreDir        string
	AWSRegion            string
	S3Bucket             string
	S3Prefix             string
	SSEKMSKeyID          string
	GCSBucket            string
	GCSPrefix            string
	AnalyzerURL          string
	AnalyzerTimeout      time.Duration
	AnalyzerTokenURL     string
	AnalyzerClientID     string
	AnalyzerClientSecret string
	AnalyzerScopes       []string
	EventsBackend        string
	EventsAMQPURL        string
	EventsSQSQueueURL    string
	EventsExchange       string
	PreviewLength        int
	DatabaseURL          string
	JWTSecret            string
	Env                  string
	LogJSON              bool
	LogDebug             bool

	// EnvFileErrors lists .env files that exist but could not be parsed.
	// Logging is not configured yet while Load runs, so callers report them.
	EnvFileErrors []error
}

var defaults = map[string]any{
	"PORT":               "8080",
	"ENV":                "dev",
	"CORS_ALLOW_ORIGINS": "http://localhost:5173",
	"OBJECT_STORE":       "local",
	"LOCAL_STORE_DIR":    "./data",
	"ANALYZER_URL":       "http://localhost:5001/analyze-resume-jd",
	"ANALYZER_TIMEOUT":   "30s",
	"EVENTS_EXCHANGE":    "match_events",
	"PREVIEW_LENGTH":     100,
	"LOG_JSON":           false,
	"LOG_DEBUG":          false,
}

// Load reads configuration from the environment, then optional .env files,
// then built-in defaults.
func Load() Config {
	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	files, errs := readEnvFiles(envFiles...)
	applyEnvFiles(v, files)
	v.AutomaticEnv()

	cfg := FromViper(v)
	cfg.EnvFileErrors = errs
	return cfg
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) Config {
	env := normalizeEnv(v.GetString("ENV"))
	dbURL := strings.TrimSpace(v.GetString("DATABASE_URL"))

	timeout := v.GetDuration("ANALYZER_TIMEOUT")
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	preview := v.GetInt("PREVIEW_LENGTH")
	if preview <= 0 {
		preview = 100
	}

	return Config{
		Port:                 v.GetString("PORT"),
		CORSAllowOrigin:      splitAndTrim(v.GetString("CORS_ALLOW_ORIGINS")),
		ObjectStoreType:      normalizeStoreType(v.GetString("OBJECT_STORE")),
		LocalStoreDir:        v.GetString("LOCAL_STORE_DIR"),
		AWSRegion:            v.GetString("AWS_REGION"),
		S3Bucket:             v.GetString("S3_BUCKET"),
		S3Prefix:             v.GetString("S3_PREFIX"),
		SSEKMSKeyID:          v.GetString("SSE_KMS_KEY_ID"),
		GCSBucket:            v.GetString("GCS_BUCKET"),
		GCSPrefix:            v.GetString("GCS_PREFIX"),
		AnalyzerURL:          strings.TrimSpace(v.GetString("ANALYZER_URL")),
		AnalyzerTimeout:      timeout,
		AnalyzerTokenURL:     strings.TrimSpace(v.GetString("ANALYZER_TOKEN_URL")),
		AnalyzerClientID:     strings.TrimSpace(v.GetString("ANALYZER_CLIENT_ID")),
		AnalyzerClientSecret: strings.TrimSpace(v.GetString("ANALYZER_CLIENT_SECRET")),
		AnalyzerScopes:       splitAndTrim(v.GetString("ANALYZER_SCOPES")),
		EventsBackend:        normalizeEventsBackend(v.GetString("EVENTS_BACKEND"), v.GetString("EVENTS_AMQP_URL"), v.GetString("EVENTS_SQS_QUEUE_URL")),
		EventsAMQPURL:        strings.TrimSpace(v.GetString("EVENTS_AMQP_URL")),
		EventsSQSQueueURL:    strings.TrimSpace(v.GetString("EVENTS_SQS_QUEUE_URL")),
		EventsExchange:       v.GetString("EVENTS_EXCHANGE"),
		PreviewLength:        preview,
		DatabaseURL:          dbURL,
		JWTSecret:            v.GetString("JWT_SECRET"),
		Env:                  env,
		LogJSON:              v.GetBool("LOG_JSON") || env == "production",
		LogDebug:             v.GetBool("LOG_DEBUG"),
	}
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	case "gcs":
		return "gcs"
	default:
		return "local"
	}
}

// normalizeEventsBackend picks amqp, sqs or none. Without an explicit choice
// the backend follows whichever broker URL is set.
func normalizeEventsBackend(raw, amqpURL, sqsURL string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "amqp", "rabbitmq":
		return "amqp"
	case "sqs":
		return "sqs"
	case "none", "off":
		return "none"
	}
	switch {
	case strings.TrimSpace(amqpURL) != "":
		return "amqp"
	case strings.TrimSpace(sqsURL) != "":
		return "sqs"
	default:
		return "none"
	}
}
