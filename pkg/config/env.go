package config

// EnvPrefix is passed to envconfig; individual fields carry explicit
// SELLORA_* names so the prefix only matters for unnamed fields.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

// Environment variable names referenced outside struct tags (tests,
// error messages).
const (
	EnvAppEnv   = "SELLORA_APP_ENV"
	EnvPort     = "SELLORA_APP_PORT"
	EnvDBDSN    = "SELLORA_DB_DSN"
	EnvDBHost   = "SELLORA_DB_HOST"
	EnvDBUser   = "SELLORA_DB_USER"
	EnvDBName   = "SELLORA_DB_NAME"
	EnvRedisURL = "SELLORA_REDIS_URL"

	EnvJWTSecret  = "SELLORA_JWT_SECRET"
	EnvJWTIssuer  = "SELLORA_JWT_ISSUER"
	EnvJWTExpMins = "SELLORA_JWT_EXPIRATION_MINUTES"

	EnvGCPProjectID = "SELLORA_GCP_PROJECT_ID"

	EnvPubSubDomainTopic = "SELLORA_PUBSUB_DOMAIN_TOPIC"
	EnvPubSubDomainSub   = "SELLORA_PUBSUB_DOMAIN_SUBSCRIPTION"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
