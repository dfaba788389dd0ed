package config

// EnvPrefix is the envconfig prefix shared by every binary.
const EnvPrefix = "dairyshop"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names referenced outside struct tags.
const (
	EnvAppEnv     = "DAIRYSHOP_APP_ENV"
	EnvDBDSN      = "DAIRYSHOP_DB_DSN"
	EnvDBHost     = "DAIRYSHOP_DB_HOST"
	EnvDBUser     = "DAIRYSHOP_DB_USER"
	EnvDBName     = "DAIRYSHOP_DB_NAME"
	EnvRedisURL   = "DAIRYSHOP_REDIS_URL"
	EnvJWTSecret  = "DAIRYSHOP_JWT_SECRET"
	EnvJWTIssuer  = "DAIRYSHOP_JWT_ISSUER"
	EnvJWTExpMins = "DAIRYSHOP_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
