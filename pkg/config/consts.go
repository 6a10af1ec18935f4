package config

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "STOCKAUDIT_DB_DSN"
	EnvDBHost = "STOCKAUDIT_DB_HOST"
	EnvDBUser = "STOCKAUDIT_DB_USER"
	EnvDBName = "STOCKAUDIT_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
