package config

type Config interface {
	EnvConfig
	AuthConfig
	MongoConfig
	StorageConfig
}

type mainConfig struct {
	EnvVars
	Auth
	Mongo
	Storage
}

func New() Config {
	return mainConfig{}
}
