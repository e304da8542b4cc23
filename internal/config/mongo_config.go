package config

type MongoConfig interface {
	GetMongoURI() string
	GetMongoDatabase() string
}

type Mongo struct{}

var _ MongoConfig = Mongo{}

func (Mongo) GetMongoURI() string {
	return GetEnv("MONGODB_URI", "mongodb://localhost:27017")
}

func (Mongo) GetMongoDatabase() string {
	return GetEnv("MONGODB_DATABASE", "vidstream")
}
