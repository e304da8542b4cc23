package config

// StorageConfig holds settings for the S3-compatible media host. BaseEndpoint
// is optional; when set it points uploads at a self-hosted backend such as
// MinIO instead of AWS.
type StorageConfig interface {
	GetS3Region() string
	GetS3AccessKey() string
	GetS3SecretKey() string
	GetS3Bucket() string
	GetS3BaseEndpoint() string
	GetS3PublicBaseURL() string
}

type Storage struct{}

var _ StorageConfig = Storage{}

func (Storage) GetS3Region() string {
	return GetEnv("S3_REGION", "us-east-1")
}

func (Storage) GetS3AccessKey() string {
	return GetEnv("S3_ACCESS_KEY", "")
}

func (Storage) GetS3SecretKey() string {
	return GetEnv("S3_SECRET_KEY", "")
}

func (Storage) GetS3Bucket() string {
	return GetEnv("S3_BUCKET", "vidstream-media")
}

func (Storage) GetS3BaseEndpoint() string {
	return GetEnv("S3_BASE_ENDPOINT", "")
}

// GetS3PublicBaseURL is the prefix served back to clients in avatar and cover
// image URLs.
func (Storage) GetS3PublicBaseURL() string {
	return GetEnv("S3_PUBLIC_BASE_URL", "http://localhost:9000/vidstream-media")
}
