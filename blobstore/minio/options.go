package minio

type options struct {
	accessKey    string
	secretKey    string
	secure       bool
	region       string
	prefix       string
	createBucket bool
}

// Option configures a Store created with New.
type Option func(*options)

// WithCredentials sets static V4 credentials.
func WithCredentials(accessKey, secretKey string) Option {
	return func(o *options) {
		o.accessKey = accessKey
		o.secretKey = secretKey
	}
}

// WithSecure enables HTTPS.
func WithSecure(secure bool) Option {
	return func(o *options) {
		o.secure = secure
	}
}

// WithRegion sets the bucket region.
func WithRegion(region string) Option {
	return func(o *options) {
		o.region = region
	}
}

// WithPrefix sets the key prefix prepended to every blob name.
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithCreateBucket creates the bucket if it does not exist.
func WithCreateBucket(create bool) Option {
	return func(o *options) {
		o.createBucket = create
	}
}
