package arcdex

// Option configures the Client.
type Option func(*clientConfig)

type clientConfig struct {
	addrs           []string
	username        string
	password        string
	database        int
	keyPrefix       string
	indexName       string
	defaultPageSize int
	maxPageSize     int
}

// WithRedis sets the Redis addresses to connect to.
func WithRedis(addrs ...string) Option {
	return func(c *clientConfig) {
		c.addrs = addrs
	}
}

// WithAuth sets database credentials.
func WithAuth(username, password string) Option {
	return func(c *clientConfig) {
		c.username = username
		c.password = password
	}
}

// WithDatabase selects a logical database number.
func WithDatabase(db int) Option {
	return func(c *clientConfig) {
		c.database = db
	}
}

// WithKeyPrefix overrides the storage key namespace. Must end with ':'.
func WithKeyPrefix(prefix string) Option {
	return func(c *clientConfig) {
		if prefix != "" {
			c.keyPrefix = prefix
		}
	}
}

// WithIndexName overrides the FT index name.
func WithIndexName(name string) Option {
	return func(c *clientConfig) {
		if name != "" {
			c.indexName = name
		}
	}
}

// WithPagination configures page size limits for List and Search.
func WithPagination(defaultPageSize, maxPageSize int) Option {
	return func(c *clientConfig) {
		if defaultPageSize > 0 {
			c.defaultPageSize = defaultPageSize
		}
		if maxPageSize > 0 {
			c.maxPageSize = maxPageSize
		}
	}
}
