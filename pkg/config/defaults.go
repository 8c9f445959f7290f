package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "innkeep"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 30
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// ChildFactorFallback prices children at base_one_adult * child_factor
	// when a composition tier has no explicit child_price configured.
	ChildFactorFallback = "fallback"
	// ChildFactorOff uses stored child_price literally; zero means free.
	ChildFactorOff = "off"

	DefaultChildFactorMode    = ChildFactorFallback
	DefaultMaxStayNights      = 365
	DefaultReservationLockTTL = 10 * time.Second

	DefaultAuditTopic    = "innkeep.audit.v1"
	DefaultAuditDLQTopic = "innkeep.audit.v1.dlq"

	DefaultPaginationLimit = 100
)
