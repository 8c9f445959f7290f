package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvChildFactorMode    = "CHILD_FACTOR_MODE"
	EnvMaxStayNights      = "MAX_STAY_NIGHTS"
	EnvReservationLockTTL = "RESERVATION_LOCK_TTL"

	EnvAuditBrokers  = "AUDIT_KAFKA_BROKERS"
	EnvAuditTopic    = "AUDIT_KAFKA_TOPIC"
	EnvAuditDLQTopic = "AUDIT_KAFKA_DLQ_TOPIC"
)
