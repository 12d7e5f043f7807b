package kafka_config

import "time"

const (
	DefaultKafkaEnabled = false
	DefaultKafkaBrokers = "localhost:9092"

	DefaultProducerMaxAttempts  = 3
	DefaultProducerBatchTimeout = 10 * time.Millisecond
	DefaultProducerRequireAcks  = -1 // all replicas
	DefaultProducerCompression  = "snappy"
	DefaultProducerAsync        = false
)
