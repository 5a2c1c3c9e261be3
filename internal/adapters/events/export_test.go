package events

// NewKafkaWithWriter permite probar el publisher sin broker.
func NewKafkaWithWriter(w messageWriter, topic string) *Kafka {
	return &Kafka{w: w, topic: topic}
}
