package kafka

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	"ms-restaurant/internal/logger"

	"github.com/segmentio/kafka-go"
)

// EnsureTopicsExist creates missing topics through the cluster controller.
// A topic that already exists is not an error; other per-topic failures are logged.
func EnsureTopicsExist(ctx context.Context, brokers []string, topics []string, log *logger.Logger) error {
	if len(brokers) == 0 {
		return errors.New("no kafka brokers configured")
	}
	conn, err := kafka.DialContext(ctx, "tcp", brokers[0])
	if err != nil {
		return fmt.Errorf("dial %s: %w", brokers[0], err)
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("find controller: %w", err)
	}
	controllerConn, err := kafka.DialContext(ctx, "tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return fmt.Errorf("dial controller: %w", err)
	}
	defer controllerConn.Close()

	for _, topic := range uniqueTopics(topics) {
		err := controllerConn.CreateTopics(kafka.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		})
		switch {
		case errors.Is(err, kafka.TopicAlreadyExists):
			log.LogKafka("TOPIC_EXISTS", topic, "Topic already exists")
		case err != nil:
			log.LogKafka("TOPIC_FAILED", topic, err.Error())
		default:
			log.LogKafka("TOPIC_CREATED", topic, "Created topic")
		}
	}
	return nil
}

func uniqueTopics(topics []string) []string {
	seen := make(map[string]bool, len(topics))
	out := make([]string, 0, len(topics))
	for _, topic := range topics {
		if topic == "" || seen[topic] {
			continue
		}
		seen[topic] = true
		out = append(out, topic)
	}
	return out
}
