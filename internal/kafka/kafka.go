// Package kafka provides broker bootstrap helpers: readiness probing and topic creation
package kafka

import (
	"context"
	"errors"
	"log"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// WaitKafkaReady blocks until the broker accepts TCP connections
func WaitKafkaReady(brokerAddr string) {
	for {
		conn, err := kafkago.Dial("tcp", brokerAddr)
		if err == nil {
			if errConn := conn.Close(); errConn != nil {
				log.Println("Failed to close probe connection to Kafka:", errConn)
			}
			break
		}
		log.Println("Kafka not ready, retrying in 10s...")
		time.Sleep(10 * time.Second)
	}
	log.Println("Kafka is ready!")
}

// InitKafkaTopics creates the task topics, retrying until every one of them
// exists. TopicAlreadyExists is a success: topics survive app restarts.
func InitKafkaTopics(ctx context.Context, brokerAddr string, delay time.Duration, topics ...string) {
	client := &kafkago.Client{
		Addr:    kafkago.TCP(brokerAddr),
		Timeout: 10 * time.Second,
	}

	req := kafkago.CreateTopicsRequest{
		Topics: make([]kafkago.TopicConfig, 0, len(topics)),
	}
	for _, t := range topics {
		req.Topics = append(req.Topics, kafkago.TopicConfig{
			Topic:             t,
			NumPartitions:     1,
			ReplicationFactor: 1,
		})
	}

	for {
		select {
		case <-ctx.Done():
			log.Println("Topic creation canceled")
			return
		default:
		}

		resp, err := client.CreateTopics(ctx, &req)
		if err != nil {
			log.Printf("Failed to run topics creation request: %v\nWait %v before next try...", err, delay)
			time.Sleep(delay)
			continue
		}

		pending := 0
		for topic, topicErr := range resp.Errors {
			if topicErr == nil || errors.Is(topicErr, kafkago.TopicAlreadyExists) {
				continue
			}
			log.Printf("Topic %q creation error: %v", topic, topicErr)
			pending++
		}

		if pending == 0 {
			log.Println("All topics are in place!")
			return
		}
		time.Sleep(delay)
	}
}
