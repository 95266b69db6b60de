package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/skyhigh/airline-checkin/internal/logger"
)

// StartCheckInConsumer connects to RabbitMQ, declares the
// checkin.completed queue (durable), and starts consuming messages.
// Each message is appended to logs/checkin.log in a single-line,
// human-friendly format. The function runs a reconnect loop with
// exponential backoff and keeps running across broker restarts; a
// message that cannot be processed is rejected without requeue so the
// consumer never spins on a poison message.
func StartCheckInConsumer() error {
	log := logger.Get()
	url := brokerURL()

	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Warn("checkin-consumer: failed to dial broker",
				zap.Error(err), zap.Duration("retry_in", backoff))
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn); err != nil {
			log.Warn("checkin-consumer: consume loop ended, reconnecting", zap.Error(err))
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection) error {
	log := logger.Get()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn("checkin-consumer: set QoS failed", zap.Error(err))
	}

	if _, err := ch.QueueDeclare(checkInQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(checkInQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleMessage(d.Body); err != nil {
			log.Warn("checkin-consumer: handle message failed", zap.Error(err))
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handleMessage(body []byte) error {
	var ev CheckInCompletedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	fpath := filepath.Join("logs", "checkin.log")
	f, err := os.OpenFile(fpath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("[%s] Check-in completed | check_in_id=%s | booking=%s | passenger=%q | flight=%s %s-%s | seat=%s (%s) | baggage=%.1fkg | fee=%.2f\n",
		ev.CompletedAt, ev.CheckInID, ev.BookingReference, ev.PassengerName,
		ev.FlightNumber, ev.Origin, ev.Destination, ev.SeatNumber, ev.SeatClass,
		ev.BaggageWeightKg, ev.ExcessBaggageFee)

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
