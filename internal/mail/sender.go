package mail

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/avekarev/identity/pkg/kafka"
)

// TopicRegistrationCode is the topic the notification service consumes to
// deliver registration code emails.
const TopicRegistrationCode = "identity.mail.registration_code"

const aggregateTypeMail = "mail"

const sourceIdentityService = "identity-service"

// Sender delivers registration codes to users.
type Sender interface {
	SendRegistrationCode(ctx context.Context, email, code string) error
}

// RegistrationCodeData is the payload for a mail.registration_code event.
type RegistrationCodeData struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// KafkaSender hands mail off to the notification pipeline via Kafka.
// Delivery itself happens out of process.
type KafkaSender struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewKafkaSender creates a Kafka-backed mail sender.
func NewKafkaSender(kafka *pkgkafka.Producer, logger *slog.Logger) *KafkaSender {
	return &KafkaSender{
		kafka:  kafka,
		logger: logger,
	}
}

// SendRegistrationCode publishes a mail.registration_code event.
func (s *KafkaSender) SendRegistrationCode(ctx context.Context, email, code string) error {
	data := RegistrationCodeData{
		Email: email,
		Code:  code,
	}

	event, err := pkgkafka.NewEvent(TopicRegistrationCode, email, aggregateTypeMail, sourceIdentityService, data)
	if err != nil {
		return fmt.Errorf("create mail.registration_code event: %w", err)
	}

	if err := s.kafka.Publish(ctx, TopicRegistrationCode, event); err != nil {
		return fmt.Errorf("publish mail.registration_code event: %w", err)
	}

	s.logger.DebugContext(ctx, "queued registration code mail",
		slog.String("email", email),
	)

	return nil
}

// LogSender writes codes to the log instead of sending mail. Useful in
// local development where no broker is running.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a log-only mail sender.
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// SendRegistrationCode logs the code at info level.
func (s *LogSender) SendRegistrationCode(ctx context.Context, email, code string) error {
	s.logger.InfoContext(ctx, "registration code issued",
		slog.String("email", email),
		slog.String("code", code),
	)
	return nil
}
