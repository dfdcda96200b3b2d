// Package events publishes domain events to RabbitMQ. Publishing is best
// effort: a broker outage degrades to logged warnings, never to a failed
// user action.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"github.com/rabbitmq/amqp091-go"

	"github.com/flowyn/flowyn-core/dto"
	"github.com/flowyn/flowyn-core/interfaces"
	"github.com/flowyn/flowyn-core/internal/logger"
	"github.com/flowyn/flowyn-core/internal/models"
	"github.com/flowyn/flowyn-core/internal/tracing"
	"github.com/flowyn/flowyn-core/internal/utils"
)

const (
	ExchangeFlowynDirect = "flowyn-direct"
	ExchangeDeadLetter   = "dead-letter"

	QueueAccountLinked = "account-linked"
	QueueMailboxSynced = "mailbox-synced"
	DLQAccountLinked   = QueueAccountLinked + "-dlq"
	DLQMailboxSynced   = QueueMailboxSynced + "-dlq"

	RoutingKeyDeadLetter    = "dead-letter"
	RoutingKeyAccountLinked = "flowyn-account-linked"
	RoutingKeyMailboxSynced = "flowyn-mailbox-synced"

	DefaultMessageTTL          = 240 * time.Hour // after TTL message moves to DLQ
	DefaultMaxRetries          = 3
	DefaultReconnectBackoff    = time.Second
	DefaultMaxReconnectBackoff = 30 * time.Second
)

// eventEnvelope wraps every published payload with an id and emission time so
// consumers can dedupe and order.
type eventEnvelope struct {
	ID        string      `json:"id"`
	EventType string      `json:"eventType"`
	Timestamp string      `json:"timestamp"`
	Data      interface{} `json:"data"`
}

type RabbitMQPublisher struct {
	connection      *amqp091.Connection
	connectionMutex sync.Mutex
	publishChannel  *amqp091.Channel
	publishMutex    sync.Mutex
	url             string
	logger          logger.Logger
	confirms        chan amqp091.Confirmation
}

func NewRabbitMQPublisher(rabbitmqURL string, logger logger.Logger) (*RabbitMQPublisher, error) {
	publisher := &RabbitMQPublisher{
		url:    rabbitmqURL,
		logger: logger,
	}
	if err := publisher.connect(); err != nil {
		return nil, err
	}
	return publisher, nil
}

func (r *RabbitMQPublisher) PublishAccountLinked(ctx context.Context, account *models.Account) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "RabbitMQPublisher.PublishAccountLinked")
	defer span.Finish()
	tracing.TagAccount(span, account.ID)

	event := dto.AccountLinked{
		AccountID:    account.ID,
		EmailAddress: account.EmailAddress,
		Provider:     account.Provider.String(),
	}
	if err := r.publishMessageOnExchange(ctx, "AccountLinked", event, ExchangeFlowynDirect, RoutingKeyAccountLinked); err != nil {
		tracing.TraceErr(span, err)
		r.logger.Errorf("Failed to publish account linked event for %s: %v", account.ID, err)
	}
}

func (r *RabbitMQPublisher) PublishMailboxSynced(ctx context.Context, event dto.MailboxSynced) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "RabbitMQPublisher.PublishMailboxSynced")
	defer span.Finish()

	if err := r.publishMessageOnExchange(ctx, "MailboxSynced", event, ExchangeFlowynDirect, RoutingKeyMailboxSynced); err != nil {
		tracing.TraceErr(span, err)
		r.logger.Errorf("Failed to publish mailbox synced event: %v", err)
	}
}

func (r *RabbitMQPublisher) Close() error {
	r.connectionMutex.Lock()
	defer r.connectionMutex.Unlock()
	if r.connection == nil || r.connection.IsClosed() {
		return nil
	}
	return r.connection.Close()
}

func (r *RabbitMQPublisher) connect() error {
	r.connectionMutex.Lock()
	defer r.connectionMutex.Unlock()

	var err error
	r.connection, err = amqp091.Dial(r.url)
	if err != nil {
		return errors.Wrap(err, "Failed to connect to RabbitMQ")
	}

	if err := r.setupExchangesAndQueues(); err != nil {
		return errors.Wrap(err, "Failed to setup exchanges and queues")
	}

	if err := r.setupPublishChannel(); err != nil {
		return errors.Wrap(err, "Failed to setup publish channel")
	}

	go r.handleReconnection()

	return nil
}

func (r *RabbitMQPublisher) setupPublishChannel() error {
	channel, err := r.connection.Channel()
	if err != nil {
		return errors.Wrap(err, "Failed to open publish channel")
	}

	if err := channel.Confirm(false); err != nil {
		channel.Close()
		return errors.Wrap(err, "Failed to enable publisher confirms")
	}

	r.confirms = channel.NotifyPublish(make(chan amqp091.Confirmation, 1))
	r.publishChannel = channel
	return nil
}

func (r *RabbitMQPublisher) handleReconnection() {
	backoff := DefaultReconnectBackoff

	for {
		notifyClose := r.connection.NotifyClose(make(chan *amqp091.Error))
		err := <-notifyClose
		if err == nil {
			// graceful shutdown
			return
		}
		r.logger.Warnf("RabbitMQ connection closed: %v, attempting to reconnect", err)

		for {
			err := r.connect()
			if err == nil {
				r.logger.Info("Successfully reconnected to RabbitMQ")
				break
			}

			r.logger.Errorf("Failed to reconnect: %v, retrying in %v", err, backoff)
			time.Sleep(backoff)

			backoff *= 2
			if backoff > DefaultMaxReconnectBackoff {
				backoff = DefaultMaxReconnectBackoff
			}
		}

		backoff = DefaultReconnectBackoff
	}
}

func (r *RabbitMQPublisher) setupExchangesAndQueues() error {
	channel, err := r.connection.Channel()
	if err != nil {
		return errors.Wrap(err, "Failed to open channel for exchange/queue setup")
	}
	defer channel.Close()

	err = channel.ExchangeDeclare(
		ExchangeDeadLetter,
		"direct",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return errors.Wrap(err, "Failed to declare dead letter exchange")
	}

	err = channel.ExchangeDeclare(
		ExchangeFlowynDirect,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return errors.Wrap(err, "Failed to declare flowyn-direct exchange")
	}

	bindings := []struct {
		queueName  string
		dlqName    string
		routingKey string
	}{
		{QueueAccountLinked, DLQAccountLinked, RoutingKeyAccountLinked},
		{QueueMailboxSynced, DLQMailboxSynced, RoutingKeyMailboxSynced},
	}
	for _, b := range bindings {
		if err := r.declareQueueWithDLQ(channel, b.queueName, b.dlqName); err != nil {
			return err
		}
		err = channel.QueueBind(
			b.queueName,
			b.routingKey,
			ExchangeFlowynDirect,
			false,
			nil,
		)
		if err != nil {
			return errors.Wrapf(err, "Failed to bind queue %s to exchange %s", b.queueName, ExchangeFlowynDirect)
		}
	}

	return nil
}

func (r *RabbitMQPublisher) declareQueueWithDLQ(channel *amqp091.Channel, queueName string, dlqName string) error {
	_, err := channel.QueueDeclare(
		dlqName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return errors.Wrapf(err, "Failed to declare DLQ %s", dlqName)
	}

	err = channel.QueueBind(
		dlqName,
		RoutingKeyDeadLetter,
		ExchangeDeadLetter,
		false,
		nil,
	)
	if err != nil {
		return errors.Wrapf(err, "Failed to bind DLQ %s to exchange", dlqName)
	}

	args := make(map[string]interface{})
	args["x-dead-letter-exchange"] = ExchangeDeadLetter
	args["x-dead-letter-routing-key"] = RoutingKeyDeadLetter
	args["x-message-ttl"] = int64(DefaultMessageTTL.Milliseconds())

	_, err = channel.QueueDeclare(
		queueName,
		true,
		false,
		false,
		false,
		args,
	)
	if err != nil {
		return errors.Wrapf(err, "Failed to declare queue %s", queueName)
	}

	return nil
}

func (r *RabbitMQPublisher) ensureConnectionAndChannel() error {
	if r.connection == nil || r.connection.IsClosed() {
		if err := r.connect(); err != nil {
			return errors.Wrap(err, "Failed to establish connection")
		}
	}

	if r.publishChannel == nil || r.publishChannel.IsClosed() {
		if err := r.setupPublishChannel(); err != nil {
			return errors.Wrap(err, "Failed to establish channel")
		}
	}

	return nil
}

func (r *RabbitMQPublisher) publishMessageOnExchange(ctx context.Context, eventType string, message interface{}, exchange, routingKey string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "RabbitMQPublisher.PublishMessageOnExchange")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.LogObjectAsJson(span, "message", message)

	envelope := eventEnvelope{
		ID:        utils.GenerateNanoIDWithPrefix("event", 21),
		EventType: eventType,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Data:      message,
	}

	for attempt := 0; attempt < DefaultMaxRetries; attempt++ {
		err := r.publishWithConfirm(ctx, envelope, exchange, routingKey)
		if err == nil {
			return nil
		}

		r.logger.Warnf("Publish attempt %d failed: %v", attempt+1, err)
		if attempt < DefaultMaxRetries-1 {
			time.Sleep(time.Millisecond * 100 * time.Duration(attempt+1))
		}
	}

	return errors.New("Failed to publish message after all retries")
}

func (r *RabbitMQPublisher) publishWithConfirm(ctx context.Context, message interface{}, exchange, routingKey string) error {
	r.publishMutex.Lock()
	defer r.publishMutex.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := r.ensureConnectionAndChannel(); err != nil {
		return err
	}

	jsonBody, err := json.Marshal(message)
	if err != nil {
		return errors.Wrap(err, "Failed to marshal message")
	}

	err = r.publishChannel.PublishWithContext(
		ctx,
		exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Body:         jsonBody,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return errors.Wrap(err, "Failed to publish message")
	}

	select {
	case confirm := <-r.confirms:
		if !confirm.Ack {
			return errors.New("Message not acknowledged by broker")
		}
	case <-time.After(5 * time.Second):
		return errors.New("Timed out waiting for publish confirmation")
	case <-ctx.Done():
		return ctx.Err()
	}

	return nil
}

// noopPublisher is used when no broker is configured.
type noopPublisher struct{}

func NewNoopPublisher() interfaces.EventsPublisher {
	return &noopPublisher{}
}

func (noopPublisher) PublishAccountLinked(context.Context, *models.Account) {}

func (noopPublisher) PublishMailboxSynced(context.Context, dto.MailboxSynced) {}

func (noopPublisher) Close() error { return nil }
