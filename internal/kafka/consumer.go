package kafka

import (
	"context"
	"errors"
	"fmt"

	"github.com/IBM/sarama"
	log "github.com/carousell/ct-go/pkg/logger/log_context"
	"github.com/homeinv/barcode-router/internal/config"
	"go.uber.org/fx"
)

type Consumer interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

type scanConsumer struct {
	group   sarama.ConsumerGroup
	topic   string
	handler MessageHandler
	done    chan struct{}
}

func NewConsumer(cfg config.KafkaConfig, handler MessageHandler) (Consumer, error) {
	if !cfg.Enabled {
		return &noopConsumer{}, nil
	}

	saramaCfg := sarama.NewConfig()
	saramaCfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaCfg.Consumer.Return.Errors = false

	group, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.GroupID, saramaCfg)
	if err != nil {
		return nil, fmt.Errorf("create consumer group: %w", err)
	}

	return &scanConsumer{
		group:   group,
		topic:   cfg.Topic,
		handler: handler,
		done:    make(chan struct{}),
	}, nil
}

func (c *scanConsumer) Start(ctx context.Context) error {
	log.Infof(ctx, "Starting scan consumer for topic %s", c.topic)
	gh := &groupHandler{handler: c.handler}
	for {
		select {
		case <-c.done:
			return nil
		default:
		}

		if err := c.group.Consume(ctx, []string{c.topic}, gh); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) || errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return fmt.Errorf("consume: %w", err)
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (c *scanConsumer) Stop(ctx context.Context) error {
	log.Infof(ctx, "Stopping scan consumer")
	close(c.done)
	return c.group.Close()
}

type groupHandler struct {
	handler MessageHandler
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	ctx := session.Context()
	for message := range claim.Messages() {
		if err := h.handler.Handle(ctx, message.Value); err != nil {
			log.Errorw(ctx, "Error handling scan event",
				"topic", message.Topic,
				"partition", message.Partition,
				"offset", message.Offset,
				"error", err,
			)
		}
		session.MarkMessage(message, "")
	}
	return nil
}

type noopConsumer struct{}

func (n *noopConsumer) Start(context.Context) error { return nil }
func (n *noopConsumer) Stop(context.Context) error  { return nil }

// StartScanConsumer wires the consumer into the application lifecycle.
func StartScanConsumer(
	lc fx.Lifecycle,
	sd fx.Shutdowner,
	conf *config.Config,
	handler MessageHandler,
) error {
	consumer, err := NewConsumer(conf.Kafka, handler)
	if err != nil {
		return err
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := consumer.Start(context.Background()); err != nil {
					log.Errorw(ctx, "Scan consumer stopped", "error", err)
					sd.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return consumer.Stop(ctx)
		},
	})
	return nil
}
