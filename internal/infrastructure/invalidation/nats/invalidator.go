// Package nats broadcasts cache-invalidation signals over NATS so every
// UI-facing instance drops its cached queries for the named group.
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/avolkov/docstream/internal/core/domain"
	"github.com/avolkov/docstream/internal/infrastructure/resilience"
)

type Invalidator struct {
	conn          *nats.Conn
	subjectPrefix string
	executor      *resilience.Executor
}

type Options struct {
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	ResilienceExecutor   *resilience.Executor
}

type signal struct {
	Group      domain.CacheGroup `json:"group"`
	OccurredAt time.Time         `json:"occurred_at"`
}

func New(url, subjectPrefix string) (*Invalidator, error) {
	return NewWithOptions(url, subjectPrefix, Options{})
}

func NewWithOptions(url, subjectPrefix string, options Options) (*Invalidator, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}
	retryOnFailedConnect := true
	if options.RetryOnFailedConnect != nil {
		retryOnFailedConnect = *options.RetryOnFailedConnect
	}

	conn, err := nats.Connect(
		url,
		nats.Name("docstream"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Printf("nats disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("nats reconnected: %s", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Invalidator{
		conn:          conn,
		subjectPrefix: subjectPrefix,
		executor:      options.ResilienceExecutor,
	}, nil
}

func (i *Invalidator) Close() {
	if i.conn != nil {
		i.conn.Close()
	}
}

// Invalidate publishes the group name on its own subject, so subscribers can
// filter by group without decoding the payload.
func (i *Invalidator) Invalidate(ctx context.Context, group domain.CacheGroup) error {
	payload, err := json.Marshal(signal{Group: group, OccurredAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("encode invalidation signal: %w", err)
	}
	subject := fmt.Sprintf("%s.%s", i.subjectPrefix, group)

	call := func(context.Context) error {
		if err := i.conn.Publish(subject, payload); err != nil {
			return fmt.Errorf("nats publish: %w", err)
		}
		return nil
	}

	if i.executor != nil {
		err = i.executor.Execute(ctx, "nats.invalidate", call, classifyNATSError)
	} else {
		err = call(ctx)
	}
	return wrapTemporaryIfNeeded(err)
}
