// Beaconfall - Resource Timing Beacon Collection and Waterfall Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beaconfall

//go:build nats

package forward

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/beaconfall/internal/logging"
	"github.com/tomtom215/beaconfall/internal/metrics"
)

// NATSForwarder publishes rendered output to a NATS subject through a
// Watermill publisher. Publishes are protected by a circuit breaker so a
// broker outage degrades to fast failures instead of blocked handlers.
type NATSForwarder struct {
	publisher message.Publisher
	subject   string
	breaker   *gobreaker.CircuitBreaker[interface{}]

	mu     sync.Mutex
	closed bool
}

// NewNATSForwarder creates a NATS forwarder with reconnection handling.
func NewNATSForwarder(cfg NATSConfig) (*NATSForwarder, error) {
	logger := newWatermillLogger()

	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.ReconnectBufSize(cfg.ReconnectBuffer),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logging.Error().Err(err).Msg("NATS disconnected")
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logging.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         cfg.URL,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}

	return &NATSForwarder{
		publisher: pub,
		subject:   cfg.Subject,
		breaker:   NewCircuitBreaker(DefaultCircuitBreakerConfig("nats-forwarder")),
	}, nil
}

// Name implements Forwarder.
func (f *NATSForwarder) Name() string { return "nats" }

// Forward implements Forwarder. The separator is carried as message metadata
// rather than appended to the payload; the byte count reported on success is
// the payload length plus separator, matching the other sinks.
func (f *NATSForwarder) Forward(ctx context.Context, data []byte, separator string, cb Callback) {
	if cb == nil {
		cb = nopCallback
	}

	f.mu.Lock()
	closed := f.closed
	f.mu.Unlock()
	if closed {
		metrics.ForwardsTotal.WithLabelValues(f.Name(), "error").Inc()
		cb(ErrClosed, 0)
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.SetContext(ctx)
	msg.Metadata.Set("separator", separator)
	if id := logging.BeaconIDFromContext(ctx); id != "" {
		msg.Metadata.Set("beacon_id", id)
	}

	_, err := f.breaker.Execute(func() (interface{}, error) {
		return nil, f.publisher.Publish(f.subject, msg)
	})
	if err != nil {
		metrics.ForwardsTotal.WithLabelValues(f.Name(), "error").Inc()
		cb(fmt.Errorf("publish %s: %w", f.subject, err), 0)
		return
	}

	n := len(data) + len(separator)
	metrics.ForwardsTotal.WithLabelValues(f.Name(), "success").Inc()
	metrics.ForwardedBytes.WithLabelValues(f.Name()).Add(float64(n))
	cb(nil, n)
}

// Close implements Forwarder.
func (f *NATSForwarder) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil
	}
	f.closed = true
	return f.publisher.Close()
}

// watermillLogger bridges watermill's LoggerAdapter to zerolog.
type watermillLogger struct {
	fields watermill.LogFields
}

func newWatermillLogger() watermill.LoggerAdapter {
	return &watermillLogger{}
}

func (l *watermillLogger) Error(msg string, err error, fields watermill.LogFields) {
	l.event(logging.Error().Err(err), fields).Msg(msg)
}

func (l *watermillLogger) Info(msg string, fields watermill.LogFields) {
	l.event(logging.Info(), fields).Msg(msg)
}

func (l *watermillLogger) Debug(msg string, fields watermill.LogFields) {
	l.event(logging.Debug(), fields).Msg(msg)
}

func (l *watermillLogger) Trace(msg string, fields watermill.LogFields) {
	logger := logging.Logger()
	l.event(logger.Trace(), fields).Msg(msg)
}

func (l *watermillLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &watermillLogger{fields: l.fields.Add(fields)}
}

func (l *watermillLogger) event(e *zerolog.Event, fields watermill.LogFields) *zerolog.Event {
	for k, v := range l.fields {
		e = e.Interface(k, v)
	}
	for k, v := range fields {
		e = e.Interface(k, v)
	}
	return e
}
