// Package service exposes the engine's read-side operations over NATS
// request/reply. It is a thin transport: requests carry IRI strings,
// which are resolved against the interner without mutating it, so a
// frozen engine can serve queries from many processes.
//
// Subjects:
//
//	semkernel.query.ask       single-pattern existence
//	semkernel.query.objects   object enumeration for (predicate, subject)
//	semkernel.query.join      multi-pattern bitset join
//	semkernel.query.validate  shape validation for an entity
//	semkernel.query.reason    reasoning-augmented ask
//	semkernel.stats           engine statistics snapshot
package service

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/c360/semkernel/engine"
	"github.com/c360/semkernel/errors"
	"github.com/c360/semkernel/pkg/cache"
)

// NATS subjects served by the query service.
const (
	SubjectAsk      = "semkernel.query.ask"
	SubjectObjects  = "semkernel.query.objects"
	SubjectJoin     = "semkernel.query.join"
	SubjectValidate = "semkernel.query.validate"
	SubjectReason   = "semkernel.query.reason"
	SubjectStats    = "semkernel.stats"
)

// Config tunes the query service.
type Config struct {
	// JoinCacheSize bounds the join-result cache. 0 disables caching.
	JoinCacheSize int `json:"join_cache_size" yaml:"join_cache_size"`
}

// DefaultConfig returns the default service configuration.
func DefaultConfig() Config {
	return Config{JoinCacheSize: 1024}
}

// Service serves engine queries over NATS request/reply.
type Service struct {
	conn    *nats.Conn
	engine  *engine.Engine
	cfg     Config
	logger  *slog.Logger
	metrics *serviceMetrics

	// joinCache holds resolved join results keyed by request digest and
	// engine generation, so a cached entry can never outlive a write.
	joinCache cache.Cache[[]string]

	subs    []*nats.Subscription
	started bool
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics registers service metrics with the given registrar.
func WithMetrics(reg registrar) Option {
	return func(s *Service) {
		m, err := newServiceMetrics(reg)
		if err != nil {
			s.logger.Error("failed to initialize service metrics", "error", err)
			return
		}
		s.metrics = m
	}
}

// New creates a query service over an established NATS connection.
func New(conn *nats.Conn, eng *engine.Engine, cfg Config, logger *slog.Logger, opts ...Option) (*Service, error) {
	if conn == nil {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "Service", "New",
			"nats connection cannot be nil")
	}
	if eng == nil {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "Service", "New",
			"engine cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Service{
		conn:   conn,
		engine: eng,
		cfg:    cfg,
		logger: logger.With("component", "query-service"),
	}
	if cfg.JoinCacheSize > 0 {
		c, err := cache.NewLRU[[]string](cfg.JoinCacheSize)
		if err != nil {
			return nil, err
		}
		s.joinCache = c
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Start subscribes to all query subjects.
func (s *Service) Start() error {
	if s.started {
		return errors.WrapInvalid(fmt.Errorf("service already started"),
			"Service", "Start", "duplicate start")
	}

	handlers := map[string]func([]byte) []byte{
		SubjectAsk:      s.handleAsk,
		SubjectObjects:  s.handleObjects,
		SubjectJoin:     s.handleJoin,
		SubjectValidate: s.handleValidate,
		SubjectReason:   s.handleReason,
		SubjectStats:    s.handleStats,
	}

	for subject, handler := range handlers {
		h := handler
		subj := subject
		sub, err := s.conn.Subscribe(subj, func(msg *nats.Msg) {
			start := time.Now()
			reply := h(msg.Data)
			if err := msg.Respond(reply); err != nil {
				s.logger.Warn("failed to respond", "subject", subj, "error", err)
			}
			if s.metrics != nil {
				s.metrics.observe(subj, time.Since(start))
			}
		})
		if err != nil {
			s.stopSubscriptions()
			return errors.WrapInvalid(err, "Service", "Start",
				fmt.Sprintf("subscribe %s", subj))
		}
		s.subs = append(s.subs, sub)
	}

	s.started = true
	s.logger.Info("query service started", "subjects", len(handlers))
	return nil
}

// Stop unsubscribes from all subjects and drains in-flight requests.
func (s *Service) Stop() error {
	if !s.started {
		return nil
	}
	s.stopSubscriptions()
	s.started = false
	s.logger.Info("query service stopped")
	return nil
}

func (s *Service) stopSubscriptions() {
	for _, sub := range s.subs {
		if err := sub.Drain(); err != nil {
			s.logger.Warn("failed to drain subscription", "error", err)
		}
	}
	s.subs = nil
}
