package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/camwatch/frigate-ingestor/internal/bus"
	"github.com/camwatch/frigate-ingestor/internal/config"
	"github.com/camwatch/frigate-ingestor/internal/normalize"
	"github.com/camwatch/frigate-ingestor/internal/telemetry"
)

const (
	connectTimeout = 30 * time.Second
	keepAlive      = 60 * time.Second
	subscribeQoS   = 1
)

// Subscription filters. The plain forms cover a single-instance Frigate
// publishing under frigate/<kind>/...; the wildcard forms cover multi-instance
// deployments that nest an instance id between "frigate" and the kind.
var topicFilters = map[string]byte{
	"frigate/events/#":      subscribeQoS,
	"frigate/reviews/#":     subscribeQoS,
	"frigate/available/#":   subscribeQoS,
	"frigate/+/events/#":    subscribeQoS,
	"frigate/+/reviews/#":   subscribeQoS,
	"frigate/+/available/#": subscribeQoS,
}

// Subscriber owns the MQTT session: connect, subscribe, decode, normalize,
// and hand off to the dispatch pool. It never persists anything itself.
type Subscriber struct {
	cfg        *config.Config
	bus        *bus.Bus
	dispatcher *Dispatcher
	metrics    *telemetry.IngestMetrics
	logger     *zap.Logger

	client     mqtt.Client // injectable for tests; built from cfg when nil
	subscribed atomic.Bool // set once the boot-time subscribe succeeds
	stopOnce   sync.Once
}

func NewSubscriber(cfg *config.Config, b *bus.Bus, d *Dispatcher, m *telemetry.IngestMetrics, l *zap.Logger) *Subscriber {
	return &Subscriber{
		cfg:        cfg,
		bus:        b,
		dispatcher: d,
		metrics:    m,
		logger:     l,
	}
}

// brokerAddress rewrites the mqtt/mqtts scheme into the tcp/ssl form the paho
// network layer dials.
func brokerAddress(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse broker url: %w", err)
	}
	switch u.Scheme {
	case "mqtt":
		u.Scheme = "tcp"
	case "mqtts":
		u.Scheme = "ssl"
	}
	return u.String(), nil
}

func (s *Subscriber) clientOptions(addr string) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions().
		AddBroker(addr).
		SetClientID(s.cfg.MQTTClientID).
		SetKeepAlive(keepAlive).
		SetConnectTimeout(connectTimeout).
		SetCleanSession(true).
		SetProtocolVersion(4).
		SetAutoReconnect(true).
		SetMaxReconnectInterval(30 * time.Second).
		SetOrderMatters(false)

	if s.cfg.MQTTUsername != "" {
		opts.SetUsername(s.cfg.MQTTUsername)
		opts.SetPassword(s.cfg.MQTTPassword)
	}

	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		s.logger.Warn("mqtt connection lost", zap.Error(err))
	})
	opts.SetReconnectingHandler(func(_ mqtt.Client, _ *mqtt.ClientOptions) {
		s.logger.Info("mqtt reconnecting")
	})
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		// Clean sessions lose subscriptions across reconnects. The boot-time
		// subscribe runs synchronously in Start; this handler only restores
		// the filter set after a reconnect.
		if !s.subscribed.Load() {
			return
		}
		if err := s.subscribe(c); err != nil {
			s.logger.Error("mqtt resubscribe failed", zap.Error(err))
			return
		}
		s.logger.Info("mqtt resubscribed", zap.Int("filters", len(topicFilters)))
	})
	return opts
}

// subscribe issues the full filter set and waits for the acknowledgement.
// A per-filter 0x80 return code in the suback is a rejection even when the
// token itself carries no error.
func (s *Subscriber) subscribe(c mqtt.Client) error {
	token := c.SubscribeMultiple(topicFilters, s.handleMessage)
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("mqtt subscribe: timed out after %s", connectTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt subscribe: %w", err)
	}
	if st, ok := token.(interface{ Result() map[string]byte }); ok {
		for filter, code := range st.Result() {
			if code == 0x80 {
				return fmt.Errorf("mqtt subscribe: broker rejected filter %q", filter)
			}
		}
	}
	return nil
}

// Start connects to the broker and subscribes the full filter set. It returns
// only once the subscription acknowledgements arrive; a rejected filter fails
// the boot instead of leaving the daemon running deaf.
func (s *Subscriber) Start(ctx context.Context) error {
	if s.client == nil {
		addr, err := brokerAddress(s.cfg.MQTTBrokerURL)
		if err != nil {
			return err
		}
		s.client = mqtt.NewClient(s.clientOptions(addr))
	}

	token := s.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("mqtt connect: timed out after %s", connectTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}

	if err := s.subscribe(s.client); err != nil {
		return err
	}
	s.subscribed.Store(true)

	s.logger.Info("mqtt connected",
		zap.String("client_id", s.cfg.MQTTClientID),
		zap.String("broker", s.cfg.MQTTBrokerURL),
		zap.Int("filters", len(topicFilters)),
	)
	return nil
}

// handleMessage decodes, normalizes, and enqueues one broker message. All
// failures end in a logged drop; nothing propagates back into the paho
// router.
func (s *Subscriber) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	ctx := context.Background()
	topic := msg.Topic()

	t := normalize.ParseTopic(topic)
	if t.Kind == "" {
		s.metrics.RecordDrop(ctx, "topic_unmatched")
		s.logger.Warn("message dropped: unmatched topic", zap.String("topic", topic))
		return
	}
	s.metrics.RecordMessage(ctx, t.Kind)

	var decoded interface{}
	err := json.Unmarshal(msg.Payload(), &decoded)
	switch {
	case t.Kind == normalize.KindAvailable && (err != nil || asBareLiteral(decoded)):
		// Availability pings are often bare literals ("online", "1", "true");
		// wrap them so the normalizer sees a regular object.
		decoded = map[string]interface{}{
			"available": strings.TrimSpace(string(msg.Payload())),
		}
	case err != nil:
		s.metrics.RecordDrop(ctx, ErrKindPayloadMalformed)
		s.logger.Warn("message dropped: malformed payload",
			zap.String("topic", topic),
			zap.String("error_kind", ErrKindPayloadMalformed),
		)
		return
	}

	record := normalize.ParseMessage(decoded, topic)
	if record == nil {
		s.metrics.RecordDrop(ctx, ErrKindPayloadInvalid)
		s.logger.Warn("message dropped: invalid payload",
			zap.String("topic", topic),
			zap.String("error_kind", ErrKindPayloadInvalid),
		)
		return
	}

	switch r := record.(type) {
	case *normalize.Event:
		s.dispatcher.Enqueue(func(jctx context.Context) { s.bus.Events.Publish(jctx, r) })
	case *normalize.Review:
		s.dispatcher.Enqueue(func(jctx context.Context) { s.bus.Reviews.Publish(jctx, r) })
	case *normalize.Available:
		s.dispatcher.Enqueue(func(jctx context.Context) { s.bus.Availability.Publish(jctx, r) })
	}
}

// asBareLiteral reports whether a decoded JSON value is a scalar rather than
// an object or array. Scalars only make sense on the availability topic.
func asBareLiteral(v interface{}) bool {
	switch v.(type) {
	case map[string]interface{}, []interface{}:
		return false
	}
	return true
}

// Stop unsubscribes and disconnects. Safe to call more than once; the broker
// stops delivering before the dispatch pool drains.
func (s *Subscriber) Stop() {
	s.stopOnce.Do(func() {
		if s.client == nil {
			return
		}
		if s.client.IsConnected() {
			filters := make([]string, 0, len(topicFilters))
			for f := range topicFilters {
				filters = append(filters, f)
			}
			s.client.Unsubscribe(filters...).WaitTimeout(5 * time.Second)
		}
		s.client.Disconnect(250)
		s.logger.Info("mqtt disconnected")
	})
}
