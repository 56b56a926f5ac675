// Package jetstream provides a queue adapter for NATS JetStream
// (github.com/nats-io/nats.go/jetstream).
//
// Each queue is a stream with work-queue retention bound to the subject
// "connectors.<queue>". Items are received through a durable pull consumer
// whose ack wait is the configured visibility timeout; deleting an item acks
// it.
package jetstream

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/squashedelephant/connectors/adapter/queue"
	"github.com/squashedelephant/connectors/types"
)

var (
	_ queue.Dialer = Dial
	_ queue.Client = (*Client)(nil)
)

const (
	// SubjectPrefix prefixes the subject of every queue stream.
	SubjectPrefix = "connectors"

	// ConsumerName is the durable pull consumer shared by all receivers.
	ConsumerName = "connectors-worker"
)

// Dial connects to a NATS server.
//
// cfg.Endpoint is the server URL (nats.DefaultURL when empty). When
// cfg.AccessKeyID is set it is used with cfg.SecretAccessKey as user
// credentials; cfg.SessionToken is sent as a token.
//
// Parameters:
//   - ctx: Context checked before connecting
//   - cfg: Queue configuration
//
// Returns:
//   - queue.Client: The client
//   - error: Classified connection error
func Dial(ctx context.Context, cfg queue.Config) (queue.Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, classify("connect", err)
	}

	url := cfg.Endpoint
	if url == "" {
		url = nats.DefaultURL
	}

	opts := []nats.Option{nats.Name("connectors")}
	if cfg.Timeout > 0 {
		opts = append(opts, nats.Timeout(cfg.Timeout))
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, nats.UserInfo(cfg.AccessKeyID, cfg.SecretAccessKey))
	}
	if cfg.SessionToken != "" {
		opts = append(opts, nats.Token(cfg.SessionToken))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, classify("connect", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, classify("connect", err)
	}

	c := NewClient(js, cfg)
	c.nc = nc

	return c, nil
}

// Client wraps a JetStream context.
type Client struct {
	js                jetstream.JetStream
	nc                *nats.Conn
	visibilityTimeout time.Duration
	waitTime          time.Duration

	mu       sync.Mutex
	inflight map[string]jetstream.Msg
}

// NewClient creates an adapter from a JetStream context.
//
// Parameters:
//   - js: A JetStream context (created via jetstream.New(conn))
//   - cfg: Queue configuration supplying lease and wait durations
//
// Returns:
//   - *Client: An adapter implementing queue.Client
func NewClient(js jetstream.JetStream, cfg queue.Config) *Client {
	visibility := cfg.VisibilityTimeout
	if visibility <= 0 {
		visibility = queue.DefaultVisibilityTimeout
	}

	return &Client{
		js:                js,
		visibilityTimeout: visibility,
		waitTime:          cfg.WaitTime,
		inflight:          make(map[string]jetstream.Msg),
	}
}

// Subject returns the subject bound to a queue stream.
func Subject(name string) string {
	return SubjectPrefix + "." + name
}

// LookupQueue resolves an existing stream.
func (c *Client) LookupQueue(ctx context.Context, name string) (queue.Handle, error) {
	if _, err := c.js.Stream(ctx, name); err != nil {
		return "", classify("lookup_queue", err)
	}

	return queue.Handle(name), nil
}

// CreateQueue creates a work-queue stream.
func (c *Client) CreateQueue(ctx context.Context, name string) (queue.Handle, error) {
	_, err := c.js.CreateStream(ctx, jetstream.StreamConfig{
		Name:      name,
		Subjects:  []string{Subject(name)},
		Retention: jetstream.WorkQueuePolicy,
		Storage:   jetstream.FileStorage,
	})
	if err != nil {
		return "", classify("create_queue", err)
	}

	return queue.Handle(name), nil
}

// Send publishes a message with metadata in a header.
func (c *Client) Send(ctx context.Context, h queue.Handle, body, metadata string) (queue.Sent, error) {
	msg := nats.NewMsg(Subject(string(h)))
	msg.Data = []byte(body)
	if metadata != "" {
		msg.Header.Set(queue.MetadataAttribute, metadata)
	}

	ack, err := c.js.PublishMsg(ctx, msg)
	if err != nil {
		return queue.Sent{}, classify("send", err)
	}

	return queue.Sent{
		MessageID: strconv.FormatUint(ack.Sequence, 10),
		BodyMD5:   queue.BodyMD5(body),
	}, nil
}

// Receive fetches at most one message from the durable consumer.
func (c *Client) Receive(ctx context.Context, h queue.Handle) (*queue.Message, error) {
	cons, err := c.js.CreateOrUpdateConsumer(ctx, string(h), jetstream.ConsumerConfig{
		Durable:       ConsumerName,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       c.visibilityTimeout,
		DeliverPolicy: jetstream.DeliverAllPolicy,
	})
	if err != nil {
		return nil, classify("receive", err)
	}

	var batch jetstream.MessageBatch
	if c.waitTime > 0 {
		batch, err = cons.Fetch(1, jetstream.FetchMaxWait(c.waitTime))
	} else {
		batch, err = cons.FetchNoWait(1)
	}
	if err != nil {
		if errors.Is(err, jetstream.ErrNoMessages) {
			return nil, nil
		}

		return nil, classify("receive", err)
	}

	var received jetstream.Msg
	for m := range batch.Messages() {
		received = m
	}
	if err := batch.Error(); err != nil && !errors.Is(err, jetstream.ErrNoMessages) &&
		!errors.Is(err, nats.ErrTimeout) {
		return nil, classify("receive", err)
	}
	if received == nil {
		return nil, nil
	}

	meta, err := received.Metadata()
	if err != nil {
		return nil, classify("receive", err)
	}

	receipt := received.Reply()
	c.mu.Lock()
	c.inflight[receipt] = received
	c.mu.Unlock()

	return &queue.Message{
		MessageID:     strconv.FormatUint(meta.Sequence.Stream, 10),
		Body:          string(received.Data()),
		Metadata:      received.Headers().Get(queue.MetadataAttribute),
		ReceiptHandle: receipt,
	}, nil
}

// Delete acknowledges a received message.
func (c *Client) Delete(ctx context.Context, _ queue.Handle, receiptHandle string) error {
	c.mu.Lock()
	msg, ok := c.inflight[receiptHandle]
	delete(c.inflight, receiptHandle)
	c.mu.Unlock()

	if !ok {
		return types.NewError(types.KindLeaseExpired, "delete", queue.ErrUnknownReceipt)
	}
	if err := msg.DoubleAck(ctx); err != nil {
		return classify("delete", err)
	}

	return nil
}

// Close drains the connection if the client owns it.
func (c *Client) Close() error {
	if c.nc == nil {
		return nil
	}
	if err := c.nc.Drain(); err != nil {
		return classify("close", err)
	}

	return nil
}

func classify(op string, err error) error {
	var classified *types.Error
	if errors.As(err, &classified) {
		return err
	}

	switch {
	case errors.Is(err, jetstream.ErrStreamNameAlreadyInUse):
		return types.NewError(types.KindInvalidRequest, op, fmt.Errorf("%w: %w", queue.ErrQueueExists, err))
	case errors.Is(err, jetstream.ErrStreamNotFound):
		return types.NewError(types.KindTargetMissing, op, err)
	case errors.Is(err, jetstream.ErrMsgAlreadyAckd), errors.Is(err, jetstream.ErrMsgNotBound):
		return types.NewError(types.KindLeaseExpired, op, err)
	case errors.Is(err, nats.ErrAuthorization), errors.Is(err, nats.ErrAuthExpired),
		errors.Is(err, nats.ErrAuthRevoked), errors.Is(err, nats.ErrPermissionViolation):
		return types.NewError(types.KindCredentials, op, err)
	case errors.Is(err, nats.ErrNoServers), errors.Is(err, nats.ErrConnectionClosed),
		errors.Is(err, jetstream.ErrJetStreamNotEnabled):
		return types.NewError(types.KindUnreachable, op, err)
	case errors.Is(err, nats.ErrTimeout), types.IsDeadline(err):
		return types.NewError(types.KindTimeout, op, err)
	default:
		return types.NewError(types.KindUnknown, op, err)
	}
}
