package connectors

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/squashedelephant/connectors/adapter/queue"
	"github.com/squashedelephant/connectors/types"
)

// Item field names.
const (
	ItemBody     = "body"
	ItemMetadata = "metadata"
)

// QueueConnector submits and consumes items on an SQS queue or a NATS
// JetStream work-queue stream.
//
// Every call dials its own client, resolves the queue (creating it when
// DisableAutoCreate is unset), closes the client before returning and reports the
// outcome as an Envelope in the 4000 range.
//
// # Thread Safety
//
// QueueConnector holds only immutable configuration and is safe for
// concurrent use from multiple goroutines.
type QueueConnector struct {
	cfg  QueueConfig
	opts *Options
	dial queue.Dialer
}

// NewQueueConnector creates a queue connector.
//
// Unset fields of cfg take the values of DefaultQueueConfig.
//
// Parameters:
//   - cfg: Connection configuration
//   - opts: Optional configuration options
//
// Returns:
//   - *QueueConnector: A new connector
//   - error: Validation error
func NewQueueConnector(cfg QueueConfig, opts ...Option) (*QueueConnector, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := buildOptions(opts)

	return &QueueConnector{
		cfg:  cfg,
		opts: o,
		dial: queueDialer(o, cfg.Transport),
	}, nil
}

// Config returns a copy of the connector's configuration.
func (c *QueueConnector) Config() QueueConfig {
	cfg := c.cfg
	cfg.ConnectionConfig = cfg.clone()

	return cfg
}

// CreateQueue creates a queue. Creating an existing queue succeeds.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - name: Queue name
//
// Returns:
//   - types.Envelope: QueueCreated with no data
func (c *QueueConnector) CreateQueue(ctx context.Context, name string) types.Envelope {
	return c.run(ctx, "create_queue", name, nil, func(client queue.Client) (types.Envelope, error) {
		if _, err := c.resolve(ctx, client, name, true); err != nil {
			return types.Envelope{}, err
		}

		return types.NewEnvelope(types.QueueCreated, "queue created successfully"), nil
	})
}

// ValidateItem checks that item is a mapping holding both a body and a
// metadata field. It performs no network call.
//
// Parameters:
//   - item: Candidate item
//
// Returns:
//   - error: nil if valid, a KindInvalidItem *types.Error otherwise
func (c *QueueConnector) ValidateItem(item any) error {
	m, ok := item.(map[string]any)
	if !ok {
		return types.NewError(types.KindInvalidItem, "validate", fmt.Errorf("item is %T, not a mapping", item))
	}
	for _, key := range []string{ItemBody, ItemMetadata} {
		if _, ok := m[key]; !ok {
			return types.NewError(types.KindInvalidItem, "validate", fmt.Errorf("missing %q", key))
		}
	}

	return nil
}

// Insert submits an item.
//
// A string body is sent as-is; any other body is JSON-encoded. Metadata is
// JSON-encoded into the "metadata" message attribute.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - name: Queue name
//   - item: Mapping with "body" and "metadata"
//
// Returns:
//   - types.Envelope: QueueItemSubmitted with one record holding body,
//     metadata, message_id and md5_of_body
func (c *QueueConnector) Insert(ctx context.Context, name string, item any) types.Envelope {
	if err := c.ValidateItem(item); err != nil {
		env := types.Failure(types.QueueInvalidItem, fmt.Sprintf("item: %v has invalid format", item))
		c.opts.begin(types.BackendQueue, "insert", "queue", name).finish(env)

		return env
	}

	rec := item.(map[string]any)

	return c.run(ctx, "insert", name, rec, func(client queue.Client) (types.Envelope, error) {
		body, err := encodeBody(rec[ItemBody])
		if err != nil {
			return types.Envelope{}, types.NewError(types.KindInvalidItem, "encode", err)
		}
		metadata, err := json.Marshal(rec[ItemMetadata])
		if err != nil {
			return types.Envelope{}, types.NewError(types.KindInvalidItem, "encode", err)
		}

		h, err := c.resolve(ctx, client, name, false)
		if err != nil {
			return types.Envelope{}, err
		}

		sent, err := client.Send(ctx, h, body, string(metadata))
		if err != nil {
			return types.Envelope{}, err
		}

		return types.NewEnvelope(types.QueueItemSubmitted,
			fmt.Sprintf("MessageId: %s sent with signature: %s", sent.MessageID, sent.BodyMD5),
			types.Record{
				ItemBody:      rec[ItemBody],
				ItemMetadata:  rec[ItemMetadata],
				"message_id":  sent.MessageID,
				"md5_of_body": sent.BodyMD5,
			}), nil
	})
}

// Get receives one item and deletes it before returning it.
//
// Consumption is at-most-once but not atomic: an item whose delete is
// rejected (its lease expired) is reported as QueueLeaseExpired and will be
// redelivered.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - name: Queue name
//
// Returns:
//   - types.Envelope: QueueItemReceived with one record holding body,
//     metadata and message_id, or QueueNoItem when nothing arrived within
//     the wait time
func (c *QueueConnector) Get(ctx context.Context, name string) types.Envelope {
	return c.run(ctx, "get", name, nil, func(client queue.Client) (types.Envelope, error) {
		h, err := c.resolve(ctx, client, name, false)
		if err != nil {
			return types.Envelope{}, err
		}

		msg, err := client.Receive(ctx, h)
		if err != nil {
			return types.Envelope{}, err
		}
		if msg == nil {
			return types.NewEnvelope(types.QueueNoItem, "No item retrieved"), nil
		}

		if err := client.Delete(ctx, h, msg.ReceiptHandle); err != nil {
			return types.Envelope{}, err
		}

		return types.NewEnvelope(types.QueueItemReceived,
			fmt.Sprintf("Message retrieved with metadata: %s", msg.Metadata),
			types.Record{
				ItemBody:     msg.Body,
				ItemMetadata: decodeMetadata(msg.Metadata),
				"message_id": msg.MessageID,
			}), nil
	})
}

// resolve returns the handle of the named queue.
//
// Unless create is set the queue is looked up first; a missing queue is
// created unless DisableAutoCreate is set. A create that reports the name
// as taken falls back to a lookup.
func (c *QueueConnector) resolve(ctx context.Context, client queue.Client, name string, create bool) (queue.Handle, error) {
	if !create {
		h, err := client.LookupQueue(ctx, name)
		if err == nil || types.KindOf(err) != types.KindTargetMissing || c.cfg.DisableAutoCreate {
			return h, err
		}
	}

	h, err := client.CreateQueue(ctx, name)
	if errors.Is(err, queue.ErrQueueExists) {
		return client.LookupQueue(ctx, name)
	}
	if err == nil {
		c.opts.Logger.Info("queue created", "queue", name)
	}

	return h, err
}

func (c *QueueConnector) run(
	ctx context.Context,
	op, name string,
	item types.Record,
	fn func(queue.Client) (types.Envelope, error),
) (env types.Envelope) {
	call := c.opts.begin(types.BackendQueue, op, "queue", name)
	defer func() { call.finish(env) }()
	defer func() {
		if r := recover(); r != nil {
			env = types.Failure(types.QueueUnknown, diagnose(recovered(r), "queue", name, "item", item))
		}
	}()

	client, err := c.dial(ctx, c.cfg.adapterConfig())
	if err != nil {
		call.sessionError("setup", err)
		return c.failure(err, name, item)
	}
	defer func() {
		if err := client.Close(); err != nil {
			call.sessionError("teardown", err)
			if env.OK() {
				env = c.failure(err, name, item)
			}
		}
	}()

	env, err = fn(client)
	if err != nil {
		return c.failure(err, name, item)
	}

	return env
}

func (c *QueueConnector) failure(err error, name string, item types.Record) types.Envelope {
	switch types.KindOf(err) {
	case types.KindCredentials:
		return types.Failure(types.QueueCredentials, fmt.Sprintf(
			"Credentials {aws_region: %s, aws_access_key_id: %s, aws_secret_access_key: %s} expired",
			c.cfg.Region, c.cfg.AccessKeyID, redact(c.cfg.SecretAccessKey)))
	case types.KindClockSkew:
		return types.Failure(types.QueueClockSkew, "container time out of sync with SQS queue: "+name)
	case types.KindLeaseExpired:
		return types.Failure(types.QueueLeaseExpired, "Requested lease time expired")
	case types.KindTargetMissing:
		return types.Failure(types.QueueMissing, fmt.Sprintf("queue: %s does not exist", name))
	case types.KindInvalidItem:
		return types.Failure(types.QueueInvalidItem, fmt.Sprintf("item: %v has invalid format", item))
	default:
		return types.Failure(types.QueueUnknown, diagnose(err, "queue", name, "item", item))
	}
}

func encodeBody(body any) (string, error) {
	if s, ok := body.(string); ok {
		return s, nil
	}

	b, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	return string(b), nil
}

// decodeMetadata parses the metadata attribute; text that is not JSON is
// returned unchanged.
func decodeMetadata(raw string) any {
	if raw == "" {
		return nil
	}

	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}

	return v
}

func redact(secret string) string {
	if secret == "" {
		return ""
	}

	return "****"
}
