// Package queue provides adapter interfaces for message queue clients.
package queue

import (
	"context"
	"crypto/md5" //nolint:gosec // message checksum, not a security control
	"encoding/hex"
	"errors"
	"time"
)

// Queue defaults.
const (
	DefaultVisibilityTimeout = 10 * time.Second
	DefaultWaitTime          = 10 * time.Second
	DefaultTimeout           = 10 * time.Second

	// MetadataAttribute is the message attribute (or header) carrying the
	// JSON-encoded item metadata.
	MetadataAttribute = "metadata"
)

// ErrQueueExists indicates a create request for a queue name that is taken.
var ErrQueueExists = errors.New("connectors: queue already exists")

// ErrUnknownReceipt indicates a delete for a receipt handle the client never issued.
var ErrUnknownReceipt = errors.New("connectors: unknown receipt handle")

// Config describes how to open a queue client.
type Config struct {
	// Region is the AWS region (SQS only).
	Region string

	// AccessKeyID and SecretAccessKey are static credentials. When empty the
	// transport's default credential chain is used.
	AccessKeyID     string
	SecretAccessKey string

	// SessionToken is an optional session token.
	SessionToken string

	// Endpoint overrides the service endpoint (e.g. LocalStack, or the NATS URL).
	Endpoint string

	// Timeout bounds connection setup.
	Timeout time.Duration

	// VisibilityTimeout is the lease granted to a received item.
	VisibilityTimeout time.Duration

	// WaitTime is the long-poll duration of a receive.
	WaitTime time.Duration
}

// Dialer opens a queue client.
type Dialer func(ctx context.Context, cfg Config) (Client, error)

// Handle identifies a resolved queue (an SQS queue URL or a stream name).
//
// Handles are returned by LookupQueue/CreateQueue and passed explicitly to
// every subsequent call; clients never remember them.
type Handle string

// Sent is the result of a send.
type Sent struct {
	// MessageID is the service-assigned message identifier.
	MessageID string
	// BodyMD5 is the hex MD5 digest of the body.
	BodyMD5 string
}

// Message is a received item.
type Message struct {
	// MessageID is the service-assigned message identifier.
	MessageID string
	// Body is the raw message body.
	Body string
	// Metadata is the raw metadata attribute (JSON), empty if absent.
	Metadata string
	// ReceiptHandle identifies this delivery for Delete.
	ReceiptHandle string
}

// Client is the subset of a queue service API used by connectors.
//
// Every method returns *types.Error on failure.
type Client interface {
	// LookupQueue resolves an existing queue. A missing queue is KindTargetMissing.
	LookupQueue(ctx context.Context, name string) (Handle, error)

	// CreateQueue creates a queue. A conflicting existing queue wraps ErrQueueExists.
	CreateQueue(ctx context.Context, name string) (Handle, error)

	// Send enqueues a body with its metadata.
	Send(ctx context.Context, queue Handle, body, metadata string) (Sent, error)

	// Receive waits up to the configured wait time for one message.
	//
	// Returns:
	//   - *Message: The message, or nil if none arrived
	//   - error: Classified error
	Receive(ctx context.Context, queue Handle) (*Message, error)

	// Delete removes a received message. A stale receipt is KindLeaseExpired.
	Delete(ctx context.Context, queue Handle, receiptHandle string) error

	// Close releases the client.
	Close() error
}

// BodyMD5 returns the hex MD5 digest of body.
func BodyMD5(body string) string {
	sum := md5.Sum([]byte(body)) //nolint:gosec // message checksum
	return hex.EncodeToString(sum[:])
}
