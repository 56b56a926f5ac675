// Package sqs provides a queue adapter for Amazon SQS
// (github.com/aws/aws-sdk-go-v2/service/sqs).
package sqs

import (
	"context"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/squashedelephant/connectors/adapter/queue"
	"github.com/squashedelephant/connectors/types"
)

var (
	_ queue.Dialer = Dial
	_ queue.Client = (*Client)(nil)
	_ API          = (*sqs.Client)(nil)
)

// API is the subset of *sqs.Client used by the adapter.
type API interface {
	GetQueueUrl(ctx context.Context, in *sqs.GetQueueUrlInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error)
	CreateQueue(ctx context.Context, in *sqs.CreateQueueInput, optFns ...func(*sqs.Options)) (*sqs.CreateQueueOutput, error)
	SendMessage(ctx context.Context, in *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, in *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, in *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// Dial creates an SQS client.
//
// Static credentials are used when cfg.AccessKeyID is set, otherwise the
// default AWS credential chain. cfg.Endpoint overrides the service endpoint.
// No credential refresh is attempted: expired credentials surface as
// KindCredentials.
//
// Parameters:
//   - ctx: Context for loading the AWS configuration
//   - cfg: Client configuration
//
// Returns:
//   - queue.Client: The client
//   - error: Classified error
func Dial(ctx context.Context, cfg queue.Config) (queue.Client, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, types.NewError(types.KindCredentials, "connect", err)
	}

	api := sqs.NewFromConfig(awsCfg, func(o *sqs.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return NewClient(api, cfg), nil
}

// Client wraps an SQS API.
type Client struct {
	api               API
	visibilityTimeout int32
	waitTime          int32
}

// NewClient creates an adapter from an SQS API.
//
// Parameters:
//   - api: An SQS client (or a test double)
//   - cfg: Queue configuration supplying lease and wait durations
//
// Returns:
//   - *Client: An adapter implementing queue.Client
func NewClient(api API, cfg queue.Config) *Client {
	visibility := cfg.VisibilityTimeout
	if visibility <= 0 {
		visibility = queue.DefaultVisibilityTimeout
	}
	wait := cfg.WaitTime
	if wait < 0 {
		wait = queue.DefaultWaitTime
	}

	return &Client{
		api:               api,
		visibilityTimeout: int32(visibility.Seconds()),
		waitTime:          int32(wait.Seconds()),
	}
}

// LookupQueue resolves a queue URL by name.
func (c *Client) LookupQueue(ctx context.Context, name string) (queue.Handle, error) {
	out, err := c.api.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{QueueName: aws.String(name)})
	if err != nil {
		return "", classify("lookup_queue", err)
	}

	return queue.Handle(aws.ToString(out.QueueUrl)), nil
}

// CreateQueue creates a queue with the configured lease and wait attributes.
func (c *Client) CreateQueue(ctx context.Context, name string) (queue.Handle, error) {
	out, err := c.api.CreateQueue(ctx, &sqs.CreateQueueInput{
		QueueName: aws.String(name),
		Attributes: map[string]string{
			string(sqstypes.QueueAttributeNameVisibilityTimeout):             strconv.Itoa(int(c.visibilityTimeout)),
			string(sqstypes.QueueAttributeNameReceiveMessageWaitTimeSeconds): strconv.Itoa(int(c.waitTime)),
		},
	})
	if err != nil {
		return "", classify("create_queue", err)
	}

	return queue.Handle(aws.ToString(out.QueueUrl)), nil
}

// Send enqueues a message with metadata as a string attribute.
func (c *Client) Send(ctx context.Context, h queue.Handle, body, metadata string) (queue.Sent, error) {
	in := &sqs.SendMessageInput{
		QueueUrl:    aws.String(string(h)),
		MessageBody: aws.String(body),
	}
	if metadata != "" {
		in.MessageAttributes = map[string]sqstypes.MessageAttributeValue{
			queue.MetadataAttribute: {
				DataType:    aws.String("String"),
				StringValue: aws.String(metadata),
			},
		}
	}

	out, err := c.api.SendMessage(ctx, in)
	if err != nil {
		return queue.Sent{}, classify("send", err)
	}

	return queue.Sent{
		MessageID: aws.ToString(out.MessageId),
		BodyMD5:   aws.ToString(out.MD5OfMessageBody),
	}, nil
}

// Receive long-polls for a single message.
func (c *Client) Receive(ctx context.Context, h queue.Handle) (*queue.Message, error) {
	out, err := c.api.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:              aws.String(string(h)),
		MaxNumberOfMessages:   1,
		VisibilityTimeout:     c.visibilityTimeout,
		WaitTimeSeconds:       c.waitTime,
		MessageAttributeNames: []string{queue.MetadataAttribute},
	})
	if err != nil {
		return nil, classify("receive", err)
	}
	if len(out.Messages) == 0 {
		return nil, nil
	}

	m := out.Messages[0]
	msg := &queue.Message{
		MessageID:     aws.ToString(m.MessageId),
		Body:          aws.ToString(m.Body),
		ReceiptHandle: aws.ToString(m.ReceiptHandle),
	}
	if attr, ok := m.MessageAttributes[queue.MetadataAttribute]; ok {
		msg.Metadata = aws.ToString(attr.StringValue)
	}

	return msg, nil
}

// Delete removes a received message.
func (c *Client) Delete(ctx context.Context, h queue.Handle, receiptHandle string) error {
	_, err := c.api.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(string(h)),
		ReceiptHandle: aws.String(receiptHandle),
	})
	if err != nil {
		return classify("delete", err)
	}

	return nil
}

// Close is a no-op: SQS clients are stateless HTTP clients.
func (c *Client) Close() error {
	return nil
}
