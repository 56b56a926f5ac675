package testutil

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/elasticsearch"
	"github.com/testcontainers/testcontainers-go/modules/localstack"
)

// Container images used by integration tests.
const (
	ElasticsearchImage = "docker.elastic.co/elasticsearch/elasticsearch:8.15.3"
	LocalStackImage    = "localstack/localstack:3.8"
)

// SearchContainer is a single-node Elasticsearch container with security
// disabled.
type SearchContainer struct {
	Host string
	Port int

	container *elasticsearch.ElasticsearchContainer
}

// StartSearchContainer starts an Elasticsearch container.
//
// Caller is responsible for calling Terminate(ctx) for cleanup.
//
// Parameters:
//   - ctx: Context for container operations
//
// Returns:
//   - *SearchContainer: Container with connection details
//   - error: Error if the container fails to start
func StartSearchContainer(ctx context.Context) (*SearchContainer, error) {
	container, err := elasticsearch.Run(ctx, ElasticsearchImage,
		testcontainers.WithEnv(map[string]string{
			"xpack.security.enabled": "false",
			"ES_JAVA_OPTS":           "-Xms512m -Xmx512m",
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start Elasticsearch container: %w", err)
	}

	u, err := url.Parse(container.Settings.Address)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("invalid Elasticsearch address %q: %w", container.Settings.Address, err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("invalid Elasticsearch port %q: %w", u.Port(), err)
	}

	return &SearchContainer{Host: u.Hostname(), Port: port, container: container}, nil
}

// Terminate terminates the container.
func (c *SearchContainer) Terminate(ctx context.Context) error {
	return c.container.Terminate(ctx)
}

// QueueContainer is a LocalStack container serving SQS.
type QueueContainer struct {
	// Endpoint is the SQS endpoint URL (http://host:port).
	Endpoint string

	container *localstack.LocalStackContainer
}

// StartQueueContainer starts a LocalStack container with SQS enabled.
//
// LocalStack accepts any static credentials; use "test"/"test".
// Caller is responsible for calling Terminate(ctx) for cleanup.
func StartQueueContainer(ctx context.Context) (*QueueContainer, error) {
	container, err := localstack.Run(ctx, LocalStackImage,
		testcontainers.WithEnv(map[string]string{"SERVICES": "sqs"}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start LocalStack container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get LocalStack host: %w", err)
	}
	port, err := container.MappedPort(ctx, "4566/tcp")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get LocalStack port: %w", err)
	}

	return &QueueContainer{
		Endpoint:  fmt.Sprintf("http://%s:%s", host, port.Port()),
		container: container,
	}, nil
}

// Terminate terminates the container.
func (c *QueueContainer) Terminate(ctx context.Context) error {
	return c.container.Terminate(ctx)
}
