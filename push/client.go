// Package push sends frames to websocket clients through the api gateway
// management api.
package push

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/client"
	"github.com/aws/aws-sdk-go/service/apigatewaymanagementapi"
	"github.com/aws/aws-sdk-go/service/apigatewaymanagementapi/apigatewaymanagementapiiface"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

// ErrGone is returned when the connection no longer exists.
var ErrGone = errors.New("connection is gone")

// Pusher delivers frames to a single connection.
type Pusher interface {
	Post(ctx context.Context, connectionID string, frame Frame) error
}

// Client posts to connections of one websocket api stage.
type Client struct {
	Endpoint string

	limiter *rate.Limiter
	api     apigatewaymanagementapiiface.ApiGatewayManagementApiAPI
}

// NewClient returns a client for the management api at endpoint
// (https://{api-id}.execute-api.{region}.amazonaws.com/{stage}). A positive
// perSecond caps how often Post may be called.
func NewClient(p client.ConfigProvider, endpoint, region string, perSecond float64) *Client {
	cfg := aws.NewConfig().WithEndpoint(endpoint).WithRegion(region)

	return &Client{
		Endpoint: endpoint,
		limiter:  newLimiter(perSecond),
		api:      apigatewaymanagementapi.New(p, cfg),
	}
}

func newLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}

	return rate.NewLimiter(rate.Limit(perSecond), 1)
}

// Post marshals frame and sends it to the connection.
func (c *Client) Post(ctx context.Context, connectionID string, frame Frame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return errors.Wrap(err, "failed to marshal frame")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return errors.Wrap(err, "push rate limit wait")
	}

	_, err = c.api.PostToConnectionWithContext(ctx, &apigatewaymanagementapi.PostToConnectionInput{
		ConnectionId: aws.String(connectionID),
		Data:         data,
	})

	if aerr, ok := err.(awserr.Error); ok && aerr.Code() == apigatewaymanagementapi.ErrCodeGoneException {
		return errors.Wrapf(ErrGone, "post to %v at %v", connectionID, c.Endpoint)
	}

	return errors.Wrapf(err, "failed post to %v at %v", connectionID, c.Endpoint)
}

// Pool hands out one Client per endpoint so a warm lambda reuses them.
type Pool struct {
	provider  client.ConfigProvider
	region    string
	perSecond float64

	mu      sync.Mutex
	clients map[string]*Client
}

// NewPool returns an empty pool.
func NewPool(p client.ConfigProvider, region string, perSecond float64) *Pool {
	return &Pool{provider: p, region: region, perSecond: perSecond, clients: map[string]*Client{}}
}

// For returns the client for endpoint, creating it on first use.
func (pool *Pool) For(endpoint string) (Pusher, error) {
	if endpoint == "" {
		return nil, errors.New("push endpoint is required")
	}

	pool.mu.Lock()
	defer pool.mu.Unlock()

	c, ok := pool.clients[endpoint]
	if !ok {
		c = NewClient(pool.provider, endpoint, pool.region, pool.perSecond)
		pool.clients[endpoint] = c
	}

	return c, nil
}
