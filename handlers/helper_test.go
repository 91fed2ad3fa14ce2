package handlers

import (
	"context"
	"sync"

	"github.com/aws/aws-lambda-go/events"

	"github.com/prognoshealth/pathwayai/config"
	"github.com/prognoshealth/pathwayai/llm"
	"github.com/prognoshealth/pathwayai/push"
)

type fakeCompleter struct {
	text    string
	err     error
	message string
	profile config.Profile
}

func (f *fakeCompleter) Complete(ctx context.Context, profile config.Profile, message string) (string, error) {
	f.profile = profile
	f.message = message
	return f.text, f.err
}

type fakeStreamer struct {
	deltas  []string
	err     error
	message string
}

func (f *fakeStreamer) Stream(ctx context.Context, profile config.Profile, message string, fn llm.DeltaFunc) error {
	f.message = message
	for _, d := range f.deltas {
		if err := fn(d); err != nil {
			return err
		}
	}
	return f.err
}

type fakeStore struct {
	err       error
	existsErr error
	unknown   bool
	put       []string
	deleted   []string
	checked   []string
}

func (f *fakeStore) Put(ctx context.Context, id string) error {
	f.put = append(f.put, id)
	return f.err
}

func (f *fakeStore) Delete(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return f.err
}

func (f *fakeStore) Exists(ctx context.Context, id string) (bool, error) {
	f.checked = append(f.checked, id)
	return !f.unknown, f.existsErr
}

type fakePusher struct {
	mu     sync.Mutex
	err    error
	frames []push.Frame
}

func (f *fakePusher) Post(ctx context.Context, connectionID string, frame push.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}

	f.frames = append(f.frames, frame)
	return nil
}

// pushers returns a factory handing out p and recording requested endpoints.
func pushers(p push.Pusher, endpoints *[]string) PusherFactory {
	return func(endpoint string) (push.Pusher, error) {
		*endpoints = append(*endpoints, endpoint)
		return p, nil
	}
}

func wsRequest(routeKey, connectionID, body string) events.APIGatewayWebsocketProxyRequest {
	return events.APIGatewayWebsocketProxyRequest{
		Body: body,
		RequestContext: events.APIGatewayWebsocketProxyRequestContext{
			RouteKey:     routeKey,
			ConnectionID: connectionID,
			DomainName:   "sug5qgww0b.execute-api.us-west-2.amazonaws.com",
			Stage:        "Prod",
		},
	}
}

func httpRequest(method, path, body string) events.APIGatewayV2HTTPRequest {
	return events.APIGatewayV2HTTPRequest{
		RawPath: path,
		Body:    body,
		RequestContext: events.APIGatewayV2HTTPRequestContext{
			HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{Method: method},
		},
	}
}
