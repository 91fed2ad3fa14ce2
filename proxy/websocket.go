package proxy

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/pkg/errors"

	"github.com/prognoshealth/pathwayai/wsevent"
)

// DefaultRouteKey is the route key api gateway uses when no route selection
// expression matched.
const DefaultRouteKey = "$default"

// WebsocketHandler handles a single api gateway websocket event.
type WebsocketHandler func(context.Context, events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error)

// WebsocketRouter dispatches websocket events by route key. Events arriving
// on $default (or without a route key, as the local gateway sends them) are
// dispatched by the "action" field of their body instead.
type WebsocketRouter struct {
	handlers map[string]WebsocketHandler
	Default  WebsocketHandler
}

// Handle registers handler for routeKey, replacing any previous handler.
func (router *WebsocketRouter) Handle(routeKey string, handler WebsocketHandler) {
	if router.handlers == nil {
		router.handlers = make(map[string]WebsocketHandler)
	}

	if routeKey == DefaultRouteKey {
		router.Default = handler
		return
	}

	router.handlers[routeKey] = handler
}

// RouteKey resolves the key used to dispatch request.
func (router *WebsocketRouter) RouteKey(request events.APIGatewayWebsocketProxyRequest) string {
	key := request.RequestContext.RouteKey
	if key != "" && key != DefaultRouteKey {
		return key
	}

	action, err := wsevent.ParseAction(request)
	if err != nil || action.Action == "" {
		return DefaultRouteKey
	}

	return action.Action
}

// Route executes the handler registered for the request's route key.
func (router *WebsocketRouter) Route(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	key := router.RouteKey(request)

	if handler, ok := router.handlers[key]; ok {
		return handler(ctx, request)
	}

	if router.Default != nil {
		return router.Default(ctx, request)
	}

	return events.APIGatewayProxyResponse{}, errors.Errorf("route '%s' not found", key)
}
