package handlers

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/prognoshealth/pathwayai/lambdautils"
	"github.com/prognoshealth/pathwayai/proxy"
	"github.com/prognoshealth/pathwayai/push"
	"github.com/prognoshealth/pathwayai/relay"
	"github.com/prognoshealth/pathwayai/wsevent"
)

// Route keys served by SendMessage.
const (
	SendMessageRoute = "sendMessage"
	LessonPlanRoute  = "lessonPlan"
)

// PusherFactory returns the pusher for a websocket api endpoint.
type PusherFactory func(endpoint string) (push.Pusher, error)

// ErrUnknownConnection is returned for events from a connection that has no
// live row in the connection store.
var ErrUnknownConnection = errors.New("unknown connection")

// SendMessage relays completions to the websocket that asked for them. Only
// connections present in Store are answered.
type SendMessage struct {
	Store      ConnectionStore
	Chat       *relay.Relay
	LessonPlan *relay.Relay
	Pushers    PusherFactory

	// Endpoint overrides the push endpoint derived from each event.
	Endpoint string
}

type relayFunc func(ctx context.Context, pusher push.Pusher, connectionID, message string) (relay.Stats, error)

// target resolves who a websocket event came from and how to answer it.
func (h *SendMessage) target(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (string, push.Pusher, error) {
	id, err := wsevent.ConnectionID(request)
	if err != nil {
		return "", nil, err
	}

	live, err := h.Store.Exists(ctx, id)
	if err != nil {
		return "", nil, err
	}

	if !live {
		return "", nil, errors.Wrapf(ErrUnknownConnection, "connection %s", id)
	}

	endpoint := h.Endpoint
	if endpoint == "" {
		if endpoint, err = wsevent.Endpoint(request); err != nil {
			return "", nil, err
		}
	}

	pusher, err := h.Pushers(endpoint)
	if err != nil {
		return "", nil, errors.Wrapf(err, "no pusher for %s", endpoint)
	}

	return id, pusher, nil
}

func (h *SendMessage) run(ctx context.Context, request events.APIGatewayWebsocketProxyRequest, run relayFunc, failure string) (events.APIGatewayProxyResponse, error) {
	log := lambdautils.Logger(ctx).WithField("route", request.RequestContext.RouteKey)

	id, pusher, err := h.target(ctx, request)
	if err != nil {
		log.WithError(err).Error("rejected message event")
		return status(http.StatusInternalServerError, invalidRequest)
	}

	log = log.WithField("connection_id", id)

	action, err := wsevent.ParseAction(request)
	if err != nil {
		log.WithError(err).Warn("rejected message body")
		return status(http.StatusBadRequest, invalidBody)
	}

	if action.Message == "" {
		return status(http.StatusBadRequest, missingMessage)
	}

	stats, err := run(ctx, pusher, id, action.Message)
	if err != nil {
		log.WithError(err).WithFields(statsFields(stats)).Error("streaming failed")
		notify(ctx, log, pusher, id, err, failure)
		return status(http.StatusInternalServerError, failure)
	}

	log.WithFields(statsFields(stats)).Info("streaming complete")
	return events.APIGatewayProxyResponse{StatusCode: http.StatusOK}, nil
}

// notify tells a still connected client that its request failed, since the
// route response never reaches it.
func notify(ctx context.Context, log *logrus.Entry, pusher push.Pusher, id string, cause error, message string) {
	if errors.Cause(cause) == push.ErrGone {
		return
	}

	if err := pusher.Post(ctx, id, push.Frame{Error: message}); err != nil {
		log.WithError(err).Warn("failed to push error frame")
	}
}

func statsFields(stats relay.Stats) logrus.Fields {
	return logrus.Fields{"deltas": stats.Deltas, "frames": stats.Frames, "bytes": stats.Bytes}
}

// HandleSendMessage streams a chat completion as {"message": ...} frames.
func (h *SendMessage) HandleSendMessage(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	return h.run(ctx, request, h.Chat.Run, "Failed to generate AI response")
}

// HandleLessonPlan answers with a single {"lesson_plan": {...}} frame.
func (h *SendMessage) HandleLessonPlan(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	return h.run(ctx, request, h.LessonPlan.RunLessonPlan, "Failed to generate lesson plan")
}

// HandleConnectionID pushes the caller's own connection id back to it.
func (h *SendMessage) HandleConnectionID(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	log := lambdautils.Logger(ctx)

	id, pusher, err := h.target(ctx, request)
	if err != nil {
		log.WithError(err).Error("rejected connection id event")
		return status(http.StatusInternalServerError, invalidRequest)
	}

	if err := pusher.Post(ctx, id, push.Frame{ConnectionID: id}); err != nil {
		log.WithError(err).WithField("connection_id", id).Error("failed to push connection id")
		return status(http.StatusInternalServerError, "Failed to send connection id")
	}

	return events.APIGatewayProxyResponse{StatusCode: http.StatusOK}, nil
}

// Router wires the message routes. Unknown actions are treated as
// sendMessage, which is how the first clients called the api.
func (h *SendMessage) Router() *proxy.WebsocketRouter {
	router := &proxy.WebsocketRouter{}
	router.Handle(SendMessageRoute, h.HandleSendMessage)
	router.Handle(LessonPlanRoute, h.HandleLessonPlan)
	router.Handle(wsevent.ConnectionIDAction, h.HandleConnectionID)
	router.Handle(proxy.DefaultRouteKey, h.HandleSendMessage)
	return router
}

// WebsocketRouter wires every websocket route, for hosts that serve them all
// from one process.
func WebsocketRouter(connect *Connect, disconnect *Disconnect, send *SendMessage) *proxy.WebsocketRouter {
	router := send.Router()
	router.Handle("$connect", connect.Handle)
	router.Handle("$disconnect", disconnect.Handle)
	return router
}
