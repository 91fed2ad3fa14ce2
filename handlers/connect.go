package handlers

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"github.com/prognoshealth/pathwayai/lambdautils"
	"github.com/prognoshealth/pathwayai/proxy"
	"github.com/prognoshealth/pathwayai/wsevent"
)

// ConnectionStore records open websocket connections.
type ConnectionStore interface {
	Put(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
}

// StatusMessage is the body of every websocket route response.
type StatusMessage struct {
	Message string `json:"message"`
}

const invalidRequest = "Invalid request structure"

func status(code int, message string) (events.APIGatewayProxyResponse, error) {
	return proxy.JSONResponse(code, StatusMessage{Message: message}, nil)
}

// Connect handles $connect by storing the new connection id.
type Connect struct {
	Store ConnectionStore
}

// Handle is the lambda entry point.
func (h *Connect) Handle(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	log := lambdautils.Logger(ctx)

	id, err := wsevent.ConnectionID(request)
	if err != nil {
		log.WithError(err).Error("rejected connect event")
		return status(http.StatusInternalServerError, invalidRequest)
	}

	log = log.WithField("connection_id", id)

	if err := h.Store.Put(ctx, id); err != nil {
		log.WithError(err).Error("failed to store connection")
		return status(http.StatusInternalServerError, "Failed to make connection")
	}

	log.Info("connected")
	return status(http.StatusOK, "Connected successfully")
}

// Disconnect handles $disconnect by deleting the connection id.
type Disconnect struct {
	Store ConnectionStore
}

// Handle is the lambda entry point.
func (h *Disconnect) Handle(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	log := lambdautils.Logger(ctx)

	id, err := wsevent.ConnectionID(request)
	if err != nil {
		log.WithError(err).Error("rejected disconnect event")
		return status(http.StatusBadRequest, invalidRequest)
	}

	log = log.WithField("connection_id", id)

	if err := h.Store.Delete(ctx, id); err != nil {
		log.WithError(err).Error("failed to delete connection")
		return status(http.StatusInternalServerError, "Failed to delete connection")
	}

	log.Info("disconnected")
	return status(http.StatusOK, "Disconnected successfully")
}
