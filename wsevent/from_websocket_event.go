package wsevent

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/pkg/errors"
)

// ConnectionIDAction is sent by the browser client right after the socket
// opens to learn its own connection id.
const ConnectionIDAction = "getConnectionId"

// ErrMissingConnectionID is returned when the event carries no request
// context connection id.
var ErrMissingConnectionID = errors.New("missing connection id in request context")

// Action is the json payload a websocket client sends, for example
// {"action": "sendMessage", "message": "..."}.
type Action struct {
	Action  string `json:"action"`
	Message string `json:"message"`
}

// ConnectionID extracts the id api gateway assigned to the calling socket.
func ConnectionID(request events.APIGatewayWebsocketProxyRequest) (string, error) {
	id := request.RequestContext.ConnectionID
	if id == "" {
		return "", ErrMissingConnectionID
	}

	return id, nil
}

// Body returns the event body, base64 decoded when needed.
func Body(request events.APIGatewayWebsocketProxyRequest) (string, error) {
	if !request.IsBase64Encoded {
		return request.Body, nil
	}

	b, err := base64.StdEncoding.DecodeString(request.Body)
	if err != nil {
		return "", errors.Wrap(err, "unable to decode websocket body")
	}

	return string(b), nil
}

// ParseAction unmarshals the event body. A missing body is treated as {}.
func ParseAction(request events.APIGatewayWebsocketProxyRequest) (Action, error) {
	var action Action

	body, err := Body(request)
	if err != nil {
		return action, err
	}

	if strings.TrimSpace(body) == "" {
		return action, nil
	}

	if err := json.Unmarshal([]byte(body), &action); err != nil {
		return action, errors.Wrapf(err, "failed to unmarshal websocket body for connection %q", request.RequestContext.ConnectionID)
	}

	return action, nil
}

// Endpoint derives the management api endpoint (https://{domain}/{stage})
// used to push data back to the connection that sent request.
func Endpoint(request events.APIGatewayWebsocketProxyRequest) (string, error) {
	domain := request.RequestContext.DomainName
	if domain == "" {
		return "", errors.New("missing domain name in request context")
	}

	stage := request.RequestContext.Stage
	if stage == "" {
		return fmt.Sprintf("https://%s", domain), nil
	}

	return fmt.Sprintf("https://%s/%s", domain, stage), nil
}
