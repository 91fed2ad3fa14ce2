package handlers

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"github.com/prognoshealth/pathwayai/config"
	"github.com/prognoshealth/pathwayai/lambdautils"
	"github.com/prognoshealth/pathwayai/llm"
	"github.com/prognoshealth/pathwayai/proxy"
)

// ChatPath is the http route of the chat endpoint.
const ChatPath = "/chat"

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the success body of POST /chat.
type ChatResponse struct {
	Response string `json:"response"`
}

// ErrorResponse is the failure body of POST /chat.
type ErrorResponse struct {
	Error string `json:"error"`
}

const (
	missingMessage = `Missing "message" in request body`
	invalidBody    = "Invalid JSON in request body"
	internalError  = "Internal server error"
)

// Chat answers POST /chat with a single, non streamed completion.
type Chat struct {
	Completer llm.Completer
	Profile   config.Profile

	router *proxy.Router
}

// NewChat builds the chat handler and its routes.
func NewChat(completer llm.Completer, profile config.Profile) (*Chat, error) {
	c := &Chat{Completer: completer, Profile: profile}

	router := &proxy.Router{Headers: proxy.CORSHeaders()}
	router.POST(ChatPath, c.post)
	router.OPTIONS(ChatPath, c.preflight)
	router.AddErrorHandler(c.failed)

	if !router.Valid() {
		return nil, router.BuildErrors()
	}

	c.router = router
	return c, nil
}

// Handle is the lambda entry point.
func (c *Chat) Handle(ctx context.Context, request events.APIGatewayV2HTTPRequest) (events.APIGatewayProxyResponse, error) {
	return c.router.Route(ctx, request)
}

func respond(status int, v interface{}) (events.APIGatewayProxyResponse, error) {
	return proxy.JSONResponse(status, v, nil)
}

func (c *Chat) post(rctx *proxy.RouteContext) (events.APIGatewayProxyResponse, error) {
	log := lambdautils.Logger(rctx.Context)

	var req ChatRequest
	if err := rctx.JSON(&req); err != nil {
		log.WithError(err).Warn("rejected chat request")
		return respond(http.StatusBadRequest, ErrorResponse{Error: invalidBody})
	}

	if req.Message == "" {
		return respond(http.StatusBadRequest, ErrorResponse{Error: missingMessage})
	}

	log.WithField("model", c.Profile.Model).Debug("chat request")

	text, err := c.Completer.Complete(rctx.Context, c.Profile, req.Message)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	return respond(http.StatusOK, ChatResponse{Response: text})
}

func (c *Chat) preflight(*proxy.RouteContext) (events.APIGatewayProxyResponse, error) {
	return events.APIGatewayProxyResponse{StatusCode: http.StatusOK}, nil
}

func (c *Chat) failed(ctx context.Context, request events.APIGatewayV2HTTPRequest, err error) (events.APIGatewayProxyResponse, error) {
	code := proxy.StatusFor(err)
	if code != http.StatusInternalServerError {
		return respond(code, ErrorResponse{Error: http.StatusText(code)})
	}

	lambdautils.Logger(ctx).WithError(err).Error("error handling chat interaction")
	return respond(code, ErrorResponse{Error: internalError})
}
