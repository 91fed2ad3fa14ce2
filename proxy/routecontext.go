package proxy

import (
	"context"
	"encoding/base64"
	"encoding/json"

	"github.com/aws/aws-lambda-go/events"
	"github.com/pkg/errors"
)

// RouteContext contains all the request information for a route when matched.
type RouteContext struct {
	Context context.Context
	Request events.APIGatewayV2HTTPRequest
	Params  map[string]string
}

// Body returns the request body, base64 decoded when the gateway encoded it.
func (ctx *RouteContext) Body() (string, error) {
	if !ctx.Request.IsBase64Encoded {
		return ctx.Request.Body, nil
	}

	b, err := base64.StdEncoding.DecodeString(ctx.Request.Body)
	if err != nil {
		return "", errors.Wrapf(err, "unable to decode request body for %s %s", ctx.Request.RequestContext.HTTP.Method, ctx.Request.RawPath)
	}

	return string(b), nil
}

// JSON decodes the request body into v. An empty body decodes as {}.
func (ctx *RouteContext) JSON(v interface{}) error {
	body, err := ctx.Body()
	if err != nil {
		return err
	}

	if body == "" {
		body = "{}"
	}

	if err := json.Unmarshal([]byte(body), v); err != nil {
		return errors.Wrap(err, "unable to unmarshal request body")
	}

	return nil
}
