package proxy

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aws/aws-lambda-go/events"
	"github.com/pkg/errors"
)

// RouteHandler answers a request matched by a route.
type RouteHandler func(*RouteContext) (events.APIGatewayProxyResponse, error)

// Route pairs a method with an anchored path pattern.
type Route struct {
	Method  HttpMethod
	Regex   *regexp.Regexp
	Handler RouteHandler
}

// NewRoute compiles pattern into a route. The pattern must match the whole
// path; a trailing slash is tolerated. Named groups become RouteContext.Params.
func NewRoute(method HttpMethod, pattern string, handler RouteHandler) (*Route, error) {
	rx, err := regexp.Compile("^" + pattern + "/?$")
	if err != nil {
		return nil, errors.Wrapf(err, "failed compiling regex pattern '%s'", pattern)
	}

	return &Route{Method: method, Regex: rx, Handler: handler}, nil
}

func (route *Route) String() string {
	return fmt.Sprintf("%s %s", route.Method, route.Regex)
}

// Match reports whether request is for this route and returns the values of
// the named groups that matched.
func (route *Route) Match(request events.APIGatewayV2HTTPRequest) (map[string]string, bool) {
	if route.Method.String() != request.RequestContext.HTTP.Method {
		return nil, false
	}

	groups := route.Regex.FindStringSubmatch(request.RawPath)
	if groups == nil {
		return nil, false
	}

	params := map[string]string{}
	for i, name := range route.Regex.SubexpNames() {
		if name != "" && groups[i] != "" {
			params[name] = groups[i]
		}
	}

	return params, true
}

// Follow calls the handler with the matched params.
func (route *Route) Follow(ctx context.Context, request events.APIGatewayV2HTTPRequest, params map[string]string) (events.APIGatewayProxyResponse, error) {
	return route.Handler(&RouteContext{Context: ctx, Request: request, Params: params})
}
