package proxy

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/pkg/errors"
)

var (
	// ErrNotFound is returned by Route when no route matches the path.
	ErrNotFound = errors.New("not found")
	// ErrMethodNotAllowed is returned by Route when a route matches the path
	// but not the method.
	ErrMethodNotAllowed = errors.New("method not allowed")
)

// ErrorHandler turns an error returned while routing into a response.
type ErrorHandler func(context.Context, events.APIGatewayV2HTTPRequest, error) (events.APIGatewayProxyResponse, error)

// CatchAllHandler answers requests no route matched.
type CatchAllHandler func(context.Context, events.APIGatewayV2HTTPRequest) (events.APIGatewayProxyResponse, error)

// Router dispatches an api gateway http request to the first route, in
// registration order, matching its method and path.
//
// Unmatched requests go to CatchAll when set. Otherwise Route fails with
// ErrNotFound, or ErrMethodNotAllowed when only the method differed. When
// CatchError is set every routing error is handed to it. Headers are added to
// every response Route returns, unless the response sets them itself.
//
//	router := &proxy.Router{Headers: proxy.CORSHeaders()}
//	router.POST("/chat", post)
//	router.OPTIONS("/chat", preflight)
//
//	if !router.Valid() {
//		return router.BuildErrors()
//	}
type Router struct {
	Routes     []*Route
	CatchAll   CatchAllHandler
	CatchError ErrorHandler
	Headers    map[string]string

	errors []error
}

// Valid reports whether every route compiled.
func (router *Router) Valid() bool {
	return len(router.errors) == 0
}

// AddRoute appends route to the routes used for matching.
func (router *Router) AddRoute(route *Route) {
	router.Routes = append(router.Routes, route)
}

// AddBuildError records a route construction failure.
func (router *Router) AddBuildError(err error) {
	router.errors = append(router.errors, err)
}

// BuildErrors folds every build error into a single error.
func (router *Router) BuildErrors() error {
	err := errors.New("failed building router")
	for _, e := range router.errors {
		err = errors.Wrap(err, e.Error())
	}

	return err
}

// Handle adds a route for method and pattern. A pattern that does not compile
// is recorded as a build error.
func (router *Router) Handle(method HttpMethod, pattern string, handler RouteHandler) {
	route, err := NewRoute(method, pattern, handler)
	if err != nil {
		router.AddBuildError(err)
		return
	}

	router.AddRoute(route)
}

// GET adds a GET route.
func (router *Router) GET(pattern string, handler RouteHandler) {
	router.Handle(GET, pattern, handler)
}

// POST adds a POST route.
func (router *Router) POST(pattern string, handler RouteHandler) {
	router.Handle(POST, pattern, handler)
}

// OPTIONS adds an OPTIONS route.
func (router *Router) OPTIONS(pattern string, handler RouteHandler) {
	router.Handle(OPTIONS, pattern, handler)
}

// AddCatchAllHandler sets the handler for unmatched requests.
func (router *Router) AddCatchAllHandler(handler CatchAllHandler) {
	router.CatchAll = handler
}

// AddErrorHandler sets the handler for routing errors.
func (router *Router) AddErrorHandler(handler ErrorHandler) {
	router.CatchError = handler
}

func (router *Router) dispatch(ctx context.Context, request events.APIGatewayV2HTTPRequest) (events.APIGatewayProxyResponse, error) {
	pathMatched := false

	for _, route := range router.Routes {
		if params, ok := route.Match(request); ok {
			return route.Follow(ctx, request, params)
		}

		if route.Regex.MatchString(request.RawPath) {
			pathMatched = true
		}
	}

	if router.CatchAll != nil {
		return router.CatchAll(ctx, request)
	}

	err := ErrNotFound
	if pathMatched {
		err = ErrMethodNotAllowed
	}

	return events.APIGatewayProxyResponse{}, errors.Wrapf(err, "'%s %s'", request.RequestContext.HTTP.Method, request.RawPath)
}

// Route answers request. Without CatchError the handler's response is
// returned alongside its error.
func (router *Router) Route(ctx context.Context, request events.APIGatewayV2HTTPRequest) (events.APIGatewayProxyResponse, error) {
	response, err := router.dispatch(ctx, request)
	if err != nil && router.CatchError != nil {
		response, err = router.CatchError(ctx, request, err)
	}

	return router.withHeaders(response), err
}

func (router *Router) withHeaders(response events.APIGatewayProxyResponse) events.APIGatewayProxyResponse {
	if len(router.Headers) == 0 || response.StatusCode == 0 {
		return response
	}

	if response.Headers == nil {
		response.Headers = make(map[string]string, len(router.Headers))
	}

	for k, v := range router.Headers {
		if _, ok := response.Headers[k]; !ok {
			response.Headers[k] = v
		}
	}

	return response
}

// StatusFor maps a routing error to the http status it should answer with.
func StatusFor(err error) int {
	switch errors.Cause(err) {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrMethodNotAllowed:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}
