package proxy

import (
	"context"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
)

func TestNewRoute(t *testing.T) {
	r, err := NewRoute(POST, "/chat", testHandler)
	assert.NoError(t, err)

	assert.Equal(t, POST, r.Method)
	assert.True(t, r.Regex.MatchString("/chat"))
	assert.True(t, r.Regex.MatchString("/chat/"))
	assert.False(t, r.Regex.MatchString("/chat/history"))
	assert.Equal(t, "POST ^/chat/?$", r.String())
}

func TestNewRoute_Error(t *testing.T) {
	_, err := NewRoute(GET, "asom (?<in-invalid>.*)", testHandler)
	assert.ErrorContains(t, err, "failed compiling regex pattern")
}

func TestRoute_Match(t *testing.T) {
	cases := []struct {
		method   HttpMethod
		pattern  string
		request  events.APIGatewayV2HTTPRequest
		ok       bool
		expected map[string]string
	}{
		{POST, "/chat", testRequest(POST, "/chat"), true, map[string]string{}},
		{POST, "/chat", testRequest(POST, "/chat/"), true, map[string]string{}},
		{OPTIONS, ".*", testRequest(OPTIONS, "/anything"), true, map[string]string{}},
		{GET, "/chat/(?P<id>[^/]+)", testRequest(GET, "/chat/abc"), true, map[string]string{"id": "abc"}},
		{GET, "/classes/(?P<class>[0-9]+)/plans/(?P<plan>[^/]+)", testRequest(GET, "/classes/4/plans/fractions"), true, map[string]string{"class": "4", "plan": "fractions"}},
		{GET, "/chat(?P<suffix>/x)?", testRequest(GET, "/chat"), true, map[string]string{}},
		{POST, "/chat", testRequest(GET, "/chat"), false, nil},
		{POST, "/chat", testRequest(POST, "/other"), false, nil},
	}

	for _, c := range cases {
		r, err := NewRoute(c.method, c.pattern, testHandler)
		assert.NoError(t, err)

		params, ok := r.Match(c.request)

		assert.Equal(t, c.ok, ok, c.pattern)
		assert.Equal(t, c.expected, params, c.pattern)
	}
}

func TestRoute_Follow(t *testing.T) {
	var got *RouteContext
	r, err := NewRoute(GET, "/chat/(?P<id>[^/]+)", func(rctx *RouteContext) (events.APIGatewayProxyResponse, error) {
		got = rctx
		return events.APIGatewayProxyResponse{StatusCode: 200}, nil
	})
	assert.NoError(t, err)

	ctx := context.Background()
	request := testRequest(GET, "/chat/abc")
	params, ok := r.Match(request)
	assert.True(t, ok)

	response, err := r.Follow(ctx, request, params)

	assert.NoError(t, err)
	assert.Equal(t, 200, response.StatusCode)
	assert.Equal(t, ctx, got.Context)
	assert.Equal(t, request, got.Request)
	assert.Equal(t, "abc", got.Params["id"])
}
