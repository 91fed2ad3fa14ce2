package proxy

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouteContext_Body(t *testing.T) {
	request := testRequest(POST, "/chat")
	request.Body = `{"message": "hi"}`

	ctx := &RouteContext{Request: request}

	actual, err := ctx.Body()

	assert.NoError(t, err)
	assert.Equal(t, `{"message": "hi"}`, actual)
}

func TestRouteContext_Body_encoded(t *testing.T) {
	request := testRequest(POST, "/chat")
	request.Body = base64.StdEncoding.EncodeToString([]byte("plan a lesson"))
	request.IsBase64Encoded = true

	ctx := &RouteContext{Request: request}

	actual, err := ctx.Body()

	assert.NoError(t, err)
	assert.Equal(t, "plan a lesson", actual)
}

func TestRouteContext_Body_error(t *testing.T) {
	request := testRequest(POST, "/chat")
	request.Body = "sefdfxsdf.d.dsd"
	request.IsBase64Encoded = true

	ctx := &RouteContext{Request: request}

	_, err := ctx.Body()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "POST /chat")
}

func TestRouteContext_JSON(t *testing.T) {
	cases := []struct {
		body     string
		encoded  bool
		expected string
	}{
		{`{"message": "hello"}`, false, "hello"},
		{base64.StdEncoding.EncodeToString([]byte(`{"message": "encoded"}`)), true, "encoded"},
		{"", false, ""},
		{`{}`, false, ""},
	}

	for _, c := range cases {
		request := testRequest(POST, "/chat")
		request.Body = c.body
		request.IsBase64Encoded = c.encoded

		ctx := &RouteContext{Request: request}

		var payload struct {
			Message string `json:"message"`
		}

		assert.NoError(t, ctx.JSON(&payload))
		assert.Equal(t, c.expected, payload.Message)
	}
}

func TestRouteContext_JSON_error(t *testing.T) {
	request := testRequest(POST, "/chat")
	request.Body = "not json"

	ctx := &RouteContext{Request: request}

	var payload map[string]interface{}
	err := ctx.JSON(&payload)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unable to unmarshal request body")
}
