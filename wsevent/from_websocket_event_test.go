package wsevent

import (
	"encoding/base64"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
)

func createRequest(connectionID, body string) events.APIGatewayWebsocketProxyRequest {
	return events.APIGatewayWebsocketProxyRequest{
		Body: body,
		RequestContext: events.APIGatewayWebsocketProxyRequestContext{
			ConnectionID: connectionID,
			RouteKey:     "sendMessage",
			DomainName:   "abc123.execute-api.us-west-2.amazonaws.com",
			Stage:        "Prod",
		},
	}
}

func TestConnectionID(t *testing.T) {
	id, err := ConnectionID(createRequest("L0SM9cOFvHcCIhw=", ""))

	assert.NoError(t, err)
	assert.Equal(t, "L0SM9cOFvHcCIhw=", id)
}

func TestConnectionID_error(t *testing.T) {
	_, err := ConnectionID(events.APIGatewayWebsocketProxyRequest{})

	assert.Equal(t, ErrMissingConnectionID, err)
}

func TestParseAction(t *testing.T) {
	cases := []struct {
		body            string
		expectedAction  string
		expectedMessage string
	}{
		{`{"action": "sendMessage", "message": "what is photosynthesis?"}`, "sendMessage", "what is photosynthesis?"},
		{`{"action": "lessonPlan", "message": "fractions, grade 4"}`, "lessonPlan", "fractions, grade 4"},
		{`{"action": "getConnectionId"}`, "getConnectionId", ""},
		{``, "", ""},
		{`   `, "", ""},
	}

	for _, c := range cases {
		action, err := ParseAction(createRequest("id", c.body))

		assert.NoError(t, err)
		assert.Equal(t, c.expectedAction, action.Action)
		assert.Equal(t, c.expectedMessage, action.Message)
	}
}

func TestParseAction_base64(t *testing.T) {
	request := createRequest("id", base64.StdEncoding.EncodeToString([]byte(`{"message": "hi"}`)))
	request.IsBase64Encoded = true

	action, err := ParseAction(request)

	assert.NoError(t, err)
	assert.Equal(t, "hi", action.Message)
}

func TestParseAction_error(t *testing.T) {
	_, err := ParseAction(createRequest("id", "not json"))
	assert.Error(t, err)

	request := createRequest("id", "****")
	request.IsBase64Encoded = true

	_, err = ParseAction(request)
	assert.Error(t, err)
}

func TestEndpoint(t *testing.T) {
	endpoint, err := Endpoint(createRequest("id", ""))

	assert.NoError(t, err)
	assert.Equal(t, "https://abc123.execute-api.us-west-2.amazonaws.com/Prod", endpoint)
}

func TestEndpoint_noStage(t *testing.T) {
	request := createRequest("id", "")
	request.RequestContext.Stage = ""

	endpoint, err := Endpoint(request)

	assert.NoError(t, err)
	assert.Equal(t, "https://abc123.execute-api.us-west-2.amazonaws.com", endpoint)
}

func TestEndpoint_error(t *testing.T) {
	_, err := Endpoint(events.APIGatewayWebsocketProxyRequest{})
	assert.Error(t, err)
}
