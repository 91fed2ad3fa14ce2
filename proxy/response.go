package proxy

import (
	"encoding/json"

	"github.com/aws/aws-lambda-go/events"
	"github.com/pkg/errors"
)

// CORSHeaders are attached to every chat api response so the browser client
// can call the api cross origin.
func CORSHeaders() map[string]string {
	return map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Headers": "Content-Type",
		"Access-Control-Allow-Methods": "OPTIONS,POST",
	}
}

// JSONResponse marshals v into the body of a response with the given status.
// The supplied headers are copied and Content-Type is set.
func JSONResponse(status int, v interface{}, headers map[string]string) (events.APIGatewayProxyResponse, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return events.APIGatewayProxyResponse{StatusCode: 500}, errors.Wrapf(err, "failed to marshal %T", v)
	}

	h := map[string]string{"Content-Type": "application/json"}
	for k, v := range headers {
		h[k] = v
	}

	return events.APIGatewayProxyResponse{
		StatusCode:      status,
		Headers:         h,
		Body:            string(b),
		IsBase64Encoded: false,
	}, nil
}
