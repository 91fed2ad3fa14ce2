package proxy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJSONResponse(t *testing.T) {
	response, err := JSONResponse(200, map[string]string{"response": "hi"}, CORSHeaders())

	assert.NoError(t, err)
	assert.Equal(t, 200, response.StatusCode)
	assert.JSONEq(t, `{"response": "hi"}`, response.Body)
	assert.Equal(t, "application/json", response.Headers["Content-Type"])
	assert.Equal(t, "*", response.Headers["Access-Control-Allow-Origin"])
	assert.Equal(t, "Content-Type", response.Headers["Access-Control-Allow-Headers"])
	assert.Equal(t, "OPTIONS,POST", response.Headers["Access-Control-Allow-Methods"])
	assert.False(t, response.IsBase64Encoded)
}

func TestJSONResponse_noHeaders(t *testing.T) {
	response, err := JSONResponse(400, map[string]string{"error": "bad"}, nil)

	assert.NoError(t, err)
	assert.Equal(t, 400, response.StatusCode)
	assert.Len(t, response.Headers, 1)
}

func TestJSONResponse_error(t *testing.T) {
	response, err := JSONResponse(200, make(chan int), nil)

	assert.Error(t, err)
	assert.Equal(t, 500, response.StatusCode)
}
