// Package handlers holds the lambda handlers of the chat api: the http chat
// endpoint and the websocket $connect, $disconnect and message routes.
//
// Client visible failures are reported through the response status code and
// a small json body; handlers only return an error to the lambda runtime when
// no response could be built at all.
package handlers
