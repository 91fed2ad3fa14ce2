// Package proxy routes api gateway events inside a lambda. Router matches
// http api requests by method and path regex, WebsocketRouter matches
// websocket events by route key or body action, and JSONResponse builds the
// replies both of them return.
package proxy
