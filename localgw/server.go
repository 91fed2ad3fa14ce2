// Package localgw serves the chat and websocket handlers over plain http so
// they can be exercised without api gateway.
package localgw

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/prognoshealth/pathwayai/handlers"
	"github.com/prognoshealth/pathwayai/proxy"
	"github.com/prognoshealth/pathwayai/push"
)

// Stage is the stage name reported in emulated websocket events.
const Stage = "local"

// WebsocketPath is where clients open their websocket.
const WebsocketPath = "/ws"

const maxBody = 1 << 20

type conn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

// Server emulates the http api and the websocket api of api gateway. It also
// stands in for the management api, pushing frames to its own sockets.
type Server struct {
	Chat      *handlers.Chat
	Websocket *proxy.WebsocketRouter

	upgrader websocket.Upgrader
	newID    func() string

	mu    sync.RWMutex
	conns map[string]*conn
}

// New returns a server without handlers. Set Chat and Websocket before
// serving; the websocket handlers usually push through s.Pushers.
func New() *Server {
	return &Server{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		newID: uuid.NewString,
		conns: map[string]*conn{},
	}
}

// Handler returns the http handler serving /chat and /ws.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post(handlers.ChatPath, s.serveChat)
	r.Options(handlers.ChatPath, s.serveChat)
	r.Get(WebsocketPath, s.serveWebsocket)

	return r
}

// Pushers is a handlers.PusherFactory that always answers with s.
func (s *Server) Pushers(string) (push.Pusher, error) {
	return s, nil
}

// Post writes frame to the socket of connectionID.
func (s *Server) Post(ctx context.Context, connectionID string, frame push.Frame) error {
	s.mu.RLock()
	c, ok := s.conns[connectionID]
	s.mu.RUnlock()

	if !ok {
		return errors.Wrapf(push.ErrGone, "post to %v", connectionID)
	}

	data, err := json.Marshal(frame)
	if err != nil {
		return errors.Wrap(err, "failed to marshal frame")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
		return errors.Wrapf(err, "failed post to %v", connectionID)
	}

	return nil
}

// Connections returns the number of open sockets.
func (s *Server) Connections() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.conns)
}

func (s *Server) serveChat(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	request := events.APIGatewayV2HTTPRequest{
		RawPath:  r.URL.Path,
		Body:     string(body),
		Headers:  map[string]string{},
		RouteKey: r.Method + " " + r.URL.Path,
		RequestContext: events.APIGatewayV2HTTPRequestContext{
			Stage: Stage,
			HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{
				Method:   r.Method,
				Path:     r.URL.Path,
				SourceIP: r.RemoteAddr,
			},
		},
	}

	for k := range r.Header {
		request.Headers[k] = r.Header.Get(k)
	}

	response, err := s.Chat.Handle(r.Context(), request)
	if err != nil {
		logrus.WithError(err).WithField("path", r.URL.Path).Error("chat handler failed")
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}

	writeResponse(w, response)
}

func writeResponse(w http.ResponseWriter, response events.APIGatewayProxyResponse) {
	for k, v := range response.Headers {
		w.Header().Set(k, v)
	}

	w.WriteHeader(response.StatusCode)
	io.WriteString(w, response.Body)
}

func (s *Server) event(r *http.Request, routeKey, connectionID, body string) events.APIGatewayWebsocketProxyRequest {
	return events.APIGatewayWebsocketProxyRequest{
		Body: body,
		RequestContext: events.APIGatewayWebsocketProxyRequestContext{
			RouteKey:     routeKey,
			ConnectionID: connectionID,
			DomainName:   r.Host,
			Stage:        Stage,
		},
	}
}

func (s *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer ws.Close()

	id := s.newID()
	log := logrus.WithField("connection_id", id)

	// ctx ends with the socket so in-flight relays stop streaming.
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	s.mu.Lock()
	s.conns[id] = &conn{ws: ws}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.conns, id)
		s.mu.Unlock()
	}()

	if !s.dispatch(ctx, log, s.event(r, "$connect", id, "")) {
		ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "connect rejected"))
		return
	}

	// Each message is handled on its own goroutine, as api gateway invokes
	// one lambda per message.
	var wg sync.WaitGroup
	for {
		kind, data, err := ws.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.WithError(err).Debug("websocket read ended")
			}
			break
		}

		if kind != websocket.TextMessage {
			continue
		}

		wg.Add(1)
		go func(body string) {
			defer wg.Done()
			s.dispatch(ctx, log, s.event(r, "", id, body))
		}(string(data))
	}

	cancel()
	wg.Wait()
	s.dispatch(context.WithoutCancel(ctx), log, s.event(r, "$disconnect", id, ""))
}

// dispatch routes one websocket event and reports whether it succeeded.
func (s *Server) dispatch(ctx context.Context, log *logrus.Entry, request events.APIGatewayWebsocketProxyRequest) bool {
	key := s.Websocket.RouteKey(request)

	response, err := s.Websocket.Route(ctx, request)
	if err != nil {
		log.WithError(err).WithField("route", key).Error("websocket handler failed")
		return false
	}

	if response.StatusCode >= http.StatusBadRequest {
		log.WithFields(logrus.Fields{"route": key, "status": response.StatusCode, "body": response.Body}).Warn("websocket handler rejected event")
		return false
	}

	return true
}
