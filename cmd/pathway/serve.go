package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/prognoshealth/pathwayai/connections"
	"github.com/prognoshealth/pathwayai/handlers"
	"github.com/prognoshealth/pathwayai/internal/app"
	"github.com/prognoshealth/pathwayai/localgw"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve POST /chat and the websocket api on one port",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":3001", "listen address")
	return cmd
}

func runServe(ctx context.Context, addr string) error {
	a, err := app.Load()
	if err != nil {
		return err
	}

	chat, err := a.Chat()
	if err != nil {
		return err
	}

	client, err := a.LLM()
	if err != nil {
		return err
	}

	gw := localgw.New()
	store := connections.NewMemory(a.Config.ConnectionTTL)

	send, err := a.SendMessage(store, client, gw.Pushers)
	if err != nil {
		return err
	}

	gw.Chat = chat
	gw.Websocket = handlers.WebsocketRouter(&handlers.Connect{Store: store}, &handlers.Disconnect{Store: store}, send)

	srv := &http.Server{Addr: addr, Handler: gw.Handler(), ReadHeaderTimeout: 10 * time.Second}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errs := make(chan error, 1)
	go func() {
		logrus.WithField("addr", addr).Info("serving")
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return errors.Wrap(err, "server stopped")
	case <-ctx.Done():
	}

	shutdown, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdown)
}
