// Command connect is the websocket $connect lambda.
package main

import (
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"

	"github.com/prognoshealth/pathwayai/handlers"
	"github.com/prognoshealth/pathwayai/internal/app"
)

func main() {
	a, err := app.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	table, err := a.Table()
	if err != nil {
		logrus.WithError(err).Fatal("failed to open connection table")
	}

	h := &handlers.Connect{Store: table}
	lambda.Start(h.Handle)
}
