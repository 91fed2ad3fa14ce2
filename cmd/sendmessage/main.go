// Command sendmessage is the lambda behind the sendMessage, lessonPlan and
// getConnectionId websocket routes.
package main

import (
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"

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

	client, err := a.LLM()
	if err != nil {
		logrus.WithError(err).Fatal("failed to build llm client")
	}

	pushers, err := a.Pushers()
	if err != nil {
		logrus.WithError(err).Fatal("failed to build push clients")
	}

	h, err := a.SendMessage(table, client, pushers)
	if err != nil {
		logrus.WithError(err).Fatal("failed to build message handler")
	}

	lambda.Start(h.Router().Route)
}
