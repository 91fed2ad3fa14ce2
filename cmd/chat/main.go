// Command chat is the POST /chat lambda.
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

	h, err := a.Chat()
	if err != nil {
		logrus.WithError(err).Fatal("failed to build chat handler")
	}

	lambda.Start(h.Handle)
}
