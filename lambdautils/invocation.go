package lambdautils

import (
	"context"
	"strings"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/sirupsen/logrus"
)

// Invocation describes the lambda invocation a context belongs to. Outside
// lambda every field is empty.
type Invocation struct {
	Function  string
	Version   string
	Alias     string
	LogStream string
	MemoryMB  int
	RequestID string
}

// InvocationFromContext reads the function environment and the request
// details api gateway attached to ctx.
func InvocationFromContext(ctx context.Context) Invocation {
	inv := Invocation{
		Function:  lambdacontext.FunctionName,
		Version:   lambdacontext.FunctionVersion,
		LogStream: lambdacontext.LogStreamName,
		MemoryMB:  lambdacontext.MemoryLimitInMB,
	}

	if lc, ok := lambdacontext.FromContext(ctx); ok {
		inv.RequestID = lc.AwsRequestID
		inv.Alias = alias(lc.InvokedFunctionArn)
	}

	return inv
}

// alias returns the qualifier of arn:aws:lambda:region:account:function:name:alias.
func alias(arn string) string {
	parts := strings.Split(arn, ":")
	if len(parts) != 8 {
		return ""
	}

	return parts[7]
}

// Fields returns the non empty values as log fields.
func (inv Invocation) Fields() logrus.Fields {
	fields := logrus.Fields{}

	set := func(k, v string) {
		if v != "" {
			fields[k] = v
		}
	}

	set("function", inv.Function)
	set("version", inv.Version)
	set("alias", inv.Alias)
	set("request_id", inv.RequestID)

	return fields
}
