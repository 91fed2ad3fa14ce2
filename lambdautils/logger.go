package lambdautils

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ConfigureLogging switches the standard logrus logger to json output, which
// cloudwatch indexes field by field, at the given level.
func ConfigureLogging(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return errors.Wrapf(err, "invalid log level %q", level)
	}

	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(lvl)
	return nil
}

// Logger returns a log entry tagged with the invocation ctx belongs to.
func Logger(ctx context.Context) *logrus.Entry {
	return logrus.WithContext(ctx).WithFields(InvocationFromContext(ctx).Fields())
}
