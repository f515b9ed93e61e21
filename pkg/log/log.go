package log

import (
	"context"
	"fmt"
	"os"
	"path"
	"runtime"

	"github.com/sirupsen/logrus"
)

type ctxKey string

const (
	CtxRunId     ctxKey = "run"
	CtxTrainId   ctxKey = "train"
	CtxRequestId ctxKey = "request"
)

func InitLog(logLevel string) {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Errorf("failed to parse log level: %v, err: %v", logLevel, err)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	logrus.SetReportCaller(true)
	logrus.SetOutput(os.Stdout)
	logrus.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
		DisableColors:   true,
		DisableQuote:    true,
		CallerPrettyfier: func(frame *runtime.Frame) (string, string) {
			return "", fmt.Sprintf("%s:%d", path.Base(frame.File), frame.Line)
		},
	})
}

// WithRun tags ctx so that loggers derived from it carry the batch run id.
func WithRun(ctx context.Context, runId string) context.Context {
	return context.WithValue(ctx, CtxRunId, runId)
}

func WithTrain(ctx context.Context, trainId string) context.Context {
	return context.WithValue(ctx, CtxTrainId, trainId)
}

func WithRequest(ctx context.Context, requestId string) context.Context {
	return context.WithValue(ctx, CtxRequestId, requestId)
}

// GetLogger returns an entry carrying the run, train and request ids stored
// in c, if any.
func GetLogger(c context.Context) *logrus.Entry {
	fields := logrus.Fields{}
	for _, key := range []ctxKey{CtxRunId, CtxTrainId, CtxRequestId} {
		if v := c.Value(key); v != nil {
			fields[string(key)] = v
		}
	}
	if len(fields) == 0 {
		return logrus.NewEntry(logrus.StandardLogger())
	}
	return logrus.WithFields(fields)
}

func NewLogger() *logrus.Entry {
	return logrus.NewEntry(logrus.StandardLogger())
}
