package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

var logg *logrus.Logger

func init() {
	logg = logrus.New()
	logg.SetFormatter(&logrus.JSONFormatter{})
	logg.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = logrus.InfoLevel
	}
	logg.SetLevel(level)
}

func Get() *logrus.Logger {
	return logg
}

// LogError records an operator-facing error with its module/function context. User-facing
// responses never include this detail.
func LogError(module, funcName string, err error, fields logrus.Fields) {
	if fields == nil {
		fields = logrus.Fields{}
	}
	fields["module"] = module
	fields["funcName"] = funcName
	logg.WithFields(fields).Error(err.Error())
}
