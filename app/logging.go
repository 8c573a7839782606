package app

import (
	"os"

	"github.com/sirupsen/logrus"
)

type LoggingConfig struct {
	Type       string `env:"LOG_TYPE"`
	ServerName string `env:"SERVER_NAME"`
	Level      string `env:"LOG_LEVEL"`
}

func (logConf *LoggingConfig) Setup() {
	logrus.SetOutput(os.Stdout)

	if logConf.Type == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(logConf.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if logConf.ServerName != "" {
		logrus.AddHook(&serverNameHook{name: logConf.ServerName})
	}
}

// serverNameHook stamps every entry with the server name so logs from the
// different services can be told apart in a shared sink.
type serverNameHook struct {
	name string
}

func (h *serverNameHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *serverNameHook) Fire(entry *logrus.Entry) error {
	entry.Data["server"] = h.name
	return nil
}
