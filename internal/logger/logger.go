package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Log общий структурированный логгер приложения.
var Log *logrus.Logger

// Init настраивает логгер: JSON формат по умолчанию (production),
// неизвестный уровень тихо понижается до info.
func Init(level string) {
	Log = logrus.New()
	Log.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	Log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})
}

// SetTextFormatter переключает логи на читаемый текстовый формат (development).
func SetTextFormatter() {
	if Log == nil {
		return
	}
	Log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}
