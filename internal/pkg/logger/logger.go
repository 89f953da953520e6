package logger

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// Logger define a interface para logging estruturado.
// A aplicação (Handler, Service, Repository) deve depender apenas desta interface.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error)
	Fatal(msg string, err error)
}

// SimpleLogger é a implementação concreta da interface Logger, com saída JSON via logrus.
type SimpleLogger struct {
	entry *logrus.Logger
}

// NewLogger cria e retorna uma nova instância do Logger escrevendo em stdout.
// Esta função é chamada no main.go e nos testes.
func NewLogger(level string) Logger {
	return NewLoggerWithOutput(level, os.Stdout)
}

// NewLoggerWithOutput permite redirecionar a saída (CLI usa stderr).
func NewLoggerWithOutput(level string, out io.Writer) Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "timestamp",
			logrus.FieldKeyMsg:  "message",
		},
	})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel // nível desconhecido: info
	}
	l.SetLevel(lvl)

	return &SimpleLogger{entry: l}
}

func (l *SimpleLogger) Debug(msg string, fields map[string]interface{}) {
	l.entry.WithFields(fields).Debug(msg)
}

func (l *SimpleLogger) Info(msg string, fields map[string]interface{}) {
	l.entry.WithFields(fields).Info(msg)
}

func (l *SimpleLogger) Warn(msg string, fields map[string]interface{}) {
	l.entry.WithFields(fields).Warn(msg)
}

func (l *SimpleLogger) Error(msg string, err error) {
	l.entry.WithError(err).Error(msg)
}

// Fatal registra o erro e encerra o processo (logrus chama os.Exit(1)).
func (l *SimpleLogger) Fatal(msg string, err error) {
	l.entry.WithError(err).Fatal(msg)
}
