package response

import "go.uber.org/zap"

// Listener receives progress events while a console response is decoded.
// Calls arrive synchronously and in stream order.
type Listener interface {
	OnStart(title string)
	OnLog(message string)
	OnMessage(message string)
	OnProgress(action, path string)
	OnError(path, message string)
}

// NopListener discards every event.
type NopListener struct{}

func (NopListener) OnStart(string)            {}
func (NopListener) OnLog(string)              {}
func (NopListener) OnMessage(string)          {}
func (NopListener) OnProgress(string, string) {}
func (NopListener) OnError(string, string)    {}

// LoggingListener reports events through a zap logger. Progress and log
// statements are debug-level so a default logger only shows the title,
// messages and errors.
type LoggingListener struct {
	log *zap.Logger
}

func NewLoggingListener(log *zap.Logger) *LoggingListener {
	if log == nil {
		log = zap.NewNop()
	}
	return &LoggingListener{log: log}
}

func (l *LoggingListener) OnStart(title string) {
	l.log.Info("response started", zap.String("title", title))
}

func (l *LoggingListener) OnLog(message string) {
	l.log.Debug("log", zap.String("message", message))
}

func (l *LoggingListener) OnMessage(message string) {
	l.log.Info("message", zap.String("message", message))
}

func (l *LoggingListener) OnProgress(action, path string) {
	l.log.Debug("progress", zap.String("action", action), zap.String("path", path))
}

func (l *LoggingListener) OnError(path, message string) {
	l.log.Warn("progress error", zap.String("path", path), zap.String("error", message))
}

// Listeners fans events out to each listener in order.
type Listeners []Listener

func (ls Listeners) OnStart(title string) {
	for _, l := range ls {
		l.OnStart(title)
	}
}

func (ls Listeners) OnLog(message string) {
	for _, l := range ls {
		l.OnLog(message)
	}
}

func (ls Listeners) OnMessage(message string) {
	for _, l := range ls {
		l.OnMessage(message)
	}
}

func (ls Listeners) OnProgress(action, path string) {
	for _, l := range ls {
		l.OnProgress(action, path)
	}
}

func (ls Listeners) OnError(path, message string) {
	for _, l := range ls {
		l.OnError(path, message)
	}
}
