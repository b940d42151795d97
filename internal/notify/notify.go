// Package notify is the transient-notification sink: the terminal analog of
// the toast layer in the browser. Remote-call failures end up here rather
// than propagating to a global handler.
package notify

import (
	"go.uber.org/zap"

	"eduassess/internal/logger"
)

// Notifier receives transient user-visible feedback.
type Notifier interface {
	Success(message string)
	Error(message string)
	Warning(message string)
}

// LogNotifier writes notifications through the application logger.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Success(message string) {
	logger.Get().Info("notification", zap.String("kind", "success"), zap.String("message", message))
}

func (n *LogNotifier) Error(message string) {
	logger.Get().Warn("notification", zap.String("kind", "error"), zap.String("message", message))
}

func (n *LogNotifier) Warning(message string) {
	logger.Get().Warn("notification", zap.String("kind", "warning"), zap.String("message", message))
}

// Recorder captures notifications for assertions in tests.
type Recorder struct {
	Successes []string
	Errors    []string
	Warnings  []string
}

func (r *Recorder) Success(message string) { r.Successes = append(r.Successes, message) }
func (r *Recorder) Error(message string)   { r.Errors = append(r.Errors, message) }
func (r *Recorder) Warning(message string) { r.Warnings = append(r.Warnings, message) }
