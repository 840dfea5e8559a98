package main

import (
	"log/slog"

	"macrokey/core"
	"macrokey/workflow"
)

// logInjector is the "log" keyboard backend: keystrokes are logged, not sent
type logInjector struct {
	logger *slog.Logger
}

func (l *logInjector) Press(keys ...core.Keycode) error {
	l.logger.Info("press", "event", core.Event{Kind: core.EventPress, Keys: keys}.String())
	return nil
}

func (l *logInjector) Release(keys ...core.Keycode) error {
	l.logger.Info("release", "event", core.Event{Kind: core.EventRelease, Keys: keys}.String())
	return nil
}

func (l *logInjector) ReleaseAll() error {
	l.logger.Info("release all")
	return nil
}

func (l *logInjector) WriteText(s string) error {
	l.logger.Info("type", "text", s)
	return nil
}

// logIndicator stands in for the status LED
type logIndicator struct {
	logger *slog.Logger
}

func (i *logIndicator) Selecting(current workflow.ID) {
	i.logger.Info("waiting for workflow selection", "current", current.String())
}

func (i *logIndicator) Running(id workflow.ID) {
	i.logger.Info("running workflow", "id", int(id), "name", id.String())
}
