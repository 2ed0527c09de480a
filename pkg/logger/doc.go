// Package logger builds configured slog loggers for the billing engine.
//
// New creates a *slog.Logger from functional options: output format, minimum
// level, destination, and static attributes. Helper constructors in attr.go
// keep attribute naming consistent across packages, so a subscription ID is
// always logged under the same key no matter which component emits it.
package logger
