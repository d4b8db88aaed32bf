package logging

// EventLogger provides structured lifecycle event logging
type EventLogger struct {
	log func(level Level, msg string, fields ...Field)
}

// NewEventLogger creates a new EventLogger backed by the global logging functions
func NewEventLogger() *EventLogger {
	return &EventLogger{
		log: log,
	}
}

// Container logs container lifecycle events
// action: create|start|ready|terminate
// status: success|failed
func (e *EventLogger) Container(action, scope, name, status, reason string) {
	level := DebugLevel
	if status == "failed" {
		level = ErrorLevel
	} else if action == "start" || action == "terminate" {
		level = InfoLevel
	}

	fields := []Field{
		F("event", "container"),
		F("action", action),
		F("container", name),
		F("status", status),
	}
	if scope != "" {
		fields = append(fields, F("scope", scope))
	}
	if reason != "" {
		fields = append(fields, F("reason", reason))
	}
	e.log(level, "container_event", fields...)
}

// Scope logs scope transitions
// action: open|provision|inject|publish|close
func (e *EventLogger) Scope(action, scope, id string, fields ...Field) {
	level := DebugLevel
	if action == "close" {
		level = InfoLevel
	}
	base := []Field{
		F("event", "scope"),
		F("action", action),
		F("scope", scope),
		F("scope_id", id),
	}
	e.log(level, "scope_event", append(base, fields...)...)
}

// Property logs a published property. Values are not logged, they may carry credentials.
func (e *EventLogger) Property(scope, container, property string, resolvers int) {
	e.log(DebugLevel, "property_event",
		F("event", "property"),
		F("action", "publish"),
		F("scope", scope),
		F("container", container),
		F("property", property),
		F("resolvers", resolvers),
	)
}
