package core

type Level int8

const (
	Disabled   Level = -1   // Disabled turns logging off entirely.
	TraceLevel Level = iota // TraceLevel is used for detailed debugging information.
	DebugLevel              // DebugLevel is used for debugging information.
	InfoLevel               // InfoLevel is used for informational messages.
	WarnLevel               // WarnLevel is used for warning messages.
	ErrorLevel              // ErrorLevel is used for error messages.
	FatalLevel              // FatalLevel is used for fatal messages that cause the program to exit.
	PanicLevel              // PanicLevel is used for panic messages that cause the program to panic.
	NoLevel                 // NoLevel is used for no logging level.
)

type Logger interface {
	// Returns a logger based off the root logger and decorates it with the given context and arguments.
	WithField(key string, value any) Logger
	WithFields(fields map[string]any) Logger
	WithError(err error) Logger

	Print(args ...any)
	Trace(args ...any)
	Debug(args ...any)
	Info(args ...any)
	Warn(args ...any)
	Error(args ...any)
	Fatal(args ...any)
	Panic(args ...any)

	Printf(format string, args ...any)
	Tracef(format string, args ...any)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Fatalf(format string, args ...any)
	Panicf(format string, args ...any)

	SetLevel(level Level)
	GetLevel() Level
}
