package ports

// Logger defines the interface for logging.
//
//go:generate mockgen -source=logger.go -destination=mocks/mock_logger.go -package=mocks
type Logger interface {
	Debug(msg string)
	Info(msg string)
	Warn(msg string)
	Error(err error)
}

// BuildLog mirrors log output into a per-bundle log file.
type BuildLog interface {
	// Attach starts appending every log line to the file at path, creating it if needed.
	Attach(path string) error

	// Detach stops writing to the log file and closes it.
	Detach() error

	// Tail returns up to the last n lines written to the attached log file.
	Tail(n int) ([]string, error)
}
