package vlfd

import "time"

// Programming progress phases.
const (
	// PhaseDecoding means the bitstream file is being decoded
	PhaseDecoding = "decoding"

	// PhaseConnecting means the session is being established
	PhaseConnecting = "connecting"

	// PhaseUploading means bitstream chunks are being written
	PhaseUploading = "uploading"

	// PhaseVerifying means the programmed status is being checked
	PhaseVerifying = "verifying"

	// PhaseComplete means the upload finished successfully
	PhaseComplete = "complete"
)

// Progress describes the state of a bitstream upload. It is passed to the
// configured ProgressCallback as the upload advances.
type Progress struct {
	// Phase is one of the Phase* constants
	Phase string

	// CurrentChunk is the number of FIFO chunks written so far
	CurrentChunk int

	// TotalChunks is the total number of FIFO chunks to write
	TotalChunks int

	// WordsWritten is the number of bitstream words written so far
	WordsWritten int

	// TotalWords is the total bitstream length in words
	TotalWords int

	// Percentage is the completion percentage (0.0 to 100.0)
	Percentage float64

	// ElapsedTime is the time since the upload started
	ElapsedTime time.Duration
}

// ProgressCallback is called during programming to report progress.
// Implementations should return quickly; the upload blocks while the
// callback runs.
type ProgressCallback func(Progress)

// Logger is an optional logging interface. It allows integration with any
// logging framework; a nil logger disables logging.
//
// Example with the standard log package:
//
//	type StdLogger struct{}
//	func (StdLogger) Debug(msg string, kv ...interface{}) { log.Println(msg, kv) }
//	func (StdLogger) Info(msg string, kv ...interface{})  { log.Println(msg, kv) }
//	func (StdLogger) Error(msg string, kv ...interface{}) { log.Println(msg, kv) }
//
//	device := vlfd.New(transport, vlfd.WithLogger(StdLogger{}))
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}
