// package runners contains the timed write run and the
// benchmark matrix driver built on top of it
package runners

import (
	"errors"
	"io"
	"os"
	"time"

	"github.com/jessegalley/fsyncbench/internal/policy"
)

const (
	// DefaultFilePath is the scratch file used when no path is given
	DefaultFilePath = "test.bin"

	// DefaultChunkSize is substituted for a non-positive chunk size
	DefaultChunkSize = 4096

	// DefaultTargetSize is 1 GiB
	DefaultTargetSize int64 = 1 << 30

	// DefaultTrials is the matrix trial count per policy
	DefaultTrials = 20

	// MaxChunkSize bounds the heap buffer allocated for each run
	MaxChunkSize = 1 << 30

	// Filler is the constant byte every chunk is filled with
	Filler byte = 'x'
)

// ErrInvalidChunkSize is returned when the chunk size is outside (0, MaxChunkSize]
var ErrInvalidChunkSize = errors.New("invalid chunk size")

// Sink is the file a timed run writes into. Flush must force
// previously written data to durable storage before returning.
type Sink interface {
	io.Writer
	Flush() error
	Close() error
}

// Opener opens (creating if absent) the scratch file at path for writing
type Opener func(path string) (Sink, error)

// Config contains the configuration for a single timed write run
type Config struct {
	// path to the scratch file
	FilePath string

	// number of bytes written per write call
	ChunkSize int

	// total bytes to write, truncated to a whole number of chunks
	TargetSize int64

	// when to force written data to durable storage
	Policy policy.FlushPolicy

	// opens the scratch file (nil uses OpenScratch)
	Open Opener

	// destination for human readable progress lines (nil discards them)
	Progress io.Writer
}

// NewConfig creates a Config with the default sizes and an on-close policy
func NewConfig() Config {
	return Config{
		FilePath:   DefaultFilePath,
		ChunkSize:  DefaultChunkSize,
		TargetSize: DefaultTargetSize,
		Policy:     policy.NewOnClose(),
	}
}

// Iterations returns the number of write calls a run with this config issues
func (c Config) Iterations() int64 {
	if c.ChunkSize <= 0 {
		return 0
	}
	return c.TargetSize / int64(c.ChunkSize)
}

func (c Config) opener() Opener {
	if c.Open == nil {
		return OpenScratch
	}
	return c.Open
}

func (c Config) progress() io.Writer {
	if c.Progress == nil {
		return io.Discard
	}
	return c.Progress
}

// Result contains the metrics from a single timed write run
type Result struct {
	// policy the run was executed with
	Policy policy.FlushPolicy

	// number of write calls completed
	Writes int64

	// number of durability flushes issued
	Flushes int64

	// total bytes written
	BytesWritten int64

	// wall clock time from the first write to the end of the final flush
	Elapsed time.Duration
}

// Millis returns the elapsed time truncated to whole milliseconds
func (r Result) Millis() int64 {
	return r.Elapsed.Milliseconds()
}

// fileSink is the os backed Sink
type fileSink struct {
	f *os.File
}

func (s *fileSink) Write(p []byte) (int, error) {
	return s.f.Write(p)
}

// Flush forces the file data to the device, see datasync
func (s *fileSink) Flush() error {
	return datasync(s.f)
}

func (s *fileSink) Close() error {
	return s.f.Close()
}

// OpenScratch opens path for read/write with owner only permissions,
// creating it if needed. an existing file is not truncated, writes
// start at offset 0 and overwrite what is there.
func OpenScratch(path string) (Sink, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, err
	}
	return &fileSink{f: f}, nil
}
