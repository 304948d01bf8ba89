package runners

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/jessegalley/fsyncbench/internal/policy"
)

// TimedWrite performs one measurement: it writes cfg.TargetSize bytes to
// the scratch file in cfg.ChunkSize chunks, flushing according to
// cfg.Policy, and returns how long that took. any open, write, flush or
// close failure invalidates the measurement and is returned as an error.
func TimedWrite(cfg Config) (Result, error) {
	result := Result{Policy: cfg.Policy}

	// the buffer is allocated per run, so bound it first
	if cfg.ChunkSize <= 0 || cfg.ChunkSize > MaxChunkSize {
		return result, fmt.Errorf("%w: %d (must be between 1 and %d)", ErrInvalidChunkSize, cfg.ChunkSize, MaxChunkSize)
	}
	if cfg.TargetSize < 0 {
		return result, fmt.Errorf("target size must not be negative, got %d", cfg.TargetSize)
	}

	progress := cfg.progress()
	iterations := cfg.Iterations()

	// announce the run
	fmt.Fprintf(progress, "writing %d MiB in chunks of %d for %d syscalls, fsync %s\n",
		cfg.TargetSize/(1024*1024), cfg.ChunkSize, iterations, describeInterval(cfg.Policy))

	// open the scratch file
	f, err := cfg.opener()(cfg.FilePath)
	if err != nil {
		return result, fmt.Errorf("failed to open scratch file %s: %w", cfg.FilePath, err)
	}

	// fill the chunk with the constant filler byte
	buf := bytes.Repeat([]byte{Filler}, cfg.ChunkSize)

	start := time.Now()
	err = writeChunks(f, buf, iterations, cfg.Policy, &result)
	result.Elapsed = time.Since(start)

	// close regardless of how the loop ended, but report the loop error first
	closeErr := f.Close()
	if err != nil {
		return result, err
	}
	if closeErr != nil {
		return result, fmt.Errorf("failed to close scratch file %s: %w", cfg.FilePath, closeErr)
	}

	fmt.Fprintf(progress, "done in %d millis\n", result.Millis())

	return result, nil
}

// writeChunks issues iterations writes of buf, flushing whenever the
// running total passes the next interval threshold. the first threshold
// is 0, so an interval policy always flushes after the first chunk.
func writeChunks(f Sink, buf []byte, iterations int64, p policy.FlushPolicy, result *Result) error {
	interval := p.Bytes()

	var written, nextFlush int64
	for i := int64(0); i < iterations; i++ {
		n, err := f.Write(buf)
		if err != nil {
			return fmt.Errorf("failed to write chunk %d: %w", i, err)
		}
		if n != len(buf) {
			return fmt.Errorf("chunk %d wrote %d of %d bytes: %w", i, n, len(buf), io.ErrShortWrite)
		}

		// update write counters
		result.Writes++
		result.BytesWritten += int64(n)

		if interval > 0 {
			written += int64(n)
			if written > nextFlush {
				if err := f.Flush(); err != nil {
					return fmt.Errorf("failed to flush after %d bytes: %w", written, err)
				}
				result.Flushes++
				nextFlush += interval
			}
		}
	}

	// sync on close
	if p.Kind() == policy.OnClose {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("failed to flush before close: %w", err)
		}
		result.Flushes++
	}

	return nil
}

func describeInterval(p policy.FlushPolicy) string {
	switch p.Kind() {
	case policy.Interval:
		return fmt.Sprintf("every %d KiB", p.Bytes()/1024)
	case policy.OnClose:
		return "on close"
	default:
		return "never"
	}
}
