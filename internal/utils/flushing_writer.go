package utils

import (
	"io"
	"sync"
)

type flusher interface {
	Flush() error
}

// FlushingWriter forwards writes and flushes buffered destinations immediately so
// payloads written without a trailing newline still reach the consumer.
type FlushingWriter struct {
	destination io.Writer
	mutex       sync.Mutex
}

// NewFlushingWriter wraps destination unless it is already a FlushingWriter.
func NewFlushingWriter(destination io.Writer) io.Writer {
	if destination == nil {
		return io.Discard
	}
	if existing, isFlushing := destination.(*FlushingWriter); isFlushing {
		return existing
	}
	return &FlushingWriter{destination: destination}
}

// Write delegates to the destination and flushes it when supported.
func (writer *FlushingWriter) Write(data []byte) (int, error) {
	writer.mutex.Lock()
	defer writer.mutex.Unlock()

	bytesWritten, writeError := writer.destination.Write(data)
	if writeError != nil {
		return bytesWritten, writeError
	}

	if flushable, supportsFlush := writer.destination.(flusher); supportsFlush {
		if flushError := flushable.Flush(); flushError != nil {
			return bytesWritten, flushError
		}
	}
	return bytesWritten, nil
}
