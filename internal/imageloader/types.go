// Package imageloader is a bounded-concurrency task dispatcher that
// deduplicates concurrent requests for the same image+size, coordinates
// with an imagecache.Cache to avoid redundant decode/resize work, and
// invokes per-request callbacks on worker goroutines.
package imageloader

import "github.com/KreesoAuriga/ImageLoader/internal/imagecache"

// Status is the terminal outcome of a single load task.
type Status int

const (
	StatusSuccess Status = iota
	StatusFailedToLoad
	StatusOutOfMemory
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "Success"
	case StatusFailedToLoad:
		return "FailedToLoad"
	case StatusOutOfMemory:
		return "OutOfMemory"
	default:
		return "Unknown"
	}
}

// Result is delivered to a task's callback exactly once.
type Result[T imagecache.Sized] struct {
	Status Status
	Image  imagecache.Handle[T]
	Err    error
}

// Message returns the error text, or "" on success.
func (r Result[T]) Message() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Callback receives the outcome of a TryGetImage(AtSize) call. It may run on
// any worker goroutine and must be safe to call concurrently with callbacks
// from other tasks.
type Callback[T imagecache.Sized] func(Result[T])

// TryGetStatus reports whether TryGetImage(AtSize) placed a new task or
// found one already queued for the same identifier.
type TryGetStatus int

const (
	PlacedNewTaskInQueue TryGetStatus = iota
	TaskAlreadyExistsAndIsQueued
)

func (s TryGetStatus) String() string {
	switch s {
	case PlacedNewTaskInQueue:
		return "PlacedNewTaskInQueue"
	case TaskAlreadyExistsAndIsQueued:
		return "TaskAlreadyExistsAndIsQueued"
	default:
		return "Unknown"
	}
}

// Decoder is the external pixel-decoder contract: read a file path, return
// its dimensions and raw RGBA8 bytes, or an error if the file is absent or
// cannot be decoded.
type Decoder interface {
	Decode(path string) (width, height int, pixels []byte, err error)
}

// Factory is the external image-factory contract: construct a client-typed
// image value from decoded/resized RGBA8 pixels. Implementations must take
// ownership of pixels (keep the slice, don't copy-and-discard it).
type Factory[T imagecache.Sized] interface {
	Construct(width, height int, path string, pixels []byte) (T, error)
}
