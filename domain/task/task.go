// Package task serializes long-running work (downloads, image loads,
// segmentation) on a single worker goroutine and reports completions to an
// inbox owned by the UI thread.
package task

import (
	"github.com/google/uuid"

	"github.com/soocke/microseg-go/domain/segment"
)

// Task is a closed set of work items: Download, Upload and Segment. The
// unexported marker keeps other packages from adding variants the worker
// cannot dispatch.
type Task interface {
	ID() uuid.UUID
	Kind() string
	task()
}

type header struct{ id uuid.UUID }

func newHeader() header { return header{id: uuid.New()} }

func (h header) ID() uuid.UUID { return h.id }
func (header) task()           {}

// Download fetches the most recent remote capture.
type Download struct {
	header
}

// Upload loads a local image file.
type Upload struct {
	header
	Path string
}

// Segment runs the model for Mode. Prompt is an image-space snapshot taken on
// the UI thread when the task was created.
type Segment struct {
	header
	Mode   segment.Mode
	Prompt segment.Prompt
}

func NewDownload() Download { return Download{header: newHeader()} }

func NewUpload(path string) Upload { return Upload{header: newHeader(), Path: path} }

func NewSegment(mode segment.Mode, prompt segment.Prompt) Segment {
	return Segment{header: newHeader(), Mode: mode, Prompt: prompt}
}

func (Download) Kind() string { return "download" }
func (Upload) Kind() string   { return "upload" }
func (Segment) Kind() string  { return "segment" }

// State is the lifecycle position of a task.
type State int

const (
	StateQueued State = iota
	StateRunning
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateQueued:
		return "queued"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
