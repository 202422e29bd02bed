package presenter

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/soocke/microseg-go/domain/segment"
	"github.com/soocke/microseg-go/domain/task"
	"github.com/soocke/microseg-go/ui/images"
	"github.com/soocke/microseg-go/ui/model"
)

// Submitter enqueues work for the background worker.
type Submitter interface {
	Submit(task.Task) bool
}

// Inbox yields completions posted by the worker.
type Inbox interface {
	Drain(func(task.Finished)) int
}

// Controls is the enablement of every sidebar control.
type Controls struct {
	LoadCapture bool
	SelectFile  bool
	Mode        bool
	Run         bool
	Clear       bool
}

// SegmentationView is the canvas and sidebar surface driven by the presenter.
type SegmentationView interface {
	ShowFrame(img image.Image)
	ClearFrame()
	SetControls(Controls)
}

// Dialogs are the modal interactions. Both block until dismissed.
type Dialogs interface {
	ShowError(title, msg string)
	AskImagePath() (string, bool)
}

// StatusSink receives short human readable status updates.
type StatusSink interface {
	OnStatus(string)
}

// SegmentationPresenter turns pointer and button events into prompts and tasks,
// and applies task completions to the canvas. All methods run on the Tk
// thread; the worker is reached only through Submitter and Inbox.
type SegmentationPresenter struct {
	state   *model.State
	queue   Submitter
	inbox   Inbox
	view    SegmentationView
	dialogs Dialogs
	status  StatusSink
	logger  *slog.Logger

	Background color.Color

	inFlight int
	dirty    bool
	lastCtl  Controls
	ctlSet   bool
}

// NewSegmentationPresenter wires the presenter. status may be nil.
func NewSegmentationPresenter(state *model.State, queue Submitter, inbox Inbox, view SegmentationView, dialogs Dialogs, status StatusSink, logger *slog.Logger) *SegmentationPresenter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SegmentationPresenter{
		state:      state,
		queue:      queue,
		inbox:      inbox,
		view:       view,
		dialogs:    dialogs,
		status:     status,
		logger:     logger,
		Background: color.NRGBA{R: 0x21, G: 0x21, B: 0x21, A: 0xff},
	}
}

// Busy reports whether any submitted task has not completed yet.
func (p *SegmentationPresenter) Busy() bool {
	if p == nil {
		return false
	}
	return p.inFlight > 0
}

// OnLoadLastCapture queues a download of the newest remote capture. The
// download chains into an upload when it completes.
func (p *SegmentationPresenter) OnLoadLastCapture() {
	if p == nil || p.Busy() {
		return
	}
	if p.submit(task.NewDownload()) {
		p.setStatus("Downloading last capture")
	}
}

// OnSelectFile asks for a local image and queues it for loading.
func (p *SegmentationPresenter) OnSelectFile() {
	if p == nil || p.Busy() || p.dialogs == nil {
		return
	}
	path, ok := p.dialogs.AskImagePath()
	if !ok || path == "" {
		return
	}
	if p.submit(task.NewUpload(path)) {
		p.setStatus("Loading image")
	}
}

// OnRun queues a segmentation of the current prompt. A missing prompt is a
// caller error and is only logged.
func (p *SegmentationPresenter) OnRun() {
	if p == nil || p.Busy() {
		return
	}
	prompt, err := p.state.PromptSnapshot()
	if err != nil {
		p.logger.Warn("segmentation not started", "mode", p.state.Mode().String(), "error", err)
		return
	}
	if p.submit(task.NewSegment(p.state.Mode(), prompt)) {
		p.setStatus("Segmenting (" + p.state.Mode().String() + ")")
	}
}

// OnModeChanged switches mode, discarding prompt and overlays.
func (p *SegmentationPresenter) OnModeChanged(m segment.Mode) {
	if p == nil {
		return
	}
	if p.state.SetMode(m) {
		p.logger.Debug("mode changed", "mode", m.String())
		p.dirty = true
		p.syncControls()
	}
}

// OnClear drops the prompt and restores the unsegmented image.
func (p *SegmentationPresenter) OnClear() {
	if p == nil || p.Busy() {
		return
	}
	p.state.Clear()
	p.dirty = true
	p.syncControls()
}

// OnResize records the canvas size reported by the view.
func (p *SegmentationPresenter) OnResize(w, h int) {
	if p == nil || w <= 0 || h <= 0 {
		return
	}
	if p.state.Resize(image.Pt(w, h)) {
		p.dirty = true
		p.syncControls()
	}
}

func (p *SegmentationPresenter) OnPointerDown(x, y int) {
	if p == nil {
		return
	}
	if p.state.PointerDown(image.Pt(x, y)) {
		p.dirty = true
		p.syncControls()
	}
}

func (p *SegmentationPresenter) OnPointerDrag(x, y int) {
	if p == nil {
		return
	}
	if p.state.PointerDrag(image.Pt(x, y)) {
		p.dirty = true
	}
}

func (p *SegmentationPresenter) OnPointerUp(x, y int) {
	if p == nil {
		return
	}
	if p.state.PointerUp(image.Pt(x, y)) {
		p.dirty = true
		p.syncControls()
	}
}

// Tick drains worker completions, redraws the canvas at most once and then
// reports failures, one modal dialog each.
func (p *SegmentationPresenter) Tick() {
	if p == nil {
		return
	}
	var failures []error
	if p.inbox != nil {
		p.inbox.Drain(func(f task.Finished) {
			if err := p.complete(f); err != nil {
				failures = append(failures, err)
			}
		})
	}
	if p.dirty {
		p.render()
	}
	p.syncControls()
	for _, err := range failures {
		if p.dialogs != nil {
			p.dialogs.ShowError("Error", err.Error())
		}
	}
}

// complete applies one completion and returns the error the user should see,
// if any.
func (p *SegmentationPresenter) complete(f task.Finished) error {
	if p.inFlight > 0 {
		p.inFlight--
	}
	log := p.logger.With("task", f.Task.ID().String(), "kind", f.Task.Kind(), "took", f.Duration)

	if f.Err != nil {
		if errors.Is(f.Err, segment.ErrUnsupportedMode) {
			log.Warn("task skipped", "error", f.Err)
			p.finishBusy("Ready")
			return nil
		}
		log.Error("task failed", "error", f.Err)
		switch f.Task.(type) {
		case task.Upload:
			p.state.Unload()
			p.dirty = true
		case task.Segment:
			p.state.ClearPrompt()
			p.dirty = true
		}
		p.finishBusy("Failed: " + f.Task.Kind())
		return f.Err
	}

	log.Info("task completed")
	switch res := f.Result.(type) {
	case task.DownloadResult:
		if !p.submit(task.NewUpload(res.Path)) {
			p.finishBusy("Failed: upload")
			break
		}
		p.setStatus("Loading " + res.Capture.Name)
	case task.ImageResult:
		p.state.SetImage(res.Image)
		p.dirty = true
		p.finishBusy("Loaded " + res.Path)
	case task.SegmentResult:
		p.state.ShowResult(res.Image)
		p.dirty = true
		p.finishBusy("Segmented: " + pluralMasks(len(res.Masks)))
	default:
		log.Warn("unexpected task result", "type", fmt.Sprintf("%T", f.Result))
		p.finishBusy("Ready")
	}
	return nil
}

func (p *SegmentationPresenter) finishBusy(status string) {
	p.state.SetBusy(p.Busy())
	if !p.Busy() {
		p.setStatus(status)
	}
}

func (p *SegmentationPresenter) submit(t task.Task) bool {
	if p.queue == nil || !p.queue.Submit(t) {
		p.logger.Error("task rejected", "task", t.ID().String(), "kind", t.Kind())
		return false
	}
	p.inFlight++
	p.state.SetBusy(true)
	p.logger.Debug("task submitted", "task", t.ID().String(), "kind", t.Kind())
	p.syncControls()
	return true
}

func (p *SegmentationPresenter) render() {
	p.dirty = false
	if p.view == nil {
		return
	}
	if !p.state.HasImage() || p.state.Current() == nil {
		p.view.ClearFrame()
		return
	}
	frame := images.Frame(p.state.Canvas(), p.state.Current(), p.state.DisplayBox(), p.Background)
	r, hasRect, pts := p.state.Overlay()
	images.DrawPrompt(frame, r, hasRect, pts)
	p.view.ShowFrame(frame)
}

func (p *SegmentationPresenter) syncControls() {
	if p.view == nil {
		return
	}
	busy := p.Busy()
	c := Controls{
		LoadCapture: !busy,
		SelectFile:  !busy,
		Mode:        !busy,
		Run:         p.state.CanRun(),
		Clear:       !busy && p.state.HasImage(),
	}
	if p.ctlSet && c == p.lastCtl {
		return
	}
	p.lastCtl, p.ctlSet = c, true
	p.view.SetControls(c)
}

func (p *SegmentationPresenter) setStatus(s string) {
	if p.status != nil {
		p.status.OnStatus(s)
	}
}

func pluralMasks(n int) string {
	if n == 1 {
		return "1 mask"
	}
	return fmt.Sprintf("%d masks", n)
}
