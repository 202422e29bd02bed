package view

import (
	"image"
	"log/slog"
	"strconv"
	"time"

	"github.com/soocke/microseg-go/config"
	"github.com/soocke/microseg-go/domain/geometry"
	"github.com/soocke/microseg-go/domain/segment"
	"github.com/soocke/microseg-go/ui/presenter"
	"github.com/soocke/microseg-go/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// Handlers are the user actions RootView forwards. Nil entries are skipped.
type Handlers struct {
	OnLoadLastCapture func()
	OnSelectFile      func()
	OnModeChanged     func(segment.Mode)
	OnRun             func()
	OnClear           func()
	OnExit            func()
	OnSettingsSaved   func(*config.Config)

	OnResize      func(w, h int)
	OnPointerDown func(x, y int)
	OnPointerDrag func(x, y int)
	OnPointerUp   func(x, y int)
}

// RootView composes the top-level application layout and wires UI callbacks.
// The sidebar holds the actions and the mode selector; the canvas fills the
// rest of the window.
type RootView struct {
	cfg     *config.Config
	cfgPath string
	logger  *slog.Logger

	// Subviews
	Canvas      CanvasView
	Busy        BusyStats
	ConfigPanel ConfigPanel

	// Widgets
	StatusLabel *TLabelWidget
	ModeSelect  *TComboboxWidget
	loadBtn     *TButtonWidget
	fileBtn     *TButtonWidget
	runBtn      *TButtonWidget
	clearBtn    *TButtonWidget
}

var (
	_ presenter.SegmentationView = (*RootView)(nil)
	_ presenter.StatusView       = (*RootView)(nil)
	_ presenter.BusyView         = (*RootView)(nil)
	_ presenter.Dialogs          = (*RootView)(nil)
)

func NewRootView(cfg *config.Config, cfgPath string, logger *slog.Logger) *RootView {
	return &RootView{cfg: cfg, cfgPath: cfgPath, logger: logger}
}

// Build constructs the layout and binds h.
func (rv *RootView) Build(h Handlers) {
	if rv == nil {
		return
	}
	pal := theme.CurrentPalette()

	// Column 0: sidebar
	side := Frame(Background(pal.Surface), Borderwidth(0))
	Grid(side, Row(0), Column(0), Sticky("nsw"), Padx("2m"), Pady("2m"))

	title := TLabel(Txt("Segmentation"), Style(theme.StyleAccentLabel))
	Grid(title, In(side), Row(0), Column(0), Sticky("we"), Padx("2m"), Pady("2m"))

	rv.loadBtn = TButton(Txt("Last Capture"), Command(call(h.OnLoadLastCapture)))
	Grid(rv.loadBtn, In(side), Row(1), Column(0), Sticky("we"), Padx("2m"), Pady("1m"))
	rv.fileBtn = TButton(Txt("Select File"), Command(call(h.OnSelectFile)))
	Grid(rv.fileBtn, In(side), Row(2), Column(0), Sticky("we"), Padx("2m"), Pady("1m"))

	modeLbl := Label(Txt("Mode"), Anchor("w"), Background(pal.Surface), Foreground(pal.TextMuted))
	Grid(modeLbl, In(side), Row(3), Column(0), Sticky("w"), Padx("2m"), Pady("0.5m"))
	names := make([]string, len(segment.Modes))
	for i, m := range segment.Modes {
		names[i] = m.String()
	}
	rv.ModeSelect = TCombobox(Values(names), State("readonly"), Width(18))
	Grid(rv.ModeSelect, In(side), Row(4), Column(0), Sticky("we"), Padx("2m"), Pady("1m"))
	rv.ModeSelect.Current(0)
	Bind(rv.ModeSelect, "<<ComboboxSelected>>", Command(func() {
		if rv.ModeSelect == nil || h.OnModeChanged == nil {
			return
		}
		idxStr := rv.ModeSelect.Current(nil)
		idx, err := strconv.Atoi(idxStr)
		if err != nil || idx < 0 || idx >= len(segment.Modes) {
			if rv.logger != nil {
				rv.logger.Error("mode selection parse error", "value", idxStr, "error", err)
			}
			return
		}
		h.OnModeChanged(segment.Modes[idx])
	}))

	// Spacer row pushes Run and Clear to the bottom.
	GridRowConfigure(side, 5, Weight(1))

	rv.runBtn = TButton(Txt("Run"), Style(theme.StylePrimaryButton), Command(call(h.OnRun)))
	Grid(rv.runBtn, In(side), Row(6), Column(0), Sticky("we"), Padx("2m"), Pady("1m"))
	rv.clearBtn = TButton(Txt("Clear"), Style(theme.StyleDangerButton), Command(call(h.OnClear)))
	Grid(rv.clearBtn, In(side), Row(7), Column(0), Sticky("we"), Padx("2m"), Pady("1m"))

	rv.StatusLabel = TLabel(Txt("Ready"), Style(theme.StyleStateLabel), Width(24))
	Grid(rv.StatusLabel, In(side), Row(8), Column(0), Sticky("we"), Padx("2m"), Pady("1m"))
	rv.Busy = NewBusyStats(side, 9)

	rv.ConfigPanel = NewConfigPanel(rv.cfg, rv.cfgPath, rv.logger, func(c *config.Config) {
		rv.SetStatus("Settings saved; restart to apply")
		if h.OnSettingsSaved != nil {
			h.OnSettingsSaved(c)
		}
	}, func(err error) {
		rv.ShowError("Settings", err.Error())
	})
	next := rv.ConfigPanel.Build(side, 11)

	themeBtn := TButton(Txt("Toggle Theme"), Command(func() {
		dark := theme.ToggleDark()
		if rv.cfg != nil {
			rv.cfg.DarkMode = dark
		}
	}))
	Grid(themeBtn, In(side), Row(next), Column(0), Sticky("we"), Padx("2m"), Pady("1m"))
	exitBtn := TButton(Txt("Exit"), Command(call(h.OnExit)))
	Grid(exitBtn, In(side), Row(next+1), Column(0), Sticky("we"), Padx("2m"), Pady("1m"))

	// Column 1: canvas
	area := Frame(Background(pal.Canvas), Borderwidth(0))
	Grid(area, Row(0), Column(1), Sticky("nsew"), Padx("2m"), Pady("2m"))
	GridRowConfigure(App, 0, Weight(1))
	GridColumnConfigure(App, 1, Weight(1))
	rv.Canvas = NewCanvasView(area, pal.Canvas)

	lbl := rv.Canvas.Widget()
	if h.OnResize != nil {
		Bind(lbl, "<Configure>", Command(func(e *Event) {
			if sz, ok := geometry.ParseSize(e.Width, e.Height); ok {
				h.OnResize(sz.X, sz.Y)
			}
		}))
	}
	if h.OnPointerDown != nil {
		Bind(lbl, "<Button-1>", Command(func(e *Event) { h.OnPointerDown(e.X, e.Y) }))
	}
	if h.OnPointerDrag != nil {
		Bind(lbl, "<B1-Motion>", Command(func(e *Event) { h.OnPointerDrag(e.X, e.Y) }))
	}
	if h.OnPointerUp != nil {
		Bind(lbl, "<ButtonRelease-1>", Command(func(e *Event) { h.OnPointerUp(e.X, e.Y) }))
	}
}

func call(f func()) func() {
	return func() {
		if f != nil {
			f()
		}
	}
}

// ShowFrame displays a rendered canvas frame.
func (rv *RootView) ShowFrame(img image.Image) {
	if rv != nil && rv.Canvas != nil {
		rv.Canvas.Show(img)
	}
}

// ClearFrame empties the canvas.
func (rv *RootView) ClearFrame() {
	if rv != nil && rv.Canvas != nil {
		rv.Canvas.Reset()
	}
}

// SetControls applies button and selector enablement. Settings are editable
// only while idle.
func (rv *RootView) SetControls(c presenter.Controls) {
	if rv == nil {
		return
	}
	setButton(rv.loadBtn, c.LoadCapture)
	setButton(rv.fileBtn, c.SelectFile)
	setButton(rv.runBtn, c.Run)
	setButton(rv.clearBtn, c.Clear)
	if rv.ModeSelect != nil {
		if c.Mode {
			rv.ModeSelect.Configure(State("readonly"))
		} else {
			rv.ModeSelect.Configure(State("disabled"))
		}
	}
	if rv.ConfigPanel != nil {
		rv.ConfigPanel.SetEditable(c.LoadCapture)
	}
}

func setButton(b *TButtonWidget, enabled bool) {
	if b == nil {
		return
	}
	if enabled {
		b.Configure(State("normal"))
	} else {
		b.Configure(State("disabled"))
	}
}

// SetStatus updates the status label text.
func (rv *RootView) SetStatus(text string) {
	if rv != nil && rv.StatusLabel != nil {
		rv.StatusLabel.Configure(Txt(text))
	}
}

// SetBusyTime updates the busy duration labels.
func (rv *RootView) SetBusyTime(current, total time.Duration) {
	if rv == nil || rv.Busy == nil {
		return
	}
	rv.Busy.SetCurrent(current)
	rv.Busy.SetTotal(total)
}
