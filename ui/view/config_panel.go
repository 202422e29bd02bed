package view

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/soocke/microseg-go/config"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// ConfigPanel is the settings form in the sidebar. Saved values take effect
// on the next start.
type ConfigPanel interface {
	Build(parent *FrameWidget, startRow int) (endRow int)
	SetEditable(enabled bool)
	ApplyChanges() error
}

// setting binds one text field to one config value.
type setting struct {
	label string
	get   func(*config.Config) string
	set   func(*config.Config, string) error
	w     *TextWidget
}

type configPanel struct {
	cfg       *config.Config
	cfgPath   string
	logger    *slog.Logger
	onApplied func(*config.Config)
	onError   func(error)
	applyBtn  *ButtonWidget
	settings  []*setting
}

// NewConfigPanel creates the form bound to cfg. onApplied runs after a
// successful save, onError when input is rejected or saving fails.
func NewConfigPanel(cfg *config.Config, cfgPath string, logger *slog.Logger, onApplied func(*config.Config), onError func(error)) ConfigPanel {
	return &configPanel{
		cfg:       cfg,
		cfgPath:   cfgPath,
		logger:    logger,
		onApplied: onApplied,
		onError:   onError,
		settings:  settings(),
	}
}

func settings() []*setting {
	return []*setting{
		{
			label: "Capture Server URL",
			get:   func(c *config.Config) string { return c.BaseURL },
			set:   func(c *config.Config, s string) error { c.BaseURL = s; return nil },
		},
		{
			label: "Download Directory",
			get:   func(c *config.Config) string { return c.DataDir },
			set:   func(c *config.Config, s string) error { c.DataDir = s; return nil },
		},
		intSetting("HTTP Timeout (s)", func(c *config.Config) *int { return &c.HTTPTimeoutSeconds }),
		intSetting("Max Display Width", func(c *config.Config) *int { return &c.MaxDisplayWidth }),
		intSetting("Max Display Height", func(c *config.Config) *int { return &c.MaxDisplayHeight }),
		{
			label: "Use CUDA (true/false)",
			get:   func(c *config.Config) string { return strconv.FormatBool(c.UseCuda) },
			set: func(c *config.Config, s string) error {
				b, err := strconv.ParseBool(s)
				if err != nil {
					return errors.Errorf("use CUDA: %q is not true or false", s)
				}
				c.UseCuda = b
				return nil
			},
		},
	}
}

func intSetting(label string, field func(*config.Config) *int) *setting {
	return &setting{
		label: label,
		get:   func(c *config.Config) string { return strconv.Itoa(*field(c)) },
		set: func(c *config.Config, s string) error {
			i, err := strconv.Atoi(s)
			if err != nil {
				return errors.Errorf("%s: %q is not a number", label, s)
			}
			*field(c) = i
			return nil
		},
	}
}

func (v *configPanel) Build(parent *FrameWidget, startRow int) (row int) {
	row = startRow
	for _, s := range v.settings {
		lbl := Label(Txt(s.label), Anchor("w"))
		Grid(lbl, In(parent), Row(row), Column(0), Sticky("w"), Padx("2m"), Pady("0.15m"))
		s.w = Text(Height(1), Width(24))
		Grid(s.w, In(parent), Row(row+1), Column(0), Sticky("we"), Padx("2m"), Pady("0.15m"))
		s.w.Insert("1.0", s.get(v.cfg))
		row += 2
	}
	v.applyBtn = Button(Txt("Save Settings"), Command(func() { _ = v.ApplyChanges() }))
	Grid(v.applyBtn, In(parent), Row(row), Column(0), Sticky("we"), Padx("2m"), Pady("0.3m"))
	return row + 1
}

func (v *configPanel) SetEditable(enabled bool) {
	state := "disabled"
	if enabled {
		state = "normal"
	}
	for _, s := range v.settings {
		if s.w != nil {
			s.w.Configure(State(state))
		}
	}
	if v.applyBtn != nil {
		v.applyBtn.Configure(State(state))
	}
}

// ApplyChanges parses every field into a copy of the config and saves it.
// Empty fields keep their current value. Nothing is written unless all
// fields parse and the result validates.
func (v *configPanel) ApplyChanges() error {
	if v.cfg == nil {
		return nil
	}
	next := *v.cfg
	for _, s := range v.settings {
		if s.w == nil {
			continue
		}
		val := strings.TrimSpace(strings.Join(s.w.Get("1.0", END), ""))
		if val == "" {
			continue
		}
		if err := s.set(&next, val); err != nil {
			return v.fail("settings rejected", err)
		}
	}
	if err := next.Validate(); err != nil {
		return v.fail("settings rejected", err)
	}
	if err := next.Save(v.cfgPath); err != nil {
		return v.fail("settings save failed", errors.Wrapf(err, "save %s", v.cfgPath))
	}
	*v.cfg = next
	if v.logger != nil {
		v.logger.Info("config saved", "path", v.cfgPath)
	}
	if v.onApplied != nil {
		v.onApplied(v.cfg)
	}
	return nil
}

func (v *configPanel) fail(msg string, err error) error {
	if v.logger != nil {
		v.logger.Warn(msg, "error", err)
	}
	if v.onError != nil {
		v.onError(err)
	}
	return err
}
