package app

import (
	"image"
	"io"
	"log/slog"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/soocke/microseg-go/app/worker"
	"github.com/soocke/microseg-go/config"
	"github.com/soocke/microseg-go/domain/capture"
	"github.com/soocke/microseg-go/domain/segment"
	"github.com/soocke/microseg-go/domain/segment/sam2model"
	"github.com/soocke/microseg-go/domain/task"
	"github.com/soocke/microseg-go/ui/model"
	"github.com/soocke/microseg-go/ui/presenter"
	"github.com/soocke/microseg-go/ui/view"
)

// AppContainer assembles services, models, presenters and the root view.
type AppContainer struct {
	Config  *config.Config
	CfgPath string
	Logger  *slog.Logger

	Client    *capture.Client
	Model     segment.Model
	Segmenter *segment.Segmenter
	Inbox     *task.Inbox
	Queue     *task.Queue

	State    *model.State
	BusyTime *model.BusyTimer
	RootView *view.RootView

	// Presenters
	SegmentationPresenter *presenter.SegmentationPresenter
	StatusPresenter       *presenter.StatusPresenter
	BusyPresenter         *presenter.BusyPresenter
	Loop                  *presenter.Loop
}

// BuildContainer constructs all components. Loading the segmentation model is
// the only expensive side effect; when it fails the app still starts and every
// segmentation reports the load error.
func BuildContainer(cfg *config.Config, logger *slog.Logger, cfgPath string) *AppContainer {
	c := &AppContainer{Config: cfg, CfgPath: cfgPath, Logger: logger}
	c.Client = capture.NewClient(cfg.BaseURL, cfg.DataDir, cfg.HTTPTimeout(), logger)

	m, err := sam2model.New(sam2model.Config{
		OnnxRuntimeLibPath: cfg.OnnxRuntimeLibPath,
		EncoderModelPath:   cfg.EncoderModelPath,
		DecoderModelPath:   cfg.DecoderModelPath,
		UseCuda:            cfg.UseCuda,
	}, logger)
	if err != nil {
		logger.Warn("segmentation model unavailable", "error", err)
		c.Model = segment.Unavailable(errors.Wrap(err, "segmentation model unavailable"))
	} else {
		c.Model = m
	}
	c.Segmenter = segment.NewSegmenter(c.Model, logger)

	handler := worker.New(c.Client, c.Segmenter, image.Pt(cfg.MaxDisplayWidth, cfg.MaxDisplayHeight), logger)
	c.Inbox = task.NewInbox()
	c.Queue = task.NewQueue(handler, c.Inbox, logger)

	c.State = model.NewState(segment.ModeEverything)
	c.BusyTime = model.NewBusyTimer()
	c.RootView = view.NewRootView(cfg, cfgPath, logger)

	c.StatusPresenter = presenter.NewStatusPresenter(c.RootView)
	c.SegmentationPresenter = presenter.NewSegmentationPresenter(c.State, c.Queue, c.Inbox, c.RootView, c.RootView, c.StatusPresenter, logger)
	c.BusyPresenter = presenter.NewBusyPresenter(c.BusyTime, c.SegmentationPresenter, c.RootView)
	// Loop scheduling is attached by the app once Tk is running.
	c.Loop = presenter.NewLoop(c.SegmentationPresenter, c.StatusPresenter, c.BusyPresenter, nil)
	return c
}

// Close stops the worker after its current task and releases the model.
func (c *AppContainer) Close() error {
	var err error
	if c.Queue != nil {
		err = c.Queue.Close()
	}
	if closer, ok := c.Model.(io.Closer); ok {
		if cerr := closer.Close(); cerr != nil {
			err = multierr.Append(err, errors.Wrap(cerr, "close model"))
		}
	}
	return err
}
