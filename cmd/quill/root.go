package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"quill/pkg/dom"
	"quill/pkg/images"
	"quill/pkg/layout"
)

// app carries the state shared by the commands of one invocation.
type app struct {
	v       *viper.Viper
	cfgFile string
	verbose bool
	cfg     Config
	log     *zap.Logger
	images  *images.Store
}

func newApp() *app {
	v := viper.New()
	SetDefaults(v)
	return &app{v: v, log: zap.NewNop()}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "quill",
		Short:         "quill lays out HTML documents with an incremental CSS layout core.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initialize(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.log.Sync()
		},
	}
	root.SetVersionTemplate(`{{printf "quill version %s\n" .Version}}`)

	pf := root.PersistentFlags()
	pf.StringVarP(&a.cfgFile, "config", "c", "", "config file (default is ./quill.yaml)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "development logging and debug tracing")
	pf.Int("width", 800, "viewport width in pixels")
	pf.Int("height", 600, "viewport height in pixels")
	pf.Float64("scrollbar", 16, "scrollbar thickness, 0 for overlay scrollbars")
	pf.Int("max-iterations", 3, "bound of the scrollbar settlement loop")
	pf.Float64("page-height", 0, "lay out as paged media with this page height")
	pf.String("trace", "error", "trace level of the layout packages (error, info, debug)")
	bind := map[string]string{
		"viewport.width":            "width",
		"viewport.height":           "height",
		"scrollbar.thickness":       "scrollbar",
		"settlement.max_iterations": "max-iterations",
		"trace.level":               "trace",
	}
	for key, flag := range bind {
		_ = a.v.BindPFlag(key, pf.Lookup(flag))
	}

	root.AddCommand(newLayoutCmd(a), newRenderCmd(a), newVersionCmd())
	return root
}

// initialize reads the configuration and sets up logging and tracing.
func (a *app) initialize(cmd *cobra.Command) error {
	if err := readConfig(a.v, a.cfgFile); err != nil {
		return err
	}
	if err := a.v.Unmarshal(&a.cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if f := cmd.Flags().Lookup("page-height"); f != nil && f.Changed {
		h, _ := cmd.Flags().GetFloat64("page-height")
		a.cfg.Paged = PagedConfig{Enabled: h > 0, PageHeight: h}
	}
	log, err := newLogger(a.verbose)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	a.log = log
	level := a.cfg.Trace.Level
	if a.verbose {
		level = "debug"
	}
	setupTracing(level, cmd.ErrOrStderr())
	if used := a.v.ConfigFileUsed(); used != "" {
		a.log.Debug("config loaded", zap.String("file", used))
	}
	return a.cfg.Validate()
}

// loadDocument parses an HTML file into a styled document. Images are
// resolved relative to the file.
func (a *app) loadDocument(path string) (*dom.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	a.images = images.NewStore(filepath.Dir(path))
	doc, err := dom.ParseHTMLWithImages(f, a.images)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	a.log.Debug("document loaded", zap.String("file", path), zap.Int("nodes", doc.NodeCount()))
	return doc, nil
}

// layout runs the layout core passes times over one cache. Debug messages
// go to the logger.
func (a *app) layout(doc *dom.Document, passes int) (*layout.LayoutResult, error) {
	cache := layout.NewLayoutCache()
	var res *layout.LayoutResult
	for i := 0; i < passes; i++ {
		sink := &layout.DebugLog{}
		var err error
		res, err = layout.LayoutDocument(doc, a.cfg.ViewportRect(), cache, sink, a.cfg.LayoutOptions()...)
		for _, m := range sink.Messages {
			if m.Kind == layout.DebugWarning {
				a.log.Warn(m.Message, zap.Int("node", m.Node))
			} else {
				a.log.Debug(m.Message, zap.Stringer("kind", m.Kind), zap.Int("node", m.Node))
			}
		}
		if err != nil {
			return res, err
		}
		a.log.Info("layout done",
			zap.Int("pass", i+1),
			zap.Int("boxes", res.Tree.Len()),
			zap.Ints("roots", res.Roots),
			zap.Int("iterations", res.Iterations))
	}
	return res, nil
}
