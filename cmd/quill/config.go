package main

import (
	"fmt"
	"image"
	"strings"

	"github.com/spf13/viper"

	"quill/pkg/layout"
	"quill/pkg/text"
)

// Config is the CLI configuration, read from quill.yaml, QUILL_* variables
// and flags.
type Config struct {
	Viewport   ViewportConfig   `mapstructure:"viewport" yaml:"viewport"`
	Scrollbar  ScrollbarConfig  `mapstructure:"scrollbar" yaml:"scrollbar"`
	Settlement SettlementConfig `mapstructure:"settlement" yaml:"settlement"`
	Paged      PagedConfig      `mapstructure:"paged" yaml:"paged"`
	Text       TextConfig       `mapstructure:"text" yaml:"text"`
	Output     OutputConfig     `mapstructure:"output" yaml:"output"`
	Trace      TraceConfig      `mapstructure:"trace" yaml:"trace"`
}

type ViewportConfig struct {
	Width  int `mapstructure:"width" yaml:"width"`
	Height int `mapstructure:"height" yaml:"height"`
}

type ScrollbarConfig struct {
	Thickness float64 `mapstructure:"thickness" yaml:"thickness"`
}

type SettlementConfig struct {
	MaxIterations int `mapstructure:"max_iterations" yaml:"max_iterations"`
}

type PagedConfig struct {
	Enabled    bool    `mapstructure:"enabled" yaml:"enabled"`
	PageHeight float64 `mapstructure:"page_height" yaml:"page_height"`
}

// TextConfig selects the text layout. With a regular font file text is
// measured from font faces, otherwise with a monospace grid.
type TextConfig struct {
	Advance    float64        `mapstructure:"advance" yaml:"advance"`
	LineHeight float64        `mapstructure:"line_height" yaml:"line_height"`
	FontSize   float64        `mapstructure:"font_size" yaml:"font_size"`
	Fonts      text.FontFiles `mapstructure:"fonts" yaml:"fonts"`
}

type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format"`
}

// TraceConfig sets the level of the library tracers.
type TraceConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("viewport.width", 800)
	v.SetDefault("viewport.height", 600)
	v.SetDefault("scrollbar.thickness", 16.0)
	v.SetDefault("settlement.max_iterations", 3)
	v.SetDefault("paged.enabled", false)
	v.SetDefault("paged.page_height", 1056.0)
	v.SetDefault("text.advance", 8.0)
	v.SetDefault("text.line_height", 18.0)
	v.SetDefault("text.font_size", 16.0)
	v.SetDefault("output.format", "tree")
	v.SetDefault("trace.level", "error")
}

// readConfig reads the config file and the environment into v. A missing
// default config file is not an error.
func readConfig(v *viper.Viper, file string) error {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("quill")
		v.SetConfigType("yaml")
	}
	v.SetEnvPrefix("QUILL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

// Validate rejects configurations the layout core cannot run with.
func (c *Config) Validate() error {
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		return fmt.Errorf("invalid viewport %dx%d", c.Viewport.Width, c.Viewport.Height)
	}
	if c.Paged.Enabled && c.Paged.PageHeight <= 0 {
		return fmt.Errorf("paged media needs a positive page height, have %g", c.Paged.PageHeight)
	}
	switch c.Output.Format {
	case "tree", "yaml":
	default:
		return fmt.Errorf("unknown output format %q", c.Output.Format)
	}
	return nil
}

// ViewportRect is the viewport as an image rectangle.
func (c *Config) ViewportRect() image.Rectangle {
	return image.Rect(0, 0, c.Viewport.Width, c.Viewport.Height)
}

// TextLayout builds the text collaborator of the layout core.
func (c *Config) TextLayout() text.Layout {
	if c.Text.Fonts.Regular != "" {
		return text.NewFaceLayout(c.Text.Fonts)
	}
	return text.Monospace{Advance: c.Text.Advance, LineHeight: c.Text.LineHeight}
}

// LayoutOptions translates the configuration into layout options.
func (c *Config) LayoutOptions() []layout.Option {
	opts := []layout.Option{
		layout.WithTextLayout(c.TextLayout()),
		layout.WithScrollbarThickness(c.Scrollbar.Thickness),
		layout.WithMaxSettlementIterations(c.Settlement.MaxIterations),
		layout.WithDefaultFontSize(c.Text.FontSize),
	}
	if c.Paged.Enabled {
		opts = append(opts, layout.WithPagedMedia(c.Paged.PageHeight))
	}
	return opts
}
