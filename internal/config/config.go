// Package config loads the trainer configuration.
package config

import (
	"time"

	"xsim/internal/filter"
	"xsim/internal/viewport"
)

// AppName is used for XDG directory paths.
const AppName = "xsim"

// Defaults for the screening window and session.
const (
	DefaultAPIURL        = "http://localhost:8080"
	DefaultCanvasWidth   = 850
	DefaultCanvasHeight  = 980
	DefaultBeltSpeed     = 2.0
	DefaultFrameRate     = 60
	DefaultCourseMinutes = 20
	DefaultSideOffsetY   = 177
	DefaultIdleWindow    = 60 * time.Second
	DefaultMaxStrikes    = 3
	DefaultLoadTimeout   = 15 * time.Second
	DefaultRetryDelay    = 3 * time.Second
	DefaultClearCategory = 1
)

// CreditBand awards Credit minutes when efficiency is above Above
// (or at least Above when Inclusive is set).
type CreditBand struct {
	Above     float64 `yaml:"above"`
	Inclusive bool    `yaml:"inclusive"`
	Credit    int     `yaml:"credit"`
}

// Matches reports whether efficiency falls in the band.
func (b CreditBand) Matches(efficiency float64) bool {
	if b.Inclusive {
		return efficiency >= b.Above
	}
	return efficiency > b.Above
}

// DefaultCreditBands returns the standard >80, >70, >60, >=50 ladder.
func DefaultCreditBands() []CreditBand {
	return []CreditBand{
		{Above: 80, Credit: 20},
		{Above: 70, Credit: 16},
		{Above: 60, Credit: 14},
		{Above: 50, Inclusive: true, Credit: 12},
	}
}

// CanvasConfig is the backing size of each view.
type CanvasConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// CorrectiveConfig overrides motion settings for corrective sessions.
type CorrectiveConfig struct {
	BeltSpeed float64 `yaml:"belt_speed"`
	ZoomMin   float64 `yaml:"zoom_min"`
}

// Config holds every tunable of the trainer.
type Config struct {
	APIURL   string `yaml:"api_url"`
	LogLevel string `yaml:"log_level"`

	Canvas        CanvasConfig `yaml:"canvas"`
	BeltSpeed     float64      `yaml:"belt_speed"`
	FrameRate     int          `yaml:"frame_rate"`
	CourseMinutes int          `yaml:"course_minutes"`

	ZoomMin  float64 `yaml:"zoom_min"`
	ZoomMax  float64 `yaml:"zoom_max"`
	ZoomStep float64 `yaml:"zoom_step"`

	DragMode     string  `yaml:"drag_mode"`
	SuperEnhance string  `yaml:"super_enhance"`
	SideOffsetY  float64 `yaml:"side_offset_y"`

	IdleWindow time.Duration `yaml:"idle_window"`
	MaxStrikes int           `yaml:"max_strikes"`

	LoadTimeout     time.Duration `yaml:"load_timeout"`
	RetryDelay      time.Duration `yaml:"retry_delay"`
	PauseStopsClock bool          `yaml:"pause_stops_clock"`

	CreditBands     []CreditBand `yaml:"credit_bands"`
	ClearCategoryID int          `yaml:"clear_category_id"`

	Corrective CorrectiveConfig `yaml:"corrective"`
}

// Defaults returns a Config with every default applied.
func Defaults() *Config {
	zoom := viewport.DefaultLimits()
	return &Config{
		APIURL:          DefaultAPIURL,
		LogLevel:        "info",
		Canvas:          CanvasConfig{Width: DefaultCanvasWidth, Height: DefaultCanvasHeight},
		BeltSpeed:       DefaultBeltSpeed,
		FrameRate:       DefaultFrameRate,
		CourseMinutes:   DefaultCourseMinutes,
		ZoomMin:         zoom.Min,
		ZoomMax:         zoom.Max,
		ZoomStep:        zoom.Step,
		DragMode:        viewport.DragPan.String(),
		SuperEnhance:    filter.EnhanceSobel.String(),
		SideOffsetY:     DefaultSideOffsetY,
		IdleWindow:      DefaultIdleWindow,
		MaxStrikes:      DefaultMaxStrikes,
		LoadTimeout:     DefaultLoadTimeout,
		RetryDelay:      DefaultRetryDelay,
		CreditBands:     DefaultCreditBands(),
		ClearCategoryID: DefaultClearCategory,
		Corrective:      CorrectiveConfig{BeltSpeed: 2.5, ZoomMin: 0.5},
	}
}

// ForCorrective returns a copy with the corrective overrides applied.
func (c *Config) ForCorrective() *Config {
	out := *c
	out.CreditBands = append([]CreditBand(nil), c.CreditBands...)
	if c.Corrective.BeltSpeed > 0 {
		out.BeltSpeed = c.Corrective.BeltSpeed
	}
	if c.Corrective.ZoomMin > 0 {
		out.ZoomMin = c.Corrective.ZoomMin
	}
	return &out
}

// ZoomLimits returns the viewport limits.
func (c *Config) ZoomLimits() viewport.Limits {
	return viewport.Limits{Min: c.ZoomMin, Max: c.ZoomMax, Step: c.ZoomStep}
}

// CourseDuration returns the session length.
func (c *Config) CourseDuration() time.Duration {
	return time.Duration(c.CourseMinutes) * time.Minute
}

// Credit returns the minutes earned for an efficiency percentage.
func (c *Config) Credit(efficiency float64) int {
	for _, b := range c.CreditBands {
		if b.Matches(efficiency) {
			return b.Credit
		}
	}
	return 0
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return ErrInvalidAPIURL
	}
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		return ErrInvalidCanvas
	}
	if c.BeltSpeed <= 0 {
		return ErrInvalidBeltSpeed
	}
	if c.FrameRate <= 0 {
		return ErrInvalidFrameRate
	}
	if c.CourseMinutes <= 0 {
		return ErrInvalidCourseLength
	}
	if c.ZoomMin <= 0 || c.ZoomMin > 1 || c.ZoomMax < 1 || c.ZoomStep <= 0 {
		return ErrInvalidZoom
	}
	if _, err := viewport.ParseDragMode(c.DragMode); err != nil {
		return ErrInvalidDragMode
	}
	if _, err := filter.ParseEnhanceMode(c.SuperEnhance); err != nil {
		return ErrInvalidSuperEnhance
	}
	if c.IdleWindow <= 0 {
		return ErrInvalidIdleWindow
	}
	if c.MaxStrikes <= 0 {
		return ErrInvalidMaxStrikes
	}
	if c.LoadTimeout <= 0 || c.RetryDelay <= 0 {
		return ErrInvalidTimeout
	}
	for i := 1; i < len(c.CreditBands); i++ {
		prev, cur := c.CreditBands[i-1], c.CreditBands[i]
		if cur.Above >= prev.Above || cur.Credit > prev.Credit {
			return ErrInvalidCreditBands
		}
	}
	for _, b := range c.CreditBands {
		if b.Credit < 0 {
			return ErrInvalidCreditBands
		}
	}
	return nil
}
