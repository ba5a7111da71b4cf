// Package config handles viewer configuration loading and management.
package config

// Pick readback modes.
const (
	PickingValue = "value" // storage-buffer read of the interpolated value
	PickingIndex = "index" // async readback of the sample index attachment
)

// Config holds all viewer settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Viewer   ViewerConfig   `yaml:"viewer"`
	Data     DataConfig     `yaml:"data"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
	FPSLimit   int  `yaml:"fps_limit"`
}

// ViewerConfig holds interaction settings.
type ViewerConfig struct {
	// Picking selects the pixel readback variant: "value" or "index".
	Picking string `yaml:"picking"`
	ShowFPS bool   `yaml:"show_fps"`
}

// DataConfig holds the input data file paths.
type DataConfig struct {
	Surface   string `yaml:"surface"`   // Height field TIFF
	Amplitude string `yaml:"amplitude"` // Matching amplitude TIFF
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			FPSLimit:   0,
		},
		Viewer: ViewerConfig{
			Picking: PickingValue,
			ShowFPS: false,
		},
		Data: DataConfig{
			Surface:   "surface.tif",
			Amplitude: "amplitude.tif",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
