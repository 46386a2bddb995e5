package config

import "time"

// Default values for configuration
const (
	// Server defaults
	DefaultServerPort      = 8000
	DefaultShutdownTimeout = 10 * time.Second

	// Logger defaults
	DefaultLogLevel = "info"
	DefaultLogJSON  = false

	// Gemini defaults
	DefaultGeminiModel       = "gemini-2.5-flash"
	DefaultGeminiTemperature = 0.2

	// Yelp defaults
	DefaultYelpEndpoint = "https://api.yelp.com/ai/chat/v2"
	DefaultYelpTimeout  = 60 * time.Second

	// Search context defaults, applied when a request omits the field
	DefaultSearchLocation = "College Park, Maryland"
	DefaultSearchDate     = "12/11/2025"
	DefaultSearchTime     = "8pm"
)
