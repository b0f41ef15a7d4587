package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the sniffer.
type Config struct {
	// CDP connection settings
	CDPAddress string
	CDPPort    int

	// Tab matching and behavior
	TabURLFilter   string
	ReloadOnAttach bool

	// API server
	BindAddr         string
	PortCandidates   []string
	PortAutoFallback bool

	// Link persistence
	DataDir       string
	PersistLinks  bool
	BufferSize    int
	MaxFileSizeMB int

	// Network collaborators
	FetchTimeoutMS int

	// Download behavior
	DownloadDir       string
	DownloadSubfolder string
	PromptBeforeSave  bool

	// Logging
	LogLevel string
	LogFile  string
}

// Load reads configuration from environment variables and optional .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	}

	cfg := &Config{
		CDPAddress:        getEnvOrDefault("CHROMIUM_CDP_ADDRESS", "127.0.0.1"),
		CDPPort:           getEnvIntOrDefault("CHROMIUM_CDP_PORT", 9220),
		TabURLFilter:      getEnvOrDefault("SNIFFER_TAB_URL_FILTER", ""),
		ReloadOnAttach:    getEnvBoolOrDefault("SNIFFER_RELOAD_ON_ATTACH", true),
		BindAddr:          getEnvOrDefault("SNIFFER_BIND_ADDR", "127.0.0.1:8170"),
		PortCandidates:    getEnvListOrDefault("SNIFFER_PORT_CANDIDATES", []string{"127.0.0.1:8171", "127.0.0.1:8172"}),
		PortAutoFallback:  getEnvBoolOrDefault("SNIFFER_PORT_AUTO_FALLBACK", true),
		DataDir:           getEnvOrDefault("SNIFFER_DATA_DIR", "./sniffer_data"),
		PersistLinks:      getEnvBoolOrDefault("SNIFFER_PERSIST_LINKS", true),
		BufferSize:        getEnvIntOrDefault("SNIFFER_BUFFER_SIZE", 1000),
		MaxFileSizeMB:     getEnvIntOrDefault("SNIFFER_MAX_FILE_SIZE_MB", 50),
		FetchTimeoutMS:    getEnvIntOrDefault("SNIFFER_FETCH_TIMEOUT_MS", 10000),
		DownloadDir:       getEnvOrDefault("SNIFFER_DOWNLOAD_DIR", "./downloads"),
		DownloadSubfolder: getEnvOrDefault("SNIFFER_DOWNLOAD_SUBFOLDER", ""),
		PromptBeforeSave:  getEnvBoolOrDefault("SNIFFER_PROMPT_BEFORE_SAVE", false),
		LogLevel:          getEnvOrDefault("SNIFFER_LOG_LEVEL", "info"),
		LogFile:           getEnvOrDefault("SNIFFER_LOG_FILE", "logs/sniffer.log"),
	}

	return cfg, nil
}

// GetCDPURL returns the full CDP HTTP endpoint used by chromedp remote allocator.
func (c *Config) GetCDPURL() string {
	return fmt.Sprintf("http://%s:%d", c.CDPAddress, c.CDPPort)
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBoolOrDefault(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvListOrDefault(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
