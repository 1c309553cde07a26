package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// DefaultChartScriptURL is the Chart.js build the timeline report loads.
const DefaultChartScriptURL = "https://cdn.jsdelivr.net/npm/chart.js@4.4.0/dist/chart.umd.min.js"

// Config holds the configuration for trace report generation
type Config struct {
	// Input and output locations
	ReportsDir   string `mapstructure:"reports_dir"`
	TraceFile    string `mapstructure:"trace_file"`
	EvidenceFile string `mapstructure:"evidence_file"`
	TimelineFile string `mapstructure:"timeline_file"`
	AllureDir    string `mapstructure:"allure_dir"`

	// AllureHistoryDir points at a previous allure-report/history directory
	AllureHistoryDir string `mapstructure:"allure_history_dir"`

	// Rendering settings
	ProjectName    string `mapstructure:"project_name"`
	ChartScriptURL string `mapstructure:"chart_script_url"`
	ShowInsights   bool   `mapstructure:"show_insights"`

	Environment Environment `mapstructure:"environment"`
	History     History     `mapstructure:"history"`
	Server      Server      `mapstructure:"server"`

	LogLevel string `mapstructure:"log_level"`
}

// Environment is the run context recorded into Allure environment properties.
type Environment struct {
	Name     string `mapstructure:"name"`
	BaseURL  string `mapstructure:"base_url"`
	Browser  string `mapstructure:"browser"`
	Headless bool   `mapstructure:"headless"`
	Parallel int    `mapstructure:"parallel"`
}

// History controls the opt-in run history database.
type History struct {
	Enabled        bool    `mapstructure:"enabled"`
	Dir            string  `mapstructure:"dir"`
	WindowDays     int     `mapstructure:"window_days"`
	FlakyThreshold float64 `mapstructure:"flaky_threshold"`
	RetentionDays  int     `mapstructure:"retention_days"`
}

// Server configures the report server.
type Server struct {
	Port int `mapstructure:"port"`
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		ReportsDir:     "reports",
		TraceFile:      "cucumber-report.json",
		EvidenceFile:   "detailed-report.html",
		TimelineFile:   "timeline-report.html",
		AllureDir:      "allure-results",
		ProjectName:    getProjectName(),
		ChartScriptURL: DefaultChartScriptURL,
		ShowInsights:   true,
		Environment: Environment{
			Name:     "development",
			BaseURL:  "https://pokeapi.co",
			Browser:  "chromium",
			Headless: true,
			Parallel: 2,
		},
		History: History{
			Enabled:        false,
			Dir:            ".trace-history",
			WindowDays:     30,
			FlakyThreshold: 0.3,
			RetentionDays:  90,
		},
		Server:   Server{Port: 8080},
		LogLevel: "info",
	}
}

// LoadConfig loads configuration from the first config file found, then
// applies environment overrides
func LoadConfig() (*Config, error) {
	cfg := NewConfig()

	configPaths := []string{
		"trace-report.yml",
		"trace-report.yaml",
		"trace-report.json",
		".config/trace-report.yml",
	}

	for _, path := range configPaths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := cfg.LoadFromFile(path); err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", path, err)
		}
		break
	}

	cfg.LoadFromEnv()
	return cfg, cfg.Validate()
}

// LoadFromFile loads configuration from a file (YAML, JSON, or TOML)
func (c *Config) LoadFromFile(path string) error {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return err
	}

	return v.Unmarshal(c)
}

// LoadFromEnv loads configuration from environment variables. This is the
// only place the process environment is consulted.
func (c *Config) LoadFromEnv() {
	if dir := os.Getenv("TRACE_REPORT_DIR"); dir != "" {
		c.ReportsDir = dir
	}
	if input := os.Getenv("TRACE_REPORT_INPUT"); input != "" {
		c.TraceFile = input
	}

	if env := os.Getenv("ENVIRONMENT"); env != "" {
		c.Environment.Name = env
	}
	if baseURL := os.Getenv("BASE_URL"); baseURL != "" {
		c.Environment.BaseURL = baseURL
	}
	if browser := os.Getenv("BROWSER"); browser != "" {
		c.Environment.Browser = browser
	}
	if headless := os.Getenv("HEADLESS"); headless != "" {
		c.Environment.Headless = !strings.EqualFold(headless, "false")
	}
	if parallel := os.Getenv("CUCUMBER_PARALLEL"); parallel != "" {
		if n, err := strconv.Atoi(parallel); err == nil {
			c.Environment.Parallel = n
		}
	}

	if history := os.Getenv("TRACE_REPORT_HISTORY"); history == "true" {
		c.History.Enabled = true
	}
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	v := viper.New()
	v.SetConfigFile(path)

	v.Set("reports_dir", c.ReportsDir)
	v.Set("trace_file", c.TraceFile)
	v.Set("evidence_file", c.EvidenceFile)
	v.Set("timeline_file", c.TimelineFile)
	v.Set("allure_dir", c.AllureDir)
	v.Set("project_name", c.ProjectName)
	v.Set("environment.name", c.Environment.Name)
	v.Set("environment.base_url", c.Environment.BaseURL)
	v.Set("environment.browser", c.Environment.Browser)
	v.Set("environment.headless", c.Environment.Headless)
	v.Set("environment.parallel", c.Environment.Parallel)
	v.Set("history.enabled", c.History.Enabled)

	return v.WriteConfig()
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.ReportsDir == "" {
		return fmt.Errorf("reports_dir must not be empty")
	}
	if c.TraceFile == "" {
		return fmt.Errorf("trace_file must not be empty")
	}
	if c.History.FlakyThreshold < 0 || c.History.FlakyThreshold > 1 {
		return fmt.Errorf("history.flaky_threshold must be within [0, 1], got %v", c.History.FlakyThreshold)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	return nil
}

// TracePath resolves the trace file; relative names live under ReportsDir.
func (c *Config) TracePath() string {
	return c.resolve(c.TraceFile)
}

func (c *Config) EvidencePath() string {
	return c.resolve(c.EvidenceFile)
}

func (c *Config) TimelinePath() string {
	return c.resolve(c.TimelineFile)
}

func (c *Config) AllurePath() string {
	return c.resolve(c.AllureDir)
}

func (c *Config) HistoryPath() string {
	return c.resolve(c.History.Dir)
}

func (c *Config) resolve(name string) string {
	if filepath.IsAbs(name) || filepath.Dir(name) != "." {
		return name
	}
	return filepath.Join(c.ReportsDir, name)
}

// getProjectName tries to get project name from current directory
func getProjectName() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "Cucumber Project"
	}
	return filepath.Base(cwd)
}
