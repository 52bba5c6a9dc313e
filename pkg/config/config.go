package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

var DebugLog func(string, ...interface{})

type Config struct {
	DefaultSettings DefaultSettings `yaml:"default_settings"`
	LLM             LLM             `yaml:"llm"`
	Crawler         Crawler         `yaml:"crawler"`
	Database        Database        `yaml:"database"`
	Elastic         Elastic         `yaml:"elastic"`
}

type DefaultSettings struct {
	Timeout int `yaml:"timeout"`
}

type LLM struct {
	Model         string  `yaml:"model"`
	OllamaBaseURL string  `yaml:"ollama_base_url"`
	OpenAIBaseURL string  `yaml:"openai_base_url"`
	OpenAIAPIKey  string  `yaml:"openai_api_key"`
	MaxTokens     int     `yaml:"max_tokens"`
	Temperature   float32 `yaml:"temperature"`
	MaxToolRounds int     `yaml:"max_tool_rounds"`
	DebugHTTP     bool    `yaml:"debug_http"`
}

type Crawler struct {
	BaseURL     string `yaml:"base_url"`
	TOCURL      string `yaml:"toc_url"`
	RateLimitMS int    `yaml:"rate_limit_ms"`
	Workers     int    `yaml:"workers"`
	OutputDir   string `yaml:"output_dir"`
}

type Database struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
}

type Elastic struct {
	Enabled  bool   `yaml:"enabled"`
	URL      string `yaml:"url"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Index    string `yaml:"index"`
}

type Manager struct {
	config     *Config
	configPath string
}

func NewManager(configPath string) *Manager {
	return &Manager{
		configPath: configPath,
	}
}

func (m *Manager) LoadConfig() error {
	if m.configPath == "" {
		m.configPath = m.findConfigFile()
	}

	if DebugLog != nil {
		DebugLog("loading config from %s", m.configPath)
	}

	config := defaultConfig()

	if _, err := os.Stat(m.configPath); err == nil {
		data, err := os.ReadFile(m.configPath)
		if err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if DebugLog != nil {
		DebugLog("no config file found, using defaults and environment")
	}

	applyEnvOverrides(config)

	if err := m.validateConfig(config); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	m.config = config
	return nil
}

func defaultConfig() *Config {
	return &Config{
		DefaultSettings: DefaultSettings{
			Timeout: 10,
		},
		LLM: LLM{
			Model:         "ollama:qwen2.5-coder:7b",
			OllamaBaseURL: "http://localhost:11434",
			OpenAIBaseURL: "https://api.openai.com",
			MaxTokens:     1024,
			Temperature:   0.2,
			MaxToolRounds: 10,
		},
		Crawler: Crawler{
			BaseURL:     "https://www.ncleg.gov",
			TOCURL:      "https://www.ncleg.gov/Laws/GeneralStatutesTOC",
			RateLimitMS: 500,
			Workers:     4,
			OutputDir:   "output",
		},
		Database: Database{
			Host: "localhost",
			Port: 5432,
			User: "postgres",
			Name: "lexscout_corpus",
		},
		Elastic: Elastic{
			URL:   "http://localhost:9200",
			Index: "lexscout_sections",
		},
	}
}

// Environment always wins over file values. The DB variables match the
// .envrc.example contract.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("LEXSCOUT_DB_HOST"); v != "" {
		config.Database.Host = v
		config.Database.Enabled = true
	}
	if v := os.Getenv("LEXSCOUT_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Database.Port = port
		}
	}
	if v := os.Getenv("LEXSCOUT_DB_USER"); v != "" {
		config.Database.User = v
	}
	if v := os.Getenv("LEXSCOUT_DB_PASSWORD"); v != "" {
		config.Database.Password = v
	}
	if v := os.Getenv("LEXSCOUT_DB_NAME"); v != "" {
		config.Database.Name = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		config.Database.URL = v
		config.Database.Enabled = true
	}
	if v := os.Getenv("OLLAMA_BASE_URL"); v != "" {
		config.LLM.OllamaBaseURL = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		config.LLM.OpenAIAPIKey = v
	}
	if v := os.Getenv("LEXSCOUT_MODEL"); v != "" {
		config.LLM.Model = v
	}
	if v := os.Getenv("ELASTIC_URL"); v != "" {
		config.Elastic.URL = v
		config.Elastic.Enabled = true
	}

	if DebugLog != nil {
		logFoundEnv()
	}
}

func logFoundEnv() {
	known := []string{
		"LEXSCOUT_DB_HOST", "LEXSCOUT_DB_PORT", "LEXSCOUT_DB_USER",
		"LEXSCOUT_DB_PASSWORD", "LEXSCOUT_DB_NAME", "DATABASE_URL",
		"OLLAMA_BASE_URL", "OPENAI_API_KEY", "LEXSCOUT_MODEL", "ELASTIC_URL",
	}

	for _, name := range known {
		if os.Getenv(name) != "" {
			DebugLog("environment override found for %s", name)
		}
	}
}

func (m *Manager) GetConfig() *Config {
	return m.config
}

func (m *Manager) findConfigFile() string {
	if _, err := os.Stat("config.yaml"); err == nil {
		return "config.yaml"
	}

	if _, err := os.Stat("config/config.yaml"); err == nil {
		return "config/config.yaml"
	}

	if configPath := GetDefaultConfigPath(); configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
	}

	return "config/config.yaml"
}

func (m *Manager) validateConfig(config *Config) error {
	if config.DefaultSettings.Timeout <= 0 {
		return fmt.Errorf("timeout must be greater than 0")
	}

	if config.LLM.Model == "" {
		return fmt.Errorf("llm model must not be empty")
	}

	if config.LLM.MaxToolRounds <= 0 {
		return fmt.Errorf("max_tool_rounds must be greater than 0")
	}

	if config.Crawler.Workers <= 0 {
		return fmt.Errorf("crawler workers must be greater than 0")
	}

	return nil
}

// ConnString assembles a lib/pq DSN for dbname, preferring the full URL when
// one was provided and the target matches the configured database.
func (d *Database) ConnString(dbname string) string {
	if dbname == "" {
		dbname = d.Name
	}

	if d.URL != "" && dbname == d.Name {
		return d.URL
	}

	conn := fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, dbname)
	if d.Password != "" {
		conn += fmt.Sprintf(" password=%s", d.Password)
	}

	return conn
}
