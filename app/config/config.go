package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server Server `yaml:"server"`
	Log    Log    `yaml:"log"`
	DB     DB     `yaml:"db"`
	Data   Data   `yaml:"data"`
	OpenAI OpenAI `yaml:"openai"`
}

type Server struct {
	// Address to bind the HTTP server to
	Host string `yaml:"host" example:"0.0.0.0" validate:"required"`
	// Port to listen on
	Port int `yaml:"port" example:"5000" validate:"required,min=1,max=65535"`
}

type OpenAI struct {
	// Model used to phrase interview questions; leave token empty to run
	// fully deterministic
	Phrasing ModelConfig `yaml:"phrasing"`
}

type ModelConfig struct {
	// OpenAI-compatible base url
	BaseURL string `yaml:"base_url" example:"https://openrouter.ai/api/v1"`
	// API token
	Token string `yaml:"token" example:"sk-proj-abc123456789DEF789ghi012JKL345mno678PQR901stu234VWX"`
	// Model name
	Model string `yaml:"model" example:"qwen/qwen-2.5-7b-instruct:free"`
}

type Log struct {
	// Telegram logging config
	Telegram TelegramLog `yaml:"telegram"`
}

type TelegramLog struct {
	// Chat bot token, obtain it via BotFather
	Token string `yaml:"token" example:"1234567890:ABCdefGHIjklMNopQRstUVwxyZ-123456789"`
	// Chat ID to send messages to
	ChatID string `yaml:"chat_id" example:"1001234567890"`
}

type DB struct {
	// SQLite database file for sessions and messages
	Path string `yaml:"path" example:"data/sessions.db" validate:"required"`
}

type Data struct {
	// JSON file listing agents with their recorded time points
	AgentsFile string `yaml:"agents_file" example:"data/data.json" validate:"required"`
}

func Load() (*Config, error) {
	return LoadFrom("config.yaml")
}

func LoadFrom(path string) (*Config, error) {
	var result Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, oops.Errorf("failed to read config file: %w", err)
	}

	if err = yaml.Unmarshal(data, &result); err != nil {
		return nil, oops.Errorf("failed to parse YAML config: %w", err)
	}

	if result.Server.Host == "" {
		result.Server.Host = "0.0.0.0"
	}
	if result.Server.Port == 0 {
		result.Server.Port = 5000
	}
	if result.DB.Path == "" {
		result.DB.Path = "data/sessions.db"
	}
	if result.Data.AgentsFile == "" {
		result.Data.AgentsFile = "data/data.json"
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(result); err != nil {
		return nil, oops.Errorf("failed to validate config: %w", err)
	}

	return &result, nil
}
