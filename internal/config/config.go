package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz struct {
		QuestionsFile string `yaml:"questionsFile"`
		QuestionSet   string `yaml:"questionSet"`
		RevealDelay   string `yaml:"revealDelay"`
		CacheTTL      string `yaml:"cacheTTL"`
	} `yaml:"quiz"`
	Results struct {
		File     string `yaml:"file"`
		SortKeys string `yaml:"sortKeys"`
	} `yaml:"results"`
	Photos struct {
		Dir     string `yaml:"dir"`
		BaseURL string `yaml:"baseUrl"`
	} `yaml:"photos"`
	Camera struct {
		FrameURL string `yaml:"frameUrl"`
	} `yaml:"camera"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Duration parses a duration string or returns the fallback if empty or invalid.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
