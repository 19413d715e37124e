package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MongoConfig describes the document collection that holds the posts.
type MongoConfig struct {
	URI        string `yaml:"uri"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

// ElasticConfig describes the search index the projector writes to.
type ElasticConfig struct {
	Addresses []string `yaml:"addresses"`
	Username  string   `yaml:"username"`
	Password  string   `yaml:"password"`
	Index     string   `yaml:"index"`
}

// DataConfig holds the dataset file paths shared by the pipeline stages.
type DataConfig struct {
	RawCSV     string `yaml:"raw_csv"`
	CleanCSV   string `yaml:"clean_csv"`
	CleanJSONL string `yaml:"clean_jsonl"`
}

// Config holds application configuration
type Config struct {
	Mongo   MongoConfig   `yaml:"mongo"`
	Elastic ElasticConfig `yaml:"elastic"`
	Data    DataConfig    `yaml:"data"`

	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
}

// LoadConfig loads configuration from YAML file
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	// Expand environment variables in connection credentials before
	// defaulting, so an unset variable falls back cleanly
	config.Mongo.URI = os.ExpandEnv(config.Mongo.URI)
	config.Elastic.Password = os.ExpandEnv(config.Elastic.Password)
	for i := range config.Elastic.Addresses {
		config.Elastic.Addresses[i] = os.ExpandEnv(config.Elastic.Addresses[i])
	}

	// Set defaults
	if config.Mongo.URI == "" {
		config.Mongo.URI = "mongodb://localhost:27017"
	}
	if config.Mongo.Database == "" {
		config.Mongo.Database = "harassment"
	}
	if config.Mongo.Collection == "" {
		config.Mongo.Collection = "posts"
	}

	if len(config.Elastic.Addresses) == 0 {
		config.Elastic.Addresses = []string{"http://localhost:9200"}
	}
	if config.Elastic.Username == "" {
		config.Elastic.Username = "elastic"
	}
	if config.Elastic.Index == "" {
		config.Elastic.Index = "harcelement_posts"
	}

	if config.Data.RawCSV == "" {
		config.Data.RawCSV = "data/cyberbullying.csv"
	}
	if config.Data.CleanCSV == "" {
		config.Data.CleanCSV = "data/cyberbullying_clean.csv"
	}
	if config.Data.CleanJSONL == "" {
		config.Data.CleanJSONL = "data/cyberbullying_clean.jsonl"
	}

	if config.Server.Port == "" {
		config.Server.Port = "8003"
	}

	return config, nil
}
