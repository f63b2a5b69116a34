package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the root application configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Mongo  MongoConfig  `yaml:"mongo"`
	Maria  MariaConfig  `yaml:"maria"`
	Redis  RedisConfig  `yaml:"redis"`
	Nats   NatsConfig   `yaml:"nats"`
	JWT    JWTConfig    `yaml:"jwt"`
	Log    LogConfig    `yaml:"log"`
}

type ServerConfig struct {
	RESTPort int `yaml:"rest_port"`
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type MariaConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type RedisConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Addr       string `yaml:"addr"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

type NatsConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
}

type JWTConfig struct {
	Secret   string `yaml:"secret"`
	TTLHours int    `yaml:"ttl_hours"`
}

type LogConfig struct {
	ConsoleLevel string `yaml:"console_level"`
}

// GetRESTPort returns the REST API port with priority: config -> env -> default.
func (s *ServerConfig) GetRESTPort() int {
	return getPortWithEnvFallback(s.RESTPort, "ARSENAL_REST_PORT", 8088)
}

// GetMongoURI returns the MongoDB URI with priority: config -> env -> default.
func (m *MongoConfig) GetMongoURI() string {
	return getStringWithEnvFallback(m.URI, "ARSENAL_MONGO_URI", "mongodb://localhost:27017")
}

// GetDatabase returns the MongoDB database name.
func (m *MongoConfig) GetDatabase() string {
	return getStringWithEnvFallback(m.Database, "ARSENAL_MONGO_DB", "arsenal")
}

// GetTTL returns the catalog cache entry lifetime (default 60s).
func (r *RedisConfig) GetTTL() int {
	if r.TTLSeconds > 0 {
		return r.TTLSeconds
	}
	return 60
}

// GetSecret returns the JWT signing secret (base64). Empty means a random
// per-process secret is generated at startup.
func (j *JWTConfig) GetSecret() string {
	return getStringWithEnvFallback(j.Secret, "ARSENAL_JWT_SECRET", "")
}

// GetTTLHours returns the session token lifetime (default 7 days).
func (j *JWTConfig) GetTTLHours() int {
	if j.TTLHours > 0 {
		return j.TTLHours
	}
	if envVal := os.Getenv("ARSENAL_JWT_TTL_HOURS"); envVal != "" {
		if h, err := strconv.Atoi(envVal); err == nil && h > 0 {
			return h
		}
	}
	return 168
}

func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	if configPort > 0 {
		return configPort
	}
	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}
	return defaultPort
}

func getStringWithEnvFallback(configVal string, envVar string, defaultVal string) string {
	if configVal != "" {
		return configVal
	}
	if envVal := os.Getenv(envVar); envVal != "" {
		return envVal
	}
	return defaultVal
}

// Load reads the YAML configuration file.
// If path == "", it tries ENV ARSENAL_CONFIG or returns nil, nil (defaults).
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("ARSENAL_CONFIG")
		if path == "" {
			return nil, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
