package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bryanwahyu/fileprobe-sec/internal/domain/tools"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Scratch struct {
		Root           string `yaml:"root"`
		MaxUploadBytes int64  `yaml:"maxUploadBytes"`
	} `yaml:"scratch"`

	Analysis struct {
		Workers       int `yaml:"workers"`
		MaxConcurrent int `yaml:"maxConcurrent"`
	} `yaml:"analysis"`

	// Tools deklarasi battery analyzer; kosong = pakai default battery
	Tools []ToolConfig `yaml:"tools"`

	Database struct {
		Driver   string `yaml:"driver"` // mysql | postgres
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslmode"`
	} `yaml:"database"`

	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	AI struct {
		APIKey string `yaml:"apiKey"`
		Model  string `yaml:"model"`
	} `yaml:"ai"`

	Auth struct {
		// map tenant -> API key; kosong = auth dimatikan
		APIKeys map[string]string `yaml:"apiKeys"`
	} `yaml:"auth"`

	RateLimit struct {
		Capacity   int `yaml:"capacity"`
		RefillRate int `yaml:"refillRate"`
	} `yaml:"ratelimit"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`
}

// ToolConfig bentuk yaml satu ToolSpec
type ToolConfig struct {
	Name           string   `yaml:"name"`
	Kinds          []string `yaml:"kinds"`
	Argv           []string `yaml:"argv"`
	TimeoutSeconds int      `yaml:"timeoutSeconds"`
	MaxOutputBytes int64    `yaml:"maxOutputBytes"`
	MaxMemoryMB    int      `yaml:"maxMemoryMB"`
	MaxCPUSeconds  int      `yaml:"maxCpuSeconds"`
	SuccessCodes   []int    `yaml:"successCodes"`
	NoFindingCodes []int    `yaml:"noFindingCodes"`
	BinaryOutput   bool     `yaml:"binaryOutput"`
}

// Load baca file config.yaml
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 5000
	}
	if c.Scratch.Root == "" {
		c.Scratch.Root = "uploads"
	}
	if c.Scratch.MaxUploadBytes <= 0 {
		c.Scratch.MaxUploadBytes = 256 << 20
	}
	if c.Analysis.Workers <= 0 {
		c.Analysis.Workers = 4
	}
	if c.Analysis.MaxConcurrent <= 0 {
		c.Analysis.MaxConcurrent = 4
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "mysql"
	}
	if c.RateLimit.Capacity <= 0 {
		c.RateLimit.Capacity = 30
	}
	if c.RateLimit.RefillRate <= 0 {
		c.RateLimit.RefillRate = 5
	}
}

// ToolSpecs build daftar ToolSpec dari config; kosong = default battery
func (c *Config) ToolSpecs() []tools.ToolSpec {
	if len(c.Tools) == 0 {
		return tools.DefaultSpecs()
	}
	specs := make([]tools.ToolSpec, 0, len(c.Tools))
	for _, t := range c.Tools {
		kinds := make([]tools.Kind, 0, len(t.Kinds))
		for _, k := range t.Kinds {
			kinds = append(kinds, tools.Kind(k))
		}
		timeout := time.Duration(t.TimeoutSeconds) * time.Second
		if timeout <= 0 {
			timeout = tools.DefaultTimeout
		}
		maxOut := t.MaxOutputBytes
		if maxOut <= 0 {
			maxOut = tools.DefaultMaxOutputBytes
		}
		specs = append(specs, tools.ToolSpec{
			Name:           t.Name,
			Kinds:          kinds,
			Argv:           t.Argv,
			Timeout:        timeout,
			MaxOutputBytes: maxOut,
			MaxMemoryMB:    t.MaxMemoryMB,
			MaxCPUSeconds:  t.MaxCPUSeconds,
			SuccessCodes:   t.SuccessCodes,
			NoFindingCodes: t.NoFindingCodes,
			BinaryOutput:   t.BinaryOutput,
		})
	}
	return specs
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// PostgresDSN build DSN lib/pq
func (c *Config) PostgresDSN() string {
	ssl := c.Database.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		ssl,
	)
}
