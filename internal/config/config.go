package config

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/turbolytics/formsync/internal"
)

type Logger struct {
	Level string `yaml:"level"`
}

type Global struct {
	Logger Logger `yaml:"logger"`
}

type LocalDocument struct {
	Path string `yaml:"path"`
}

type S3Document struct {
	Bucket         string `yaml:"bucket"`
	Key            string `yaml:"key"`
	Region         string `yaml:"region"`
	Endpoint       string `yaml:"endpoint"`
	ForcePathStyle bool   `yaml:"force_path_style"`
}

type Document struct {
	Type  string        `yaml:"type"`
	Local LocalDocument `yaml:"local"`
	S3    S3Document    `yaml:"s3"`
}

type Tables struct {
	DataEntry string `yaml:"data_entry"`
	Settings  string `yaml:"settings"`
}

type Forms struct {
	URL   string `yaml:"url"`
	Table string `yaml:"table"`
}

type Notifier struct {
	URL string `yaml:"url"`
}

type Trigger struct {
	Activated bool `yaml:"activated"`
}

type Server struct {
	Addr string `yaml:"addr"`
}

type FormSync struct {
	Global   Global           `yaml:"global"`
	Variant  internal.Variant `yaml:"variant"`
	Document Document         `yaml:"document"`
	Tables   Tables           `yaml:"tables"`
	Forms    Forms            `yaml:"forms"`
	Notifier Notifier         `yaml:"notifier"`
	Trigger  Trigger          `yaml:"trigger"`
	Server   Server           `yaml:"server"`
}

func NewFromFile(fpath string) (*FormSync, error) {
	bs, err := os.ReadFile(fpath)
	if err != nil {
		return nil, err
	}

	var c FormSync
	if err := yaml.Unmarshal(bs, &c); err != nil {
		return nil, err
	}

	c.setDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", fpath, err)
	}
	return &c, nil
}

func (c *FormSync) setDefaults() {
	if c.Global.Logger.Level == "" {
		c.Global.Logger.Level = "info"
	}
	if c.Document.Type == "" {
		c.Document.Type = "local"
	}
	if c.Tables.DataEntry == "" {
		c.Tables.DataEntry = internal.DefaultDataEntryTable
	}
	if c.Tables.Settings == "" {
		c.Tables.Settings = internal.DefaultSettingsTable
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
}

func (c *FormSync) Validate() error {
	switch c.Variant {
	case internal.VariantEmployers, internal.VariantEvents:
	default:
		return fmt.Errorf("variant must be %q or %q, got %q", internal.VariantEmployers, internal.VariantEvents, c.Variant)
	}

	switch c.Document.Type {
	case "local":
		if c.Document.Local.Path == "" {
			return fmt.Errorf("document.local.path is required")
		}
	case "s3":
		if c.Document.S3.Bucket == "" || c.Document.S3.Key == "" {
			return fmt.Errorf("document.s3.bucket and document.s3.key are required")
		}
	default:
		return fmt.Errorf("unknown document type: %q", c.Document.Type)
	}

	if c.Forms.URL == "" {
		return fmt.Errorf("forms.url is required")
	}

	if _, err := zapcore.ParseLevel(c.Global.Logger.Level); err != nil {
		return err
	}
	return nil
}

// NewLogger builds a development logger at the configured level.
func (c *FormSync) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Global.Logger.Level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
