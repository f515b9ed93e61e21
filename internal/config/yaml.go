package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"
)

// LoadYAMLConfig load config from filename in YAML format
func LoadYAMLConfig(filename string, cfg interface{}) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("ReadFile: %v", err)
	}
	err = yaml.Unmarshal(data, cfg)
	return err
}

// InitConfig overlays configPath, when given, on the defaults and
// validates the result.
func InitConfig(configPath string) (*Config, error) {
	conf := DefaultConfig()

	if configPath != "" {
		if err := LoadYAMLConfig(configPath, conf); err != nil {
			return nil, err
		}
	}

	if err := validator.New().Struct(conf); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
	}
	return conf, nil
}
