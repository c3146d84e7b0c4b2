package config

import (
	"fmt"
	"os"
)

const configFileVar = "CLINIC_CONFIG"

type Config interface {
	EnvConfig
	APIConfig
	SessionConfig
	CorsConfig
	DevAPIConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetDataFolder() string
	GetEnv() string
	GetLogLevel() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	API
	Session
	Cors
	DevAPI
}

// New builds the configuration from the environment. When CLINIC_CONFIG names a
// YAML file its keys act as defaults underneath the environment.
func New() (Config, error) {
	src, err := newSource(os.Getenv(configFileVar))
	if err != nil {
		return nil, fmt.Errorf("[config.New] %w", err)
	}
	return mainConfig{
		EnvVars: EnvVars{src: src},
		API:     API{src: src},
		Session: Session{src: src},
		Cors:    Cors{src: src},
		DevAPI:  DevAPI{src: src},
	}, nil
}

// FromFile is New with an explicit overlay file, used by the CLI --config flag.
func FromFile(path string) (Config, error) {
	src, err := newSource(path)
	if err != nil {
		return nil, fmt.Errorf("[config.FromFile] %w", err)
	}
	return mainConfig{
		EnvVars: EnvVars{src: src},
		API:     API{src: src},
		Session: Session{src: src},
		Cors:    Cors{src: src},
		DevAPI:  DevAPI{src: src},
	}, nil
}
