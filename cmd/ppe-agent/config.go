package main

import (
	"fmt"
	"time"
)

type CredentialsConfig struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Config struct {
	Credentials CredentialsConfig `json:"credentials"`
	// MaxRetries bounds every retried upstream interaction.
	MaxRetries int `json:"max_retries"`
	// TimeoutSeconds applies per upstream HTTP call.
	TimeoutSeconds int    `json:"timeout"`
	Port           int    `json:"port"`
	AssetsPath     string `json:"assets_path"`
}

func (c *Config) normalize() error {
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be a non-negative integer")
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout must be a non-negative integer")
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = 10
	}
	if c.Port == 0 {
		c.Port = 8000
	}
	if c.AssetsPath == "" {
		c.AssetsPath = "assets"
	}
	return nil
}

func (c Config) timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
