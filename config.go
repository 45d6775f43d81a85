package main

import (
	"encoding/json"
	"os"

	"github.com/joho/godotenv"
)

// Config is the host binary's configuration: where to listen and where the
// real backend lives. Values come from defaults, then config.json, then the
// environment (.env supported).
type Config struct {
	Port    string `json:"port"`
	APIBase string `json:"api_base"`
}

var cfg Config

func loadConfig(path string) {
	cfg = Config{
		Port:    "8080",
		APIBase: "http://localhost:3000/api",
	}

	if f, err := os.Open(path); err == nil {
		json.NewDecoder(f).Decode(&cfg)
		f.Close()
	}

	_ = godotenv.Load()
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("API_BASE"); v != "" {
		cfg.APIBase = v
	}
}
