package main

import (
	"bytes"
	"fmt"
	"os"
	"syscall"

	"golang.org/x/term"
)

// envConfig is the process-wide configuration loaded once at startup from
// environment variables (spec §6): archive location, LLM endpoint
// credentials, and the HTTP listen address.
type envConfig struct {
	ArchiveRoot      string
	ListenAddr       string
	SQLiteMirrorPath string

	LLMProvider   string // "openai", "azure", "anthropic", "google", or "ollama"
	LLMEndpoint   string
	LLMAPIKey     string
	LLMDeployment string
	LLMAPIVersion string
}

func loadEnvConfig() (envConfig, error) {
	cfg := envConfig{
		ArchiveRoot:      envOrDefault("ARCHIVE_ROOT", "./archive"),
		ListenAddr:       envOrDefault("LISTEN_ADDR", ":8080"),
		SQLiteMirrorPath: os.Getenv("SQLITE_MIRROR_PATH"),
		LLMProvider:   envOrDefault("LLM_PROVIDER", "openai"),
		LLMEndpoint:   os.Getenv("LLM_ENDPOINT"),
		LLMAPIKey:     os.Getenv("LLM_API_KEY"),
		LLMDeployment: envOrDefault("LLM_DEPLOYMENT", "gpt-5"),
		LLMAPIVersion: os.Getenv("LLM_API_VERSION"),
	}

	if cfg.LLMAPIKey == "" {
		key, err := promptForAPIKey()
		if err != nil {
			return envConfig{}, fmt.Errorf("no LLM_API_KEY set and interactive prompt failed: %w", err)
		}
		cfg.LLMAPIKey = key
	}

	return cfg, nil
}

func envOrDefault(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

// promptForAPIKey asks for the LLM API key on an interactive terminal with
// echo disabled, mirroring the teacher's project-password prompt.
func promptForAPIKey() (string, error) {
	if !term.IsTerminal(int(syscall.Stdin)) {
		return "", fmt.Errorf("stdin is not a terminal and LLM_API_KEY is unset")
	}

	fmt.Print("Enter LLM API key: ")
	key, err := term.ReadPassword(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read API key: %w", err)
	}
	trimmed := bytes.TrimSpace(key)
	if len(trimmed) == 0 {
		return "", fmt.Errorf("empty API key entered")
	}
	return string(trimmed), nil
}
