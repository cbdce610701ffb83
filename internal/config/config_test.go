package config

import (
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/go-cmp/cmp"

	"github.com/benbeisheim/chess-backend/internal/model"
)

func envFrom(m map[string]string) func(string) string {
	return func(key string) string { return m[key] }
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
		want Config
	}{
		{
			name: "defaults",
			want: Config{
				Addr:         ":3000",
				AllowOrigins: "http://localhost:5173",
				DBDir:        "data",
				LogLevel:     log.LevelInfo,
				TimeControl:  model.Blitz,
			},
		},
		{
			name: "environment",
			env: map[string]string{
				"CHESS_ADDR":         ":8080",
				"CHESS_IN_MEMORY":    "true",
				"CHESS_LOG_LEVEL":    "DEBUG",
				"CHESS_TIME_CONTROL": "rapid",
			},
			want: Config{
				Addr:         ":8080",
				AllowOrigins: "http://localhost:5173",
				DBDir:        "data",
				InMemory:     true,
				LogLevel:     log.LevelDebug,
				TimeControl:  model.Rapid,
			},
		},
		{
			name: "flags override environment",
			args: []string{"-addr", ":9000", "-db", "/tmp/games", "-time-control", "unlimited", "-allow-origins", "*"},
			env:  map[string]string{"CHESS_ADDR": ":8080", "CHESS_DB_DIR": "elsewhere"},
			want: Config{
				Addr:         ":9000",
				AllowOrigins: "*",
				DBDir:        "/tmp/games",
				LogLevel:     log.LevelInfo,
				TimeControl:  model.Unlimited,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.args, envFrom(tt.env))
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
	}{
		{"unknown flag", []string{"-verbose"}, nil},
		{"bad bool", nil, map[string]string{"CHESS_IN_MEMORY": "sometimes"}},
		{"bad log level", []string{"-log-level", "loud"}, nil},
		{"bad time control", nil, map[string]string{"CHESS_TIME_CONTROL": "glacial"}},
		{"empty address", []string{"-addr", ""}, nil},
		{"no db dir", []string{"-db", ""}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.args, envFrom(tt.env))
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}
