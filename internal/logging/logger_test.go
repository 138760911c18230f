package logging

import (
	"testing"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "default config",
			cfg:     DefaultConfig(),
			wantErr: false,
		},
		{
			name: "production config",
			cfg: Config{
				Level:            "info",
				Environment:      EnvironmentProduction,
				OutputPaths:      []string{"stdout"},
				ErrorOutputPaths: []string{"stderr"},
			},
			wantErr: false,
		},
		{
			name: "invalid level",
			cfg: Config{
				Level:            "verbose",
				Environment:      EnvironmentDevelopment,
				OutputPaths:      []string{"stdout"},
				ErrorOutputPaths: []string{"stderr"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewLogger() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && logger == nil {
				t.Fatal("NewLogger() returned nil logger without error")
			}
		})
	}
}

func TestNewDevelopmentLogger(t *testing.T) {
	logger, err := NewDevelopmentLogger()
	if err != nil {
		t.Fatalf("NewDevelopmentLogger() error = %v", err)
	}
	if !logger.Core().Enabled(-1) {
		t.Error("development logger should enable debug level")
	}
}

func TestNewProductionLogger(t *testing.T) {
	logger, err := NewProductionLogger("")
	if err != nil {
		t.Fatalf("NewProductionLogger() error = %v", err)
	}
	if logger.Core().Enabled(-1) {
		t.Error("production logger should not enable debug level by default")
	}
}
