package cli

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func TestAsk(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("\nkandy\n"))
	var out bytes.Buffer

	if got := ask(in, &out, "Server URL", "http://localhost:8080"); got != "http://localhost:8080" {
		t.Errorf("empty answer = %q, want default", got)
	}
	if got := ask(in, &out, "Branch", ""); got != "kandy" {
		t.Errorf("answer = %q, want kandy", got)
	}
	if !strings.Contains(out.String(), "Server URL [http://localhost:8080]: ") {
		t.Errorf("prompt = %q", out.String())
	}
}

func TestConfigSet(t *testing.T) {
	cfgFile = filepath.Join(t.TempDir(), "config.yaml")
	t.Cleanup(func() { cfgFile = "" })

	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"server url", []string{"server_url", "http://monitor:8080"}, false},
		{"branch", []string{"branch", "colombo"}, false},
		{"unknown key", []string{"auth.token", "x"}, true},
		{"bad format", []string{"output", "xml"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newConfigSetCmd()
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})
			cmd.SetArgs(tt.args)

			err := cmd.Execute()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Execute() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	raw, err := os.ReadFile(cfgFile)
	if err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if !strings.Contains(string(raw), "colombo") || viper.GetString("branch") != "colombo" {
		t.Errorf("config = %s", raw)
	}
	if branchOrDefault("") != "colombo" || branchOrDefault("kandy") != "kandy" {
		t.Error("branchOrDefault does not honour the configured branch")
	}
}
