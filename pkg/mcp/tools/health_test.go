package tools

import (
	"errors"
	"testing"
)

func TestRegisterAll_ToolList(t *testing.T) {
	tests := []struct {
		name string
		deps *Deps
		want []string
	}{
		{"health only", &Deps{Version: "1"}, []string{"health"}},
		{"everything", &Deps{
			Assistant: &fakeAsker{},
			Schema:    &fakeSchema{},
			Runner:    &fakeRunner{},
		}, []string{"ask_question", "get_schema", "health", "refresh_schema", "run_query"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := listTools(t, newTestServer(tt.deps))
			if len(got) != len(tt.want) {
				t.Fatalf("expected tools %v, got %v", tt.want, got)
			}
			for _, name := range tt.want {
				found := false
				for _, g := range got {
					if g == name {
						found = true
						break
					}
				}
				if !found {
					t.Errorf("tool %q not found in tools/list response", name)
				}
			}
		})
	}
}

func TestHealthTool_Execute(t *testing.T) {
	tests := []struct {
		name          string
		pinger        Pinger
		wantStatus    string
		wantWarehouse string
	}{
		{"no pinger", nil, "ok", ""},
		{"warehouse up", fakePinger{}, "ok", "ok"},
		{"warehouse down", fakePinger{err: errors.New("refused")}, "degraded", "unreachable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(&Deps{Version: "1.2.3", Pinger: tt.pinger})

			var health healthResult
			decodeText(t, callTool(t, s, "health", nil), &health)

			if health.Status != tt.wantStatus {
				t.Errorf("expected status %q, got %q", tt.wantStatus, health.Status)
			}
			if health.Warehouse != tt.wantWarehouse {
				t.Errorf("expected warehouse %q, got %q", tt.wantWarehouse, health.Warehouse)
			}
			if health.Version != "1.2.3" {
				t.Errorf("expected version '1.2.3', got '%s'", health.Version)
			}
		})
	}
}

func TestHealthTool_VersionWithSpecialChars(t *testing.T) {
	versionWithQuotes := `1.0.0-beta"test`
	s := newTestServer(&Deps{Version: versionWithQuotes})

	var health healthResult
	decodeText(t, callTool(t, s, "health", nil), &health)
	if health.Version != versionWithQuotes {
		t.Errorf("expected version %q, got %q", versionWithQuotes, health.Version)
	}
}
