package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"roi-snapshot/src/config"
	"roi-snapshot/src/singleinstance"
)

func TestNormalizeLegacyArgs(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		out  []string
	}{
		{
			name: "Normalizes long single dash flags",
			in:   []string{"roi-snapshot", "-continuous", "-title", "Paint"},
			out:  []string{"roi-snapshot", "--continuous", "--title", "Paint"},
		},
		{
			name: "Normalizes equals form",
			in:   []string{"roi-snapshot", "-clusters=5", "-output=/tmp/out"},
			out:  []string{"roi-snapshot", "--clusters=5", "--output=/tmp/out"},
		},
		{
			name: "Leaves short and GNU flags unchanged",
			in:   []string{"roi-snapshot", "-c", "-t", "game", "--key", "p"},
			out:  []string{"roi-snapshot", "-c", "-t", "game", "--key", "p"},
		},
		{
			name: "Leaves values that look like flags",
			in:   []string{"roi-snapshot", "--title", "-title-bar-"},
			out:  []string{"roi-snapshot", "--title", "-title-bar-"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeLegacyArgs(tt.in)
			if len(got) != len(tt.out) {
				t.Fatalf("Expected len=%d, got %d", len(tt.out), len(got))
			}
			for i := range got {
				if got[i] != tt.out[i] {
					t.Fatalf("Expected arg[%d]=%q, got %q", i, tt.out[i], got[i])
				}
			}
		})
	}
}

func TestNewRootCmdParsesFlags(t *testing.T) {
	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	if err := cmd.ParseFlags([]string{"-c", "-t", "Paint", "--key", "F9", "--clusters", "4", "-v"}); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	if !opts.continuous || opts.title != "Paint" || opts.key != "F9" || opts.clusters != 4 || !opts.verbose {
		t.Fatalf("Unexpected options %+v", *opts)
	}

	lo := loadOptionsFrom(cmd, *opts)
	if lo.ContinuousOverride == nil || !*lo.ContinuousOverride {
		t.Error("Expected continuous override")
	}
	if lo.VerboseOverride == nil || !*lo.VerboseOverride {
		t.Error("Expected verbose override")
	}
	if lo.WindowTitleOverride != "Paint" || lo.CaptureKeyOverride != "F9" || lo.ClustersOverride != 4 {
		t.Errorf("Unexpected load options %+v", lo)
	}
}

func TestLoadOptionsLeaveUnsetFlagsAlone(t *testing.T) {
	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	if err := cmd.ParseFlags(nil); err != nil {
		t.Fatal(err)
	}
	lo := loadOptionsFrom(cmd, *opts)
	if lo.ContinuousOverride != nil || lo.VerboseOverride != nil {
		t.Errorf("Expected no bool overrides, got %+v", lo)
	}
}

func TestRootCmdRejectsArgs(t *testing.T) {
	err := runWithArgs([]string{"roi-snapshot", "stray"})
	if err == nil {
		t.Fatal("Expected positional arguments to be rejected")
	}
}

type fakeClient struct {
	dir    string
	err    error
	called bool
}

func (f *fakeClient) Trigger(ctx context.Context) (string, error) {
	f.called = true
	return f.dir, f.err
}

func (f *fakeClient) Alive(ctx context.Context) bool { return f.err == nil }

func TestTriggerResident(t *testing.T) {
	tests := []struct {
		name    string
		client  *fakeClient
		wantOut string
		wantErr string
	}{
		{"delegated", &fakeClient{dir: "Saved ROIs/2025-01-01T00-00-00"}, "Saved ROIs/2025-01-01T00-00-00\n", ""},
		{"no resident", &fakeClient{err: singleinstance.ErrNoResident}, "", "no running roi-snapshot instance"},
		{"resident error", &fakeClient{err: errors.New("selection cancelled")}, "", "selection cancelled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := triggerResident(context.Background(), tt.client, &out)
			if !tt.client.called {
				t.Fatal("Expected client.Trigger to be called")
			}
			if tt.wantErr == "" && err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if tt.wantErr != "" && (err == nil || !strings.Contains(err.Error(), tt.wantErr)) {
				t.Fatalf("Expected error containing %q, got %v", tt.wantErr, err)
			}
			if out.String() != tt.wantOut {
				t.Errorf("Expected output %q, got %q", tt.wantOut, out.String())
			}
		})
	}
}

func TestPrintBanner(t *testing.T) {
	var out bytes.Buffer
	printBanner(&out, config.Config{CaptureKey: "o", Continuous: true, WindowTitle: "Paint"})
	s := out.String()
	if !strings.Contains(s, "Press 'o'") || !strings.Contains(s, `"Paint"`) || !strings.Contains(s, "continuous mode") {
		t.Errorf("Unexpected banner %q", s)
	}

	out.Reset()
	printBanner(&out, config.Config{CaptureKey: "o"})
	if !strings.Contains(out.String(), "single-run mode") {
		t.Errorf("Expected single-run banner, got %q", out.String())
	}
}
