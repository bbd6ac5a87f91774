package utils

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"smartlift/src/types"
)

func TestFormatStatus(t *testing.T) {
	got := FormatStatus([]types.Status{
		{ID: 0, CurrentFloor: 4.25, Direction: types.DirUp, DoorState: types.DoorClosed},
		{ID: 1, CurrentFloor: 10, Direction: types.DirIdle, DoorState: types.DoorOpen, Faulted: true},
	})
	want := "car 0 | floor  4.25 | Up   | Closed\n" +
		"car 1 | floor 10.00 | Idle | Open | FAULTED"
	if got != want {
		t.Errorf("FormatStatus() =\n%s\nwant\n%s", got, want)
	}
	if FormatStatus(nil) != "" {
		t.Errorf("empty status list should render empty")
	}
}

func TestParseRequest(t *testing.T) {
	tests := []struct {
		line       string
		from, to   int
		passengers int
		wantErr    bool
	}{
		{"5 8", 5, 8, 1, false},
		{"  12 3 4 ", 12, 3, 4, false},
		{"5", 0, 0, 0, true},
		{"5 8 1 2", 0, 0, 0, true},
		{"five 8", 0, 0, 0, true},
		{"", 0, 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			req, err := ParseRequest(tt.line)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", req)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if req.FromFloor != tt.from || req.ToFloor != tt.to || req.PassengerCount != tt.passengers {
				t.Errorf("got %v", req)
			}
		})
	}
}

func TestInitLoggerShortensAttrs(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	InitLogger(&buf, slog.LevelInfo)
	slog.Debug("hidden")
	slog.Info("Car arrived", "car", 2)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line logged at info level: %q", out)
	}
	if !strings.Contains(out, "source=utils_test.go:") {
		t.Errorf("source not shortened: %q", out)
	}
	if !strings.Contains(out, `msg="Car arrived" car=2`) {
		t.Errorf("unexpected output %q", out)
	}
}
