package logger

import (
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want level
	}{
		{"debug", levelDebug},
		{"info", levelInfo},
		{"warn", levelWarn},
		{"error", levelError},
		{"ERROR", levelError},
		{"", levelInfo},
		{"bogus", levelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	tests := []struct {
		min     level
		msg     level
		written bool
	}{
		{levelInfo, levelDebug, false},
		{levelInfo, levelInfo, true},
		{levelInfo, levelError, true},
		{levelError, levelWarn, false},
		{levelDebug, levelDebug, true},
	}

	for _, tt := range tests {
		if got := tt.msg >= tt.min; got != tt.written {
			t.Errorf("min=%v msg=%v: written = %v, want %v", tt.min, tt.msg, got, tt.written)
		}
	}
}
