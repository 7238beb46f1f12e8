package utils

import (
	"reflect"
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{45 * time.Second, "45s"},
		{3 * time.Minute, "3m"},
		{5 * time.Hour, "5h"},
		{72 * time.Hour, "3d"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.in); got != tt.want {
			t.Errorf("FormatDuration(%v) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParseSettingValue(t *testing.T) {
	tests := []struct {
		raw  string
		want any
	}{
		{"true", true},
		{"FALSE", false},
		{"null", nil},
		{"10000", float64(10000)},
		{"1.5", 1.5},
		{"compact", "compact"},
	}
	for _, tt := range tests {
		if got := ParseSettingValue(tt.raw); got != tt.want {
			t.Errorf("ParseSettingValue(%q) = %#v, want %#v", tt.raw, got, tt.want)
		}
	}
}

func TestParseUserIDs(t *testing.T) {
	ids, err := ParseUserIDs([]string{"1,2", "3"})
	if err != nil {
		t.Fatalf("ParseUserIDs failed: %v", err)
	}
	if !reflect.DeepEqual(ids, []int64{1, 2, 3}) {
		t.Errorf("expected [1 2 3], got %v", ids)
	}

	for _, bad := range [][]string{{"0"}, {"abc"}, {"-4"}, {","}} {
		if _, err := ParseUserIDs(bad); err == nil {
			t.Errorf("expected error for %v", bad)
		}
	}
}
