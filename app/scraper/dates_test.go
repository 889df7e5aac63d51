package scraper

import (
	"testing"
	"time"
)

func withFixedNow(t *testing.T, now time.Time) {
	t.Helper()
	orig := timeNow
	timeNow = func() time.Time { return now }
	t.Cleanup(func() { timeNow = orig })
}

func TestParseComplaintDate_ISO(t *testing.T) {
	got := parseComplaintDate("2024-03-15T10:30:00")
	if got.Year() != 2024 || got.Month() != time.March || got.Day() != 15 || got.Hour() != 10 {
		t.Errorf("Expected 2024-03-15 10:30, got %v", got)
	}
}

func TestParseComplaintDate_Absolute(t *testing.T) {
	got := parseComplaintDate("15/03/2024 às 10:30")
	if got.Day() != 15 || got.Month() != time.March || got.Year() != 2024 {
		t.Errorf("Expected 15/03/2024, got %v", got)
	}
	if got.Hour() != 10 || got.Minute() != 30 {
		t.Errorf("Expected 10:30, got %02d:%02d", got.Hour(), got.Minute())
	}
}

func TestParseComplaintDate_AbsoluteWithoutTime(t *testing.T) {
	got := parseComplaintDate("02/01/2023")
	if got.Day() != 2 || got.Month() != time.January || got.Year() != 2023 {
		t.Errorf("Expected 02/01/2023, got %v", got)
	}
}

func TestParseComplaintDate_Relative(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.Local)
	withFixedNow(t, now)

	tests := []struct {
		input    string
		expected time.Time
	}{
		{"hoje", now},
		{"agora", now},
		{"ontem", now.AddDate(0, 0, -1)},
		{"há 30 minutos", now.Add(-30 * time.Minute)},
		{"há 2 horas", now.Add(-2 * time.Hour)},
		{"há 3 dias", now.AddDate(0, 0, -3)},
		{"há 1 semana", now.AddDate(0, 0, -7)},
		{"há 2 meses", now.AddDate(0, -2, 0)},
		{"há 1 ano", now.AddDate(-1, 0, 0)},
	}

	for _, tt := range tests {
		got := parseComplaintDate(tt.input)
		if !got.Equal(tt.expected) {
			t.Errorf("parseComplaintDate(%q) = %v, expected %v", tt.input, got, tt.expected)
		}
	}
}

func TestParseComplaintDate_UnparseableFallsBackToNow(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.Local)
	withFixedNow(t, now)

	for _, input := range []string{"", "garbage", "semana que vem"} {
		got := parseComplaintDate(input)
		if got.IsZero() {
			t.Errorf("parseComplaintDate(%q) returned zero time, expected fallback", input)
		}
		if !got.Equal(now) {
			t.Errorf("parseComplaintDate(%q) = %v, expected current time %v", input, got, now)
		}
	}
}

func TestParseComplaintDate_AccentlessRelative(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.Local)
	withFixedNow(t, now)

	got := parseComplaintDate("ha 3 dias")
	if !got.Equal(now.AddDate(0, 0, -3)) {
		t.Errorf("Expected 3 days ago, got %v", got)
	}
}
