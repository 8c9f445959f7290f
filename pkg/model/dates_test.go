package model

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDay_NormalizesToUTCMidnight(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Jerusalem")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	ts := time.Date(2026, 7, 14, 23, 30, 0, 0, loc)
	got := Day(ts)

	if got.Hour() != 0 || got.Minute() != 0 || got.Location() != time.UTC {
		t.Errorf("expected UTC midnight, got %v", got)
	}
	// 23:30 in Jerusalem (UTC+3 in July) is 20:30 UTC the same day
	if got.Day() != 14 {
		t.Errorf("expected day 14, got %d", got.Day())
	}
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		name string
		a, b time.Time
		want int
	}{
		{"same day", date(2026, 3, 10), date(2026, 3, 10), 0},
		{"forward", date(2026, 3, 10), date(2026, 3, 15), 5},
		{"backward is negative", date(2026, 3, 15), date(2026, 3, 10), -5},
		{"across month boundary", date(2026, 1, 30), date(2026, 2, 2), 3},
		{"time of day ignored", date(2026, 3, 10).Add(23 * time.Hour), date(2026, 3, 11), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysBetween(tt.a, tt.b); got != tt.want {
				t.Errorf("DaysBetween(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestContainsDay_InclusiveBothEnds(t *testing.T) {
	start := date(2026, 12, 24)
	end := date(2026, 12, 31)

	if !ContainsDay(start, end, start) {
		t.Error("start date should be contained")
	}
	if !ContainsDay(start, end, end) {
		t.Error("end date should be contained")
	}
	if ContainsDay(start, end, date(2026, 12, 23)) {
		t.Error("day before window should not be contained")
	}
	if ContainsDay(start, end, date(2027, 1, 1)) {
		t.Error("day after window should not be contained")
	}
}

func TestGuestComposition_Occupancy_IgnoresInfants(t *testing.T) {
	g := GuestComposition{Adults: 2, Children: 1, Infants: 3}
	if got := g.Occupancy(); got != 3 {
		t.Errorf("expected occupancy 3, got %d", got)
	}
}

func TestRefundRule_Matches(t *testing.T) {
	rule := CancellationRefundRule{DaysBeforeCheckinMin: 3, DaysBeforeCheckinMax: 6}

	for days, want := range map[int]bool{2: false, 3: true, 5: true, 6: true, 7: false} {
		if got := rule.Matches(days); got != want {
			t.Errorf("Matches(%d) = %v, want %v", days, got, want)
		}
	}
}

func TestPolicy_Covers_OpenEnded(t *testing.T) {
	from := date(2026, 1, 1)
	p := CancellationPolicy{AppliesFrom: from}

	if !p.Covers(date(2030, 6, 1)) {
		t.Error("open-ended policy should cover any future date")
	}
	if p.Covers(date(2025, 12, 31)) {
		t.Error("policy should not cover dates before applies_from")
	}

	to := date(2026, 6, 30)
	p.AppliesTo = &to
	if p.Covers(date(2026, 7, 1)) {
		t.Error("bounded policy should not cover dates after applies_to")
	}
}
