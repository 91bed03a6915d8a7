package status

import "testing"

func TestPhase(t *testing.T) {
	tests := []struct {
		s    Status
		want Phase
	}{
		{NotStarted, PhaseScheduled},
		{ToBeDefined, PhaseScheduled},
		{FirstHalf, PhaseLive},
		{HalfTime, PhaseLive},
		{SecondHalf, PhaseLive},
		{ExtraTime, PhaseLive},
		{BreakTime, PhaseLive},
		{Penalties, PhaseLive},
		{Interrupted, PhaseLive},
		{FullTime, PhaseFinished},
		{AfterExtraTime, PhaseFinished},
		{PenaltiesFinished, PhaseFinished},
		// Código desconhecido cai em agendada.
		{Status("XYZ"), PhaseScheduled},
		{Status(""), PhaseScheduled},
	}
	for _, tt := range tests {
		if got := tt.s.Phase(); got != tt.want {
			t.Errorf("Phase(%q) = %d, want %d", tt.s, got, tt.want)
		}
	}
}

func TestKnown(t *testing.T) {
	if !Known(Interrupted) {
		t.Error("Known(INT) = false")
	}
	if Known(Status("XYZ")) {
		t.Error(`Known("XYZ") = true`)
	}
	if Known(Status("")) {
		t.Error(`Known("") = true`)
	}
}
