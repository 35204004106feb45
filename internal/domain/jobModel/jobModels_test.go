package jobModel

import "testing"

func TestJobStepBookkeeping(t *testing.T) {
	j := Job{}
	j.MarkCompleted(StepChunk)
	j.MarkCompleted(StepChunk)
	if len(j.CompletedSteps) != 1 {
		t.Fatalf("expected step recorded once, got %v", j.CompletedSteps)
	}
	if !j.HasCompleted(StepChunk) || j.HasCompleted(StepEmbed) {
		t.Errorf("unexpected completion state %v", j.CompletedSteps)
	}
}

func TestIsLastAttempt(t *testing.T) {
	tests := []struct {
		attempt, max int
		want         bool
	}{
		{1, 1, true},
		{1, 3, false},
		{3, 3, true},
		{1, 0, true},
	}
	for _, tt := range tests {
		j := Job{Attempt: tt.attempt, MaxAttempts: tt.max}
		if got := j.IsLastAttempt(); got != tt.want {
			t.Errorf("attempt %d of %d: got %v want %v", tt.attempt, tt.max, got, tt.want)
		}
	}
}
