package status

import "testing"

func TestStatus_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		status   Status
		expected bool
	}{
		{"core status", Pending, true},
		{"payment status", WaitingSOSFUPayment, true},
		{"module variant", WaitingRessarcimentoAnalysis, true},
		{"virtual pc status", PCAnalysis, true},
		{"unknown status", Status("WAITING_SOMETHING_ELSE"), false},
		{"empty status", Status(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.IsValid(); got != tt.expected {
				t.Errorf("Status.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status   Status
		expected bool
	}{
		{Pending, false},
		{WaitingManager, false},
		{WaitingSefinSignature, false},
		{Paid, false},
		{Rejected, true},
		{Archived, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.IsTerminal(); got != tt.expected {
				t.Errorf("Status.IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestStatus_IsDone(t *testing.T) {
	done := []Status{Paid, Approved, Rejected, Archived}
	for _, s := range done {
		if !s.IsDone() {
			t.Errorf("expected %s to be in the done set", s)
		}
	}

	live := []Status{Pending, WaitingManager, WaitingSOSFUAnalysis, WaitingSOSFUPayment, WaitingSupridoConfirmation}
	for _, s := range live {
		if s.IsDone() {
			t.Errorf("did not expect %s in the done set", s)
		}
	}
}

func TestStatus_Label(t *testing.T) {
	tests := []struct {
		name     string
		status   Status
		expected string
	}{
		{"known status", WaitingManager, "Aguardando Atesto (Gestor)"},
		{"known terminal", Archived, "Arquivado"},
		{"unknown falls back to spaced code", Status("WAITING_NEW_THING"), "WAITING NEW THING"},
		{"empty", Status(""), "Desconhecido"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.Label(); got != tt.expected {
				t.Errorf("Status.Label() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAll_CoversEveryLabel(t *testing.T) {
	all := All()
	if len(all) != len(labels) {
		t.Fatalf("All() returned %d statuses, registry has %d", len(all), len(labels))
	}
	for _, s := range all {
		if !s.IsValid() {
			t.Errorf("All() returned invalid status %s", s)
		}
	}
}
