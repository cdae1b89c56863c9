package workflow

import (
	"errors"
	"testing"

	"github.com/tjpa/agil-workflow/internal/domain/entity"
	"github.com/tjpa/agil-workflow/internal/domain/status"
)

func TestFindRule(t *testing.T) {
	tests := []struct {
		name    string
		trigger Trigger
		from    status.Status
		module  entity.Module
		wantTo  status.Status
		found   bool
	}{
		{"submit draft", TriggerSubmit, status.Draft, entity.ModuleSOSFU, status.WaitingManager, true},
		{"submit pending", TriggerSubmit, status.Pending, entity.ModuleSOSFU, status.WaitingManager, true},
		{"attest", TriggerAttest, status.WaitingManager, entity.ModuleSOSFU, status.WaitingSOSFUAnalysis, true},
		{"devolution", TriggerReturnToRequester, status.WaitingManager, entity.ModuleSOSFU, status.Pending, true},
		{"sosfu analysis done", TriggerCompleteAnalysis, status.WaitingSOSFUAnalysis, entity.ModuleSOSFU, status.WaitingSOSFUExecution, true},
		{"sodpa analysis done", TriggerCompleteAnalysis, status.WaitingSODPAAnalysis, entity.ModuleSODPA, status.WaitingSODPAExecution, true},
		{"ressarcimento analysis done", TriggerCompleteAnalysis, status.WaitingRessarcimentoAnalysis, entity.ModuleRessarcimento, status.WaitingRessarcimentoExecution, true},
		{"sosfu resubmit", TriggerResubmit, status.WaitingCorrection, entity.ModuleSOSFU, status.WaitingSOSFUAnalysis, true},
		{"sodpa resubmit", TriggerResubmit, status.WaitingCorrection, entity.ModuleSODPA, status.WaitingSODPAAnalysis, true},
		{"ressarcimento resubmit", TriggerResubmit, status.WaitingCorrection, entity.ModuleRessarcimento, status.WaitingRessarcimentoAnalysis, true},
		{"sign", TriggerSign, status.WaitingSefinSignature, entity.ModuleSOSFU, status.WaitingSOSFUPayment, true},
		{"confirm receipt", TriggerConfirmReceipt, status.WaitingSupridoConfirmation, entity.ModuleSOSFU, status.Paid, true},
		{"archive paid", TriggerArchive, status.Paid, entity.ModuleSOSFU, status.Archived, true},
		{"no transition from archived", TriggerSubmit, status.Archived, entity.ModuleSOSFU, "", false},
		{"cannot sign before signature stage", TriggerSign, status.WaitingSOSFUAnalysis, entity.ModuleSOSFU, "", false},
		{"cannot confirm payment twice", TriggerConfirmPayment, status.WaitingSupridoConfirmation, entity.ModuleSOSFU, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, ok := FindRule(tt.trigger, tt.from, tt.module)
			if ok != tt.found {
				t.Fatalf("FindRule(%s, %s, %s) found = %v, want %v", tt.trigger, tt.from, tt.module, ok, tt.found)
			}
			if ok && rule.To != tt.wantTo {
				t.Errorf("FindRule(%s, %s, %s).To = %s, want %s", tt.trigger, tt.from, tt.module, rule.To, tt.wantTo)
			}
		})
	}
}

func TestMachine_Fire_ForwardPath(t *testing.T) {
	// The documented forward path for a SOSFU process, end to end.
	steps := []struct {
		trigger Trigger
		role    Role
		want    status.Status
	}{
		{TriggerSubmit, RoleSuprido, status.WaitingManager},
		{TriggerAttest, RoleGestor, status.WaitingSOSFUAnalysis},
		{TriggerCompleteAnalysis, RoleSOSFU, status.WaitingSOSFUExecution},
		{TriggerSendToSignature, RoleSOSFU, status.WaitingSefinSignature},
		{TriggerSign, RoleSEFIN, status.WaitingSOSFUPayment},
		{TriggerConfirmPayment, RoleSOSFU, status.WaitingSupridoConfirmation},
		{TriggerConfirmReceipt, RoleSuprido, status.Paid},
		{TriggerArchive, RoleSOSFU, status.Archived},
	}

	m := NewMachine(status.Pending, entity.ModuleSOSFU)
	for _, s := range steps {
		if _, err := m.Fire(s.trigger, s.role); err != nil {
			t.Fatalf("Fire(%s) from %s: %v", s.trigger, m.State(), err)
		}
		if m.State() != s.want {
			t.Fatalf("after %s state = %s, want %s", s.trigger, m.State(), s.want)
		}
	}
}

func TestMachine_Fire_InvalidTransition(t *testing.T) {
	m := NewMachine(status.Pending, entity.ModuleSOSFU)

	_, err := m.Fire(TriggerSign, RoleSEFIN)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
	if m.State() != status.Pending {
		t.Errorf("failed fire must not move the machine, state = %s", m.State())
	}
}

func TestMachine_Fire_RoleNotAllowed(t *testing.T) {
	m := NewMachine(status.WaitingManager, entity.ModuleSOSFU)

	_, err := m.Fire(TriggerAttest, RoleSuprido)
	if !errors.Is(err, ErrRoleNotAllowed) {
		t.Errorf("expected ErrRoleNotAllowed, got %v", err)
	}
	if m.State() != status.WaitingManager {
		t.Errorf("role rejection must not move the machine, state = %s", m.State())
	}
}

func TestMachine_Fire_SystemRoleBypassesRoleCheck(t *testing.T) {
	m := NewMachine(status.WaitingManager, entity.ModuleSOSFU)
	if _, err := m.Fire(TriggerAttest, RoleSystem); err != nil {
		t.Fatalf("system role should be allowed: %v", err)
	}
	if m.State() != status.WaitingSOSFUAnalysis {
		t.Errorf("state = %s, want %s", m.State(), status.WaitingSOSFUAnalysis)
	}
}

func TestMachine_CorrectionLoop(t *testing.T) {
	m := NewMachine(status.WaitingSOSFUAnalysis, entity.ModuleSOSFU)

	if _, err := m.Fire(TriggerRequestCorrection, RoleSOSFU); err != nil {
		t.Fatalf("request correction: %v", err)
	}
	if m.State() != status.WaitingCorrection {
		t.Fatalf("state = %s, want WAITING_CORRECTION", m.State())
	}
	if _, err := m.Fire(TriggerResubmit, RoleSuprido); err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if m.State() != status.WaitingSOSFUAnalysis {
		t.Fatalf("state = %s, want WAITING_SOSFU_ANALYSIS", m.State())
	}
}

// A corrected process returns to its own module's analysis status, not to
// SOSFU's.
func TestMachine_CorrectionLoopStaysInModule(t *testing.T) {
	m := NewMachine(status.WaitingRessarcimentoAnalysis, entity.ModuleRessarcimento)

	if _, err := m.Fire(TriggerRequestCorrection, RoleRessarcimento); err != nil {
		t.Fatalf("request correction: %v", err)
	}
	if _, err := m.Fire(TriggerResubmit, RoleSuprido); err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if m.State() != status.WaitingRessarcimentoAnalysis {
		t.Fatalf("state = %s, want WAITING_RESSARCIMENTO_ANALYSIS", m.State())
	}

	// The loop closes: the module's own analysis completion applies again.
	if _, err := m.Fire(TriggerCompleteAnalysis, RoleRessarcimento); err != nil {
		t.Fatalf("complete analysis after correction round-trip: %v", err)
	}
	if m.State() != status.WaitingRessarcimentoExecution {
		t.Fatalf("state = %s, want WAITING_RESSARCIMENTO_EXECUTION", m.State())
	}
}

func TestMachine_PermittedTriggers(t *testing.T) {
	m := NewMachine(status.WaitingManager, entity.ModuleSOSFU)

	gestor := m.PermittedTriggers(RoleGestor)
	want := map[Trigger]bool{TriggerAttest: false, TriggerReturnToRequester: false, TriggerReject: false}
	for _, tr := range gestor {
		if _, ok := want[tr]; !ok {
			t.Errorf("unexpected trigger %s for gestor", tr)
		}
		want[tr] = true
	}
	for tr, seen := range want {
		if !seen {
			t.Errorf("missing trigger %s for gestor", tr)
		}
	}

	if got := m.PermittedTriggers(RoleSuprido); len(got) != 0 {
		t.Errorf("suprido should have no triggers from WAITING_MANAGER, got %v", got)
	}
}

func TestRule_SideEffects(t *testing.T) {
	rule, ok := FindRule(TriggerConfirmReceipt, status.WaitingSupridoConfirmation, entity.ModuleSOSFU)
	if !ok {
		t.Fatal("confirm receipt rule not found")
	}

	found := false
	for _, e := range rule.SideEffects {
		if e == EffectEnsureAccountability {
			found = true
		}
	}
	if !found {
		t.Error("entering PAID must ensure an accountability record exists")
	}
}

func TestTerminalStatusesHaveNoOutgoingRules(t *testing.T) {
	for _, s := range []status.Status{status.Archived} {
		for _, r := range Rules() {
			if r.allowsFrom(s) {
				t.Errorf("terminal status %s has outgoing rule %s", s, r.Trigger)
			}
		}
	}
}
