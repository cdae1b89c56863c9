package workflow

import (
	"github.com/tjpa/agil-workflow/internal/domain/entity"
	"github.com/tjpa/agil-workflow/internal/domain/status"
)

// Rule is one row of the transition table: a trigger permitted from a set of
// statuses, the resulting status, the roles that may fire it, and the side
// effects the engine must run when the transition commits.
//
// The web front-end this engine replaces scattered direct status writes
// across UI handlers; here every status change must match a row.
type Rule struct {
	Trigger     Trigger
	AllowedFrom []status.Status

	// Modules restricts the row to solicitations of the listed modules.
	// Empty means any module. Only needed where the source status does not
	// already identify the module, such as the shared correction status.
	Modules []entity.Module

	To          status.Status
	Roles       []Role
	SideEffects []SideEffect
}

// AllowsRole reports whether the role may fire this rule. RoleSystem may
// fire anything (automated transitions, backfills).
func (r Rule) AllowsRole(role Role) bool {
	if role == RoleSystem {
		return true
	}
	for _, allowed := range r.Roles {
		if allowed == role {
			return true
		}
	}
	return false
}

func (r Rule) allowsFrom(from status.Status) bool {
	for _, s := range r.AllowedFrom {
		if s == from {
			return true
		}
	}
	return false
}

func (r Rule) allowsModule(m entity.Module) bool {
	if len(r.Modules) == 0 {
		return true
	}
	for _, allowed := range r.Modules {
		if allowed == m {
			return true
		}
	}
	return false
}

var analysisStatuses = []status.Status{
	status.WaitingSOSFUAnalysis,
	status.WaitingSODPAAnalysis,
	status.WaitingRessarcimentoAnalysis,
}

// rules is the complete transition table for the solicitation lifecycle.
var rules = []Rule{
	{
		Trigger:     TriggerSubmit,
		AllowedFrom: []status.Status{status.Pending, status.Draft},
		To:          status.WaitingManager,
		Roles:       []Role{RoleSuprido},
		SideEffects: []SideEffect{EffectNotifyManager},
	},
	{
		Trigger:     TriggerAttest,
		AllowedFrom: []status.Status{status.WaitingManager},
		To:          status.WaitingSOSFUAnalysis,
		Roles:       []Role{RoleGestor},
	},
	{
		Trigger:     TriggerReturnToRequester,
		AllowedFrom: []status.Status{status.WaitingManager},
		To:          status.Pending,
		Roles:       []Role{RoleGestor},
		SideEffects: []SideEffect{EffectNotifySuprido},
	},
	{
		Trigger:     TriggerRequestCorrection,
		AllowedFrom: analysisStatuses,
		To:          status.WaitingCorrection,
		Roles:       []Role{RoleSOSFU, RoleSODPA, RoleRessarcimento},
		SideEffects: []SideEffect{EffectNotifySuprido},
	},
	// WAITING_CORRECTION is shared across modules, so the resubmit rows key
	// on the solicitation's module to send it back to its own analysis
	// status.
	{
		Trigger:     TriggerResubmit,
		AllowedFrom: []status.Status{status.WaitingCorrection},
		Modules:     []entity.Module{entity.ModuleSOSFU},
		To:          status.WaitingSOSFUAnalysis,
		Roles:       []Role{RoleSuprido},
	},
	{
		Trigger:     TriggerResubmit,
		AllowedFrom: []status.Status{status.WaitingCorrection},
		Modules:     []entity.Module{entity.ModuleSODPA},
		To:          status.WaitingSODPAAnalysis,
		Roles:       []Role{RoleSuprido},
	},
	{
		Trigger:     TriggerResubmit,
		AllowedFrom: []status.Status{status.WaitingCorrection},
		Modules:     []entity.Module{entity.ModuleRessarcimento},
		To:          status.WaitingRessarcimentoAnalysis,
		Roles:       []Role{RoleSuprido},
	},

	// Analysis completion moves each module variant into its own execution
	// status; the rows differ only in endpoints.
	{
		Trigger:     TriggerCompleteAnalysis,
		AllowedFrom: []status.Status{status.WaitingSOSFUAnalysis},
		To:          status.WaitingSOSFUExecution,
		Roles:       []Role{RoleSOSFU},
	},
	{
		Trigger:     TriggerCompleteAnalysis,
		AllowedFrom: []status.Status{status.WaitingSODPAAnalysis},
		To:          status.WaitingSODPAExecution,
		Roles:       []Role{RoleSODPA},
	},
	{
		Trigger:     TriggerCompleteAnalysis,
		AllowedFrom: []status.Status{status.WaitingRessarcimentoAnalysis},
		To:          status.WaitingRessarcimentoExecution,
		Roles:       []Role{RoleRessarcimento},
	},

	{
		Trigger: TriggerSendToSignature,
		AllowedFrom: []status.Status{
			status.WaitingSOSFUExecution,
			status.WaitingSODPAExecution,
			status.WaitingRessarcimentoExecution,
		},
		To:    status.WaitingSefinSignature,
		Roles: []Role{RoleSOSFU, RoleSODPA, RoleRessarcimento},
	},
	{
		Trigger:     TriggerSign,
		AllowedFrom: []status.Status{status.WaitingSefinSignature},
		To:          status.WaitingSOSFUPayment,
		Roles:       []Role{RoleSEFIN, RoleAJSEFIN},
	},
	{
		Trigger:     TriggerConfirmPayment,
		AllowedFrom: []status.Status{status.WaitingSOSFUPayment},
		To:          status.WaitingSupridoConfirmation,
		Roles:       []Role{RoleSOSFU},
		SideEffects: []SideEffect{EffectNotifySuprido},
	},
	{
		Trigger:     TriggerConfirmReceipt,
		AllowedFrom: []status.Status{status.WaitingSupridoConfirmation},
		To:          status.Paid,
		Roles:       []Role{RoleSuprido},
		SideEffects: []SideEffect{EffectEnsureAccountability},
	},

	{
		Trigger:     TriggerReject,
		AllowedFrom: []status.Status{status.WaitingManager},
		To:          status.Rejected,
		Roles:       []Role{RoleGestor},
		SideEffects: []SideEffect{EffectNotifySuprido},
	},
	{
		Trigger:     TriggerReject,
		AllowedFrom: analysisStatuses,
		To:          status.Rejected,
		Roles:       []Role{RoleSOSFU, RoleSODPA, RoleRessarcimento},
		SideEffects: []SideEffect{EffectNotifySuprido},
	},
	{
		Trigger:     TriggerReject,
		AllowedFrom: []status.Status{status.WaitingSefinSignature},
		To:          status.Rejected,
		Roles:       []Role{RoleSEFIN, RoleAJSEFIN},
		SideEffects: []SideEffect{EffectNotifySuprido},
	},

	{
		Trigger:     TriggerArchive,
		AllowedFrom: []status.Status{status.Paid, status.Rejected},
		To:          status.Archived,
		Roles:       []Role{RoleSOSFU, RoleSODPA, RoleRessarcimento},
	},
}

// Rules returns a copy of the transition table.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// FindRule returns the rule matching the trigger from the given status and
// module, or ok=false when the transition does not exist.
func FindRule(trigger Trigger, from status.Status, module entity.Module) (Rule, bool) {
	for _, r := range rules {
		if r.Trigger == trigger && r.allowsFrom(from) && r.allowsModule(module) {
			return r, true
		}
	}
	return Rule{}, false
}
