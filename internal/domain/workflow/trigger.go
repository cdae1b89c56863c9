package workflow

// Trigger is an action that can cause a status transition.
type Trigger string

const (
	TriggerSubmit            Trigger = "SUBMIT"             // suprido sends the draft to the gestor
	TriggerAttest            Trigger = "ATTEST"             // gestor attests and forwards to analysis
	TriggerReturnToRequester Trigger = "RETURN_TO_REQUESTER" // gestor devolves for rework
	TriggerRequestCorrection Trigger = "REQUEST_CORRECTION" // analyst opens a diligência
	TriggerResubmit          Trigger = "RESUBMIT"           // suprido answers the diligência
	TriggerCompleteAnalysis  Trigger = "COMPLETE_ANALYSIS"  // analysis approved, move to execution
	TriggerSendToSignature   Trigger = "SEND_TO_SIGNATURE"  // financial documents ready for the ordenador
	TriggerSign              Trigger = "SIGN"               // SEFIN signs, releases for payment
	TriggerConfirmPayment    Trigger = "CONFIRM_PAYMENT"    // payment executed, awaiting suprido
	TriggerConfirmReceipt    Trigger = "CONFIRM_RECEIPT"    // suprido confirms funds received
	TriggerReject            Trigger = "REJECT"
	TriggerArchive           Trigger = "ARCHIVE"
)

// String returns the string representation of the trigger.
func (t Trigger) String() string {
	return string(t)
}

// Role is the actor role required to fire a transition.
type Role string

const (
	RoleSuprido       Role = "SUPRIDO"
	RoleGestor        Role = "GESTOR"
	RoleSOSFU         Role = "SOSFU"
	RoleSODPA         Role = "SODPA"
	RoleRessarcimento Role = "RESSARCIMENTO"
	RoleSEFIN         Role = "SEFIN"
	RoleAJSEFIN       Role = "AJSEFIN"
	RoleSystem        Role = "SYSTEM"
)

// SideEffect names an action the engine must perform when a transition
// commits. History entries are written unconditionally and are not listed
// here.
type SideEffect string

const (
	// EffectEnsureAccountability creates a DRAFT accountability for the
	// process if none exists yet.
	EffectEnsureAccountability SideEffect = "ENSURE_ACCOUNTABILITY"

	// EffectNotifySuprido pushes a notification to the beneficiary.
	EffectNotifySuprido SideEffect = "NOTIFY_SUPRIDO"

	// EffectNotifyManager pushes a notification to the unit manager.
	EffectNotifyManager SideEffect = "NOTIFY_MANAGER"
)
