// Package status is the canonical registry of process status codes used
// across the SOSFU, SODPA, Ressarcimento and AJSEFIN modules. Every other
// component (state machine, stepper, inbox bucketing) reads from here.
package status

import "strings"

// Status is a process status code. Codes are plain strings on the wire and
// in storage; unknown codes degrade gracefully rather than fail.
type Status string

// Core lifecycle statuses shared by all modules.
const (
	Pending                    Status = "PENDING"
	Draft                      Status = "DRAFT"
	WaitingManager             Status = "WAITING_MANAGER"
	WaitingSOSFU               Status = "WAITING_SOSFU"
	WaitingSOSFUAnalysis       Status = "WAITING_SOSFU_ANALYSIS"
	WaitingCorrection          Status = "WAITING_CORRECTION"
	WaitingSOSFUExecution      Status = "WAITING_SOSFU_EXECUTION"
	WaitingSefinSignature      Status = "WAITING_SEFIN_SIGNATURE"
	WaitingSOSFUPayment        Status = "WAITING_SOSFU_PAYMENT"
	WaitingSupridoConfirmation Status = "WAITING_SUPRIDO_CONFIRMATION"
	Paid                       Status = "PAID"
	Approved                   Status = "APPROVED"
	Rejected                   Status = "REJECTED"
	Archived                   Status = "ARCHIVED"
)

// Accountability-phase virtual statuses, used only for stage projection.
const (
	PCPending  Status = "PC_PENDING"
	PCAnalysis Status = "PC_ANALYSIS"
	PCApproved Status = "PC_APPROVED"
)

// Module-specific variants. They are distinct codes but map onto the same
// conceptual stages by analogy (analysis, execution, payment).
const (
	WaitingSODPAAnalysis          Status = "WAITING_SODPA_ANALYSIS"
	WaitingSODPAExecution         Status = "WAITING_SODPA_EXECUTION"
	WaitingSODPAPayment           Status = "WAITING_SODPA_PAYMENT"
	WaitingRessarcimentoAnalysis  Status = "WAITING_RESSARCIMENTO_ANALYSIS"
	WaitingRessarcimentoExecution Status = "WAITING_RESSARCIMENTO_EXECUTION"
	WaitingRessarcimentoPayment   Status = "WAITING_RESSARCIMENTO_PAYMENT"
)

var labels = map[Status]string{
	Pending:                    "Rascunho / Em Elaboração",
	Draft:                      "Rascunho / Em Elaboração",
	WaitingManager:             "Aguardando Atesto (Gestor)",
	WaitingSOSFU:               "Aguardando SOSFU",
	WaitingSOSFUAnalysis:       "Em Análise Técnica (SOSFU)",
	WaitingCorrection:          "Em Diligência / Correção",
	WaitingSOSFUExecution:      "Em Execução Financeira",
	WaitingSefinSignature:      "Aguardando Ordenador (SEFIN)",
	WaitingSOSFUPayment:        "Processando Pagamento",
	WaitingSupridoConfirmation: "Dinheiro Enviado",
	Paid:                       "Concluído / Pago",
	Approved:                   "Aprovado",
	Rejected:                   "Indeferido / Cancelado",
	Archived:                   "Arquivado",

	PCPending:  "Prestação de Contas Pendente",
	PCAnalysis: "Prestação de Contas em Análise",
	PCApproved: "Prestação de Contas Aprovada",

	WaitingSODPAAnalysis:          "Em Análise (SODPA)",
	WaitingSODPAExecution:         "Em Execução (SODPA)",
	WaitingSODPAPayment:           "Processando Pagamento (SODPA)",
	WaitingRessarcimentoAnalysis:  "Em Análise (Ressarcimento)",
	WaitingRessarcimentoExecution: "Em Execução (Ressarcimento)",
	WaitingRessarcimentoPayment:   "Processando Pagamento (Ressarcimento)",
}

var terminal = map[Status]bool{
	Paid:     false, // paid still accounts for its expenses
	Rejected: true,
	Archived: true,
}

// doneSet is the "done/history" bucket set. It is the same across every
// module and is wider than the terminal set: a PAID process no longer moves
// through the approval pipeline even though accountability is still open.
var doneSet = map[Status]bool{
	Paid:     true,
	Approved: true,
	Rejected: true,
	Archived: true,
}

// String returns the raw status code.
func (s Status) String() string {
	return string(s)
}

// IsValid reports whether the code is a registered status.
func (s Status) IsValid() bool {
	_, ok := labels[s]
	return ok
}

// IsTerminal reports whether no further transitions are allowed.
func (s Status) IsTerminal() bool {
	return terminal[s]
}

// IsDone reports membership in the shared done/history set.
func (s Status) IsDone() bool {
	return doneSet[s]
}

// Label returns the human-readable display label. Unknown codes fall back to
// the code itself with underscores replaced by spaces, never an error.
func (s Status) Label() string {
	if l, ok := labels[s]; ok {
		return l
	}
	if s == "" {
		return "Desconhecido"
	}
	return strings.ReplaceAll(string(s), "_", " ")
}

// All returns every registered status code. Order is unspecified.
func All() []Status {
	out := make([]Status, 0, len(labels))
	for s := range labels {
		out = append(out, s)
	}
	return out
}
