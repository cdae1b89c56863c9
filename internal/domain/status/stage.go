package status

// Stage is a position in the ordered 8-step process pipeline used by the
// progress tracker ("Correios-style" tracking in the web UI).
type Stage int

const (
	StageSolicitacao Stage = iota // criação e preenchimento
	StageAtesto                   // atesto do gestor da unidade
	StageAnalise                  // análise técnica de conformidade
	StageExecucao                 // geração dos documentos financeiros
	StageAutorizacao              // assinatura do ordenador de despesa
	StagePagamento                // liberação dos recursos
	StagePrestacao                // prestação de contas do suprido
	StageArquivo                  // processo arquivado

	StageCount = 8
)

var stageLabels = [StageCount]string{
	"Solicitação",
	"Atesto Gestor",
	"Análise",
	"Execução",
	"Autorização",
	"Pagamento",
	"Prestação de Contas",
	"Arquivo",
}

// stageStatuses groups the base statuses per stage.
var stageStatuses = [StageCount][]Status{
	StageSolicitacao: {Pending, Draft},
	StageAtesto:      {WaitingManager},
	StageAnalise:     {WaitingSOSFU, WaitingSOSFUAnalysis, WaitingCorrection},
	StageExecucao:    {WaitingSOSFUExecution},
	StageAutorizacao: {WaitingSefinSignature},
	StagePagamento:   {WaitingSOSFUPayment, WaitingSupridoConfirmation, Paid},
	StagePrestacao:   {PCPending, PCAnalysis, PCApproved},
	StageArquivo:     {Archived},
}

// variantStages maps module-specific codes onto the shared stages by
// semantic analogy. Registered here, not hardcoded per dashboard, so new
// module variants extend the table instead of forking it.
var variantStages = map[Status]Stage{
	WaitingSODPAAnalysis:          StageAnalise,
	WaitingSODPAExecution:         StageExecucao,
	WaitingSODPAPayment:           StagePagamento,
	WaitingRessarcimentoAnalysis:  StageAnalise,
	WaitingRessarcimentoExecution: StageExecucao,
	WaitingRessarcimentoPayment:   StagePagamento,
}

var stageIndex map[Status]Stage

func init() {
	stageIndex = make(map[Status]Stage, len(labels))
	for stage, statuses := range stageStatuses {
		for _, s := range statuses {
			stageIndex[s] = Stage(stage)
		}
	}
	for s, stage := range variantStages {
		stageIndex[s] = stage
	}
}

// Label returns the display name of the stage.
func (st Stage) Label() string {
	if st < 0 || st >= StageCount {
		return ""
	}
	return stageLabels[st]
}

// StageOf returns the pipeline stage a status belongs to. Unknown statuses
// resolve to the first stage and ok=false; callers must not fail on them.
func StageOf(s Status) (Stage, bool) {
	st, ok := stageIndex[s]
	if !ok {
		return StageSolicitacao, false
	}
	return st, true
}

// InStage reports whether the status belongs to the given stage.
func InStage(s Status, st Stage) bool {
	got, ok := stageIndex[s]
	return ok && got == st
}

// StageMembers returns the statuses registered for a stage, base set first,
// module variants after.
func StageMembers(st Stage) []Status {
	if st < 0 || st >= StageCount {
		return nil
	}
	members := append([]Status(nil), stageStatuses[st]...)
	for s, stage := range variantStages {
		if stage == st {
			members = append(members, s)
		}
	}
	return members
}
