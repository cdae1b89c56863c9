// Package projection derives read-only views from process records: the
// progress stepper, the module inbox buckets and the priority score. Every
// function here is pure and total — malformed input degrades to a safe
// default, never an error. Deriving a view must not write state.
package projection

import (
	"sort"
	"time"

	"github.com/tjpa/agil-workflow/internal/domain/entity"
	"github.com/tjpa/agil-workflow/internal/domain/status"
)

// StageView is one step of the 8-stage tracker as rendered by a client.
type StageView struct {
	Index       status.Stage `json:"index"`
	Label       string       `json:"label"`
	Completed   bool         `json:"completed"`
	Current     bool         `json:"current"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
}

// StepperProjection is the full derived state of the progress tracker.
type StepperProjection struct {
	ActiveIndex status.Stage              `json:"active_index"`
	Rejected    bool                      `json:"rejected"`
	Stages      [status.StageCount]StageView `json:"stages"`
}

// CurrentStage computes the active pipeline stage for a process.
// accountabilityStatus is empty when no accountability record exists; its
// mere presence moves a paid process into the Prestação de Contas stage.
func CurrentStage(st status.Status, accountabilityStatus string) status.Stage {
	if st == status.Archived {
		return status.StageArquivo
	}
	if st == status.Paid || st == status.Approved {
		if accountabilityStatus != "" {
			return status.StagePrestacao
		}
		return status.StagePagamento
	}
	stage, _ := status.StageOf(st)
	return stage
}

// Project builds the stepper view for a process. History drives two things:
// per-stage completion timestamps and the atesto forward-completion
// override. The override is display-only; it never changes the authoritative
// status or the bucketing of the record.
func Project(st status.Status, accountabilityStatus string, isRejected bool, history []entity.HistoryEntry) StepperProjection {
	active := CurrentStage(st, accountabilityStatus)

	p := StepperProjection{
		ActiveIndex: active,
		Rejected:    isRejected,
	}

	ordered := sortedAscending(history)

	for i := range p.Stages {
		stage := status.Stage(i)
		p.Stages[i] = StageView{
			Index:     stage,
			Label:     stage.Label(),
			Completed: stage < active,
			Current:   stage == active,
		}
		if stage < active {
			p.Stages[i].CompletedAt = stageCompletedAt(ordered, stage)
		}
	}

	// Atesto override: a WAITING_MANAGER -> PENDING entry means the gestor
	// already acted but the process looped back to a stage-0 status. Render
	// stages 0 and 1 as completed while the active marker stays at 0.
	if active == status.StageSolicitacao && hasManagerReturn(ordered) {
		p.Stages[status.StageSolicitacao].Completed = true
		p.Stages[status.StageAtesto].Completed = true
		p.Stages[status.StageAtesto].CompletedAt = stageCompletedAt(ordered, status.StageAtesto)
	}

	return p
}

// stageCompletedAt returns the timestamp of the FIRST history entry whose
// status_to belongs to the following stage, i.e. the event that made the
// process leave the given stage. First match, not last: correction loops
// revisit earlier statuses without resetting completion of passed stages.
func stageCompletedAt(ordered []entity.HistoryEntry, stage status.Stage) *time.Time {
	next := stage + 1
	if next >= status.StageCount {
		return nil
	}
	for _, h := range ordered {
		if status.InStage(h.StatusTo, next) {
			t := h.CreatedAt
			return &t
		}
	}
	return nil
}

func hasManagerReturn(ordered []entity.HistoryEntry) bool {
	for _, h := range ordered {
		if h.StatusFrom != nil && *h.StatusFrom == status.WaitingManager && h.StatusTo == status.Pending {
			return true
		}
	}
	return false
}

func sortedAscending(history []entity.HistoryEntry) []entity.HistoryEntry {
	ordered := make([]entity.HistoryEntry, len(history))
	copy(ordered, history)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})
	return ordered
}
