package projection

import (
	"strings"

	"github.com/tjpa/agil-workflow/internal/domain/entity"
	"github.com/tjpa/agil-workflow/internal/domain/status"
)

// Bucket names the three inbox tabs every module dashboard shows.
type Bucket string

const (
	BucketNew   Bucket = "new"   // just arrived, waiting for triage
	BucketQueue Bucket = "queue" // my desk / in-flight work
	BucketDone  Bucket = "done"  // terminal history
)

// ModuleConfig parameterizes the bucketer per module. The dashboards this
// replaces each re-implemented their own tab filters with slightly
// different predicates; here the tab partition and the badge counts are
// both derived from this one table.
type ModuleConfig struct {
	Module entity.Module

	// New holds the module's "just arrived" statuses. A record in one of
	// them lands in the new bucket while unassigned (or while in a
	// pre-triage status).
	New map[status.Status]bool

	// PreTriage marks statuses that count as new even when an analyst is
	// already assigned.
	PreTriage map[status.Status]bool

	// InFlight holds the "anyone's concern" statuses counted into the
	// queue badge regardless of assignment.
	InFlight map[status.Status]bool
}

func statusSet(statuses ...status.Status) map[status.Status]bool {
	set := make(map[status.Status]bool, len(statuses))
	for _, s := range statuses {
		set[s] = true
	}
	return set
}

var moduleConfigs = map[entity.Module]ModuleConfig{
	entity.ModuleSOSFU: {
		Module: entity.ModuleSOSFU,
		New:    statusSet(status.WaitingSOSFUAnalysis, status.WaitingSOSFU),
		// WAITING_SOSFU is the untriaged hand-off from the gestor; it stays
		// in the new tab even after someone claims the record.
		PreTriage: statusSet(status.WaitingSOSFU),
		InFlight: statusSet(
			status.WaitingSOSFUExecution,
			status.WaitingSefinSignature,
			status.WaitingCorrection,
			status.Status(entity.AccountabilityCorrection),
			status.Status(entity.AccountabilityLate),
		),
	},
	entity.ModuleSODPA: {
		Module: entity.ModuleSODPA,
		New:    statusSet(status.WaitingSODPAAnalysis),
		InFlight: statusSet(
			status.WaitingSODPAExecution,
			status.WaitingSODPAPayment,
			status.WaitingSefinSignature,
			status.WaitingCorrection,
		),
	},
	entity.ModuleRessarcimento: {
		Module: entity.ModuleRessarcimento,
		New:    statusSet(status.WaitingRessarcimentoAnalysis),
		InFlight: statusSet(
			status.WaitingRessarcimentoExecution,
			status.WaitingRessarcimentoPayment,
			status.WaitingSefinSignature,
			status.WaitingCorrection,
		),
	},
	entity.ModuleAJSEFIN: {
		Module:   entity.ModuleAJSEFIN,
		New:      statusSet(status.WaitingSefinSignature),
		InFlight: statusSet(status.WaitingSOSFUPayment),
	},
}

// ConfigFor returns the bucketing configuration of a module.
func ConfigFor(m entity.Module) (ModuleConfig, bool) {
	cfg, ok := moduleConfigs[m]
	return cfg, ok
}

// BucketFor places a record in exactly one tab. Done takes precedence (a
// terminal record can never be new), then new, then queue as the catch-all,
// so the tab partition is total and exclusive by construction.
func (c ModuleConfig) BucketFor(item entity.InboxItem, userID string) Bucket {
	if item.Status.IsDone() {
		return BucketDone
	}
	if c.New[item.Status] && (!assigned(item) || c.PreTriage[item.Status]) {
		return BucketNew
	}
	return BucketQueue
}

// Partition splits records into the mutually exclusive tab lists.
func Partition(items []entity.InboxItem, cfg ModuleConfig, userID string) map[Bucket][]entity.InboxItem {
	out := map[Bucket][]entity.InboxItem{
		BucketNew:   {},
		BucketQueue: {},
		BucketDone:  {},
	}
	for _, item := range items {
		b := cfg.BucketFor(item, userID)
		out[b] = append(out[b], item)
	}
	return out
}

// BucketCounts are the header badge numbers. Unlike the tab partition they
// are allowed to overlap: an in-flight record assigned to someone else
// still counts into the queue badge.
type BucketCounts struct {
	New   int `json:"new"`
	Queue int `json:"queue"`
	Done  int `json:"done"`
}

// Counts computes the badge numbers from the same predicate set the tabs
// use.
func Counts(items []entity.InboxItem, cfg ModuleConfig, userID string) BucketCounts {
	var counts BucketCounts
	for _, item := range items {
		if item.Status.IsDone() {
			counts.Done++
			continue
		}
		if cfg.New[item.Status] && (!assigned(item) || cfg.PreTriage[item.Status]) {
			counts.New++
		}
		if (assigned(item) && *item.AnalystID == userID) || cfg.InFlight[item.Status] {
			counts.Queue++
		}
	}
	return counts
}

// Search filters items by a case-insensitive substring match on the process
// number and the beneficiary name. It is always applied after bucketing.
func Search(items []entity.InboxItem, query string) []entity.InboxItem {
	q := strings.TrimSpace(strings.ToLower(query))
	if q == "" {
		return items
	}
	out := make([]entity.InboxItem, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.ProcessNumber), q) ||
			strings.Contains(strings.ToLower(item.Beneficiary), q) {
			out = append(out, item)
		}
	}
	return out
}

func assigned(item entity.InboxItem) bool {
	return item.AnalystID != nil && *item.AnalystID != ""
}
