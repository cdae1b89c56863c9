package projection

import (
	"math"
	"sort"
	"time"

	"github.com/tjpa/agil-workflow/internal/domain/entity"
)

// Level is the discrete urgency rating derived from the composite score.
type Level string

const (
	LevelRotina  Level = "ROTINA"
	LevelMedio   Level = "MEDIO"
	LevelAlto    Level = "ALTO"
	LevelCritico Level = "CRITICO"
)

// PriorityConfig holds the tunable scoring policy. Weights should sum to 1;
// thresholds partition the 0..100 score into the four levels.
type PriorityConfig struct {
	WeightAge   float64 `mapstructure:"weight_age"`
	WeightValue float64 `mapstructure:"weight_value"`
	WeightType  float64 `mapstructure:"weight_type"`

	// MaxAgeHours is the horizon past which age saturates at full score.
	MaxAgeHours float64 `mapstructure:"max_age_hours"`

	// MaxValue normalizes the monetary factor.
	MaxValue float64 `mapstructure:"max_value"`

	// StaleAfterHours flags tasks waiting beyond this threshold.
	StaleAfterHours float64 `mapstructure:"stale_after_hours"`
}

// DefaultPriorityConfig mirrors the SEFIN signing-queue policy the web
// front-end shipped with.
func DefaultPriorityConfig() PriorityConfig {
	return PriorityConfig{
		WeightAge:       0.5,
		WeightValue:     0.3,
		WeightType:      0.2,
		MaxAgeHours:     72,
		MaxValue:        15000,
		StaleAfterHours: 48,
	}
}

// docTypePriority weighs document types; NE and DL outrank OB.
var docTypePriority = map[string]float64{
	"NOTA_EMPENHO":          1.0,
	"NE":                    1.0,
	"DOCUMENTO_LIQUIDACAO":  0.9,
	"DL":                    0.9,
	"CONCESSAO":             0.8,
	"ORDEM_BANCARIA":        0.7,
	"OB":                    0.7,
	"PORTARIA":              0.6,
	"REQUEST":               0.5,
	"ATTESTATION":           0.4,
	"COVER":                 0.3,
}

const defaultDocTypePriority = 0.5

// ScoredItem pairs an inbox item with its computed priority.
type ScoredItem struct {
	Item         entity.InboxItem `json:"item"`
	Score        int              `json:"score"`
	Level        Level            `json:"level"`
	WaitingHours int              `json:"waiting_hours"`
	Stale        bool             `json:"stale"`
}

// ScoreAll scores a batch against a single "now" and returns it sorted by
// descending score (stable, so equal scores keep input order). Empty input
// yields an empty slice.
func ScoreAll(items []entity.InboxItem, cfg PriorityConfig, now time.Time) []ScoredItem {
	scored := make([]ScoredItem, 0, len(items))
	for _, item := range items {
		scored = append(scored, scoreOne(item, cfg, now))
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

func scoreOne(item entity.InboxItem, cfg PriorityConfig, now time.Time) ScoredItem {
	waitingHours := 0.0
	// A zero created_at is malformed input; treat it as brand new rather
	// than infinitely old.
	if !item.CreatedAt.IsZero() {
		waitingHours = now.Sub(item.CreatedAt).Hours()
		if waitingHours < 0 {
			waitingHours = 0
		}
	}

	ageScore := 0.0
	if cfg.MaxAgeHours > 0 {
		ageScore = math.Min(100, waitingHours/cfg.MaxAgeHours*100)
	}

	valueScore := 0.0
	if cfg.MaxValue > 0 && item.Value > 0 {
		valueScore = math.Min(100, item.Value/cfg.MaxValue*100)
	}

	typePriority, ok := docTypePriority[item.DocumentType]
	if !ok {
		typePriority = defaultDocTypePriority
	}
	typeScore := typePriority * 100

	score := int(math.Round(ageScore*cfg.WeightAge + valueScore*cfg.WeightValue + typeScore*cfg.WeightType))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return ScoredItem{
		Item:         item,
		Score:        score,
		Level:        LevelFor(score),
		WaitingHours: int(math.Round(waitingHours)),
		Stale:        cfg.StaleAfterHours > 0 && waitingHours >= cfg.StaleAfterHours,
	}
}

// LevelFor maps a score to its level band.
func LevelFor(score int) Level {
	switch {
	case score >= 75:
		return LevelCritico
	case score >= 50:
		return LevelAlto
	case score >= 25:
		return LevelMedio
	default:
		return LevelRotina
	}
}
