package projection

import (
	"testing"
	"time"

	"github.com/tjpa/agil-workflow/internal/domain/entity"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func task(createdAgo time.Duration, value float64, docType string) entity.InboxItem {
	return entity.InboxItem{
		Kind:         entity.KindSolicitation,
		Value:        value,
		DocumentType: docType,
		CreatedAt:    now.Add(-createdAgo),
	}
}

func TestScoreAll_Empty(t *testing.T) {
	got := ScoreAll(nil, DefaultPriorityConfig(), now)
	if len(got) != 0 {
		t.Errorf("empty input should produce an empty result, got %d", len(got))
	}
}

// Older task scores >= newer, all else equal.
func TestScoreAll_AgeOrdering(t *testing.T) {
	cfg := DefaultPriorityConfig()
	older := scoreOne(task(60*time.Hour, 5000, "NE"), cfg, now)
	newer := scoreOne(task(2*time.Hour, 5000, "NE"), cfg, now)

	if older.Score < newer.Score {
		t.Errorf("older task scored %d below newer %d", older.Score, newer.Score)
	}
	if older.WaitingHours != 60 {
		t.Errorf("WaitingHours = %d, want 60", older.WaitingHours)
	}
}

// Higher value scores >= lower, all else equal.
func TestScoreAll_ValueOrdering(t *testing.T) {
	cfg := DefaultPriorityConfig()
	high := scoreOne(task(10*time.Hour, 14000, "OB"), cfg, now)
	low := scoreOne(task(10*time.Hour, 200, "OB"), cfg, now)

	if high.Score < low.Score {
		t.Errorf("high-value task scored %d below low-value %d", high.Score, low.Score)
	}
}

// With all weight on value and value == max, the score is exactly 100.
func TestScoreAll_ValueWeightAlone(t *testing.T) {
	cfg := PriorityConfig{WeightValue: 1, MaxValue: 15000, MaxAgeHours: 72}
	got := scoreOne(task(time.Hour, 15000, "NE"), cfg, now)

	if got.Score != 100 {
		t.Errorf("Score = %d, want 100", got.Score)
	}
	if got.Level != LevelCritico {
		t.Errorf("Level = %s, want CRITICO", got.Level)
	}
}

func TestScoreAll_ScenarioLevels(t *testing.T) {
	cfg := DefaultPriorityConfig()

	// 100 days old, R$ 20.000, nota de empenho: everything saturated.
	a := scoreOne(task(100*24*time.Hour, 20000, "NE"), cfg, now)
	if a.Level != LevelCritico {
		t.Errorf("aged high-value NE level = %s, want CRITICO", a.Level)
	}

	// Created now, R$ 100, cover sheet: routine at best.
	b := scoreOne(task(0, 100, "COVER"), cfg, now)
	if b.Level != LevelRotina && b.Level != LevelMedio {
		t.Errorf("fresh low-value COVER level = %s, want ROTINA or MEDIO", b.Level)
	}
	if b.Score > a.Score {
		t.Errorf("fresh task outscored the saturated one: %d > %d", b.Score, a.Score)
	}
}

func TestScoreAll_SortedDescending(t *testing.T) {
	items := []entity.InboxItem{
		task(time.Hour, 100, "COVER"),
		task(90*time.Hour, 14000, "NE"),
		task(30*time.Hour, 7000, "DL"),
	}

	scored := ScoreAll(items, DefaultPriorityConfig(), now)
	for i := 1; i < len(scored); i++ {
		if scored[i].Score > scored[i-1].Score {
			t.Fatalf("result not sorted descending at %d: %d > %d", i, scored[i].Score, scored[i-1].Score)
		}
	}
}

func TestScoreOne_MalformedCreatedAt(t *testing.T) {
	cfg := DefaultPriorityConfig()
	got := scoreOne(entity.InboxItem{Value: 0, DocumentType: ""}, cfg, now)

	if got.WaitingHours != 0 {
		t.Errorf("zero created_at should not count as infinitely old, waiting = %d", got.WaitingHours)
	}
	if got.Score > 15 {
		t.Errorf("malformed input should score near zero, got %d", got.Score)
	}
}

func TestScoreOne_FutureCreatedAtClamps(t *testing.T) {
	cfg := DefaultPriorityConfig()
	got := scoreOne(task(-5*time.Hour, 0, ""), cfg, now)
	if got.WaitingHours != 0 {
		t.Errorf("future created_at should clamp to zero, waiting = %d", got.WaitingHours)
	}
}

func TestScoreOne_StaleFlag(t *testing.T) {
	cfg := DefaultPriorityConfig() // stale after 48h
	if !scoreOne(task(49*time.Hour, 0, ""), cfg, now).Stale {
		t.Error("49h-old task should be stale")
	}
	if scoreOne(task(3*time.Hour, 0, ""), cfg, now).Stale {
		t.Error("3h-old task should not be stale")
	}
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		score    int
		expected Level
	}{
		{0, LevelRotina},
		{24, LevelRotina},
		{25, LevelMedio},
		{49, LevelMedio},
		{50, LevelAlto},
		{74, LevelAlto},
		{75, LevelCritico},
		{100, LevelCritico},
	}
	for _, tt := range tests {
		if got := LevelFor(tt.score); got != tt.expected {
			t.Errorf("LevelFor(%d) = %s, want %s", tt.score, got, tt.expected)
		}
	}
}
