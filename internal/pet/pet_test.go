package pet

import (
	"errors"
	"math"
	"testing"
	"time"

	"chorequest/internal/models"
)

var base = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

func TestAdopt(t *testing.T) {
	p := Adopt(7, "Sparky", models.PetDragon, base)
	if p.Stage != 1 || p.Health != 100 || p.Happiness != 100 || p.Experience != 0 {
		t.Errorf("Adopt() = %+v", p)
	}
	if p.ChildID != 7 || !p.LastInteraction.Equal(base) {
		t.Errorf("Adopt() did not set child or timestamp: %+v", p)
	}
}

func TestDecay(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		name          string
		health        int
		happiness     int
		elapsed       time.Duration
		wantHealth    int
		wantHappiness int
		wantChanged   bool
	}{
		{name: "under an hour", health: 80, happiness: 80, elapsed: 59 * time.Minute, wantHealth: 80, wantHappiness: 80},
		{name: "two and a half hours", health: 80, happiness: 60, elapsed: 150 * time.Minute, wantHealth: 70, wantHappiness: 50, wantChanged: true},
		{name: "floors at zero", health: 10, happiness: 12, elapsed: 5 * time.Hour, wantHealth: 0, wantHappiness: 0, wantChanged: true},
		{name: "already empty", health: 0, happiness: 0, elapsed: 3 * time.Hour, wantHealth: 0, wantHappiness: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := models.Pet{Stage: 2, Health: tt.health, Happiness: tt.happiness, LastInteraction: base}
			got, changed := Decay(p, base.Add(tt.elapsed), rules)
			if changed != tt.wantChanged {
				t.Errorf("changed = %v, want %v", changed, tt.wantChanged)
			}
			if got.Health != tt.wantHealth || got.Happiness != tt.wantHappiness {
				t.Errorf("Decay() health=%d happiness=%d, want %d/%d", got.Health, got.Happiness, tt.wantHealth, tt.wantHappiness)
			}
			if !got.LastInteraction.Equal(base) {
				t.Error("Decay() must not reset LastInteraction")
			}
		})
	}
}

func TestFeed(t *testing.T) {
	rules := DefaultRules()
	p := models.Pet{Stage: 3, Health: 90, Happiness: 40, Experience: 20, LastInteraction: base}
	now := base.Add(time.Hour)

	got, energy, err := Feed(p, 25, now, rules)
	if err != nil {
		t.Fatalf("Feed() error: %v", err)
	}
	if energy != 15 {
		t.Errorf("energy = %d, want 15", energy)
	}
	if got.Health != 100 {
		t.Errorf("health = %d, want 100 (clamped)", got.Health)
	}
	if got.Experience != 25 || got.Stage != 3 {
		t.Errorf("xp=%d stage=%d, want 25/3", got.Experience, got.Stage)
	}
	if !got.LastInteraction.Equal(now) {
		t.Error("Feed() should stamp LastInteraction")
	}
}

func TestInsufficientEnergy(t *testing.T) {
	rules := DefaultRules()
	p := models.Pet{Stage: 1, Health: 50, Happiness: 50, LastInteraction: base}

	got, energy, err := Feed(p, 9, base, rules)
	if !errors.Is(err, ErrInsufficientEnergy) {
		t.Fatalf("Feed() error = %v, want ErrInsufficientEnergy", err)
	}
	if energy != 9 || got != p {
		t.Error("Feed() changed state on failure")
	}

	_, energy, err = Play(p, 4, base, rules)
	if !errors.Is(err, ErrInsufficientEnergy) {
		t.Fatalf("Play() error = %v, want ErrInsufficientEnergy", err)
	}
	if energy != 4 {
		t.Error("Play() spent energy on failure")
	}
}

func TestPlayEvolves(t *testing.T) {
	rules := DefaultRules()
	p := models.Pet{Stage: 4, Health: 70, Happiness: 85, Experience: 95, LastInteraction: base}

	got, energy, err := Play(p, 5, base, rules)
	if err != nil {
		t.Fatalf("Play() error: %v", err)
	}
	if got.Stage != 5 || got.Experience != 0 {
		t.Errorf("stage=%d xp=%d, want 5/0", got.Stage, got.Experience)
	}
	if got.Happiness != 100 {
		t.Errorf("happiness = %d, want 100", got.Happiness)
	}
	if energy != 0 {
		t.Errorf("energy = %d, want 0", energy)
	}
}

func TestPhaseFor(t *testing.T) {
	tests := []struct {
		stage int
		want  Phase
	}{
		{1, PhaseEgg},
		{2, PhaseBaby},
		{9, PhaseBaby},
		{10, PhaseTeen},
		{19, PhaseTeen},
		{20, PhaseAdult},
		{29, PhaseAdult},
		{30, PhaseMythic},
		{55, PhaseMythic},
	}

	for _, tt := range tests {
		if got := PhaseFor(tt.stage); got != tt.want {
			t.Errorf("PhaseFor(%d) = %s, want %s", tt.stage, got, tt.want)
		}
	}
}

func TestScaleFor(t *testing.T) {
	tests := []struct {
		stage int
		want  float64
	}{
		{1, 0.84},
		{10, 1.2},
		{30, 2.0},
		{42, 2.48},
		{43, 2.5},
		{100, 2.5},
	}

	for _, tt := range tests {
		if got := ScaleFor(tt.stage); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("ScaleFor(%d) = %v, want %v", tt.stage, got, tt.want)
		}
	}
}

func TestAccessoriesFor(t *testing.T) {
	tests := []struct {
		stage int
		want  Accessories
	}{
		{1, Accessories{}},
		{2, Accessories{}},
		{3, Accessories{Head: "bow"}},
		{5, Accessories{Head: "beanie"}},
		{8, Accessories{Head: "beanie", Face: "pacifier"}},
		{10, Accessories{}},
		{15, Accessories{Head: "cap", Face: "sunglasses"}},
		{28, Accessories{Head: "top_hat", Face: "monocle", Back: "cape"}},
		{30, Accessories{Head: "halo"}},
		{40, Accessories{Head: "halo", Back: "wings", Aura: "aura"}},
	}

	for _, tt := range tests {
		if got := AccessoriesFor(tt.stage); got != tt.want {
			t.Errorf("AccessoriesFor(%d) = %+v, want %+v", tt.stage, got, tt.want)
		}
	}
}

func TestTitleFor(t *testing.T) {
	if got := TitleFor(1, models.PetDragon); got != "Mysterious Egg" {
		t.Errorf("TitleFor(1) = %q", got)
	}
	if got := TitleFor(12, models.PetDragon); got != "Teen Dragon" {
		t.Errorf("TitleFor(12) = %q", got)
	}
	if got := AppearanceFor(31, models.PetOwl).Title; got != "Mythic Owl" {
		t.Errorf("AppearanceFor(31).Title = %q", got)
	}
}
