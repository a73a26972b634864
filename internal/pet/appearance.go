package pet

import (
	"fmt"
	"strings"

	"chorequest/internal/models"
)

// Phase is the cosmetic age bracket derived from a pet's stage
type Phase string

const (
	PhaseEgg    Phase = "EGG"
	PhaseBaby   Phase = "BABY"
	PhaseTeen   Phase = "TEEN"
	PhaseAdult  Phase = "ADULT"
	PhaseMythic Phase = "MYTHIC"
)

// Accessories are the cosmetic slots unlocked by stage. Empty means nothing worn.
type Accessories struct {
	Head string `json:"head,omitempty"`
	Face string `json:"face,omitempty"`
	Back string `json:"back,omitempty"`
	Aura string `json:"aura,omitempty"`
}

// Appearance is everything the UI needs to draw a pet at a given stage
type Appearance struct {
	Stage       int         `json:"stage"`
	Phase       Phase       `json:"phase"`
	Title       string      `json:"title"`
	Scale       float64     `json:"scale"`
	Accessories Accessories `json:"accessories"`
}

// PhaseFor maps a stage to its phase
func PhaseFor(stage int) Phase {
	switch {
	case stage <= 1:
		return PhaseEgg
	case stage < 10:
		return PhaseBaby
	case stage < 20:
		return PhaseTeen
	case stage < 30:
		return PhaseAdult
	default:
		return PhaseMythic
	}
}

// ScaleFor is the visual size multiplier, capped at 2.5
func ScaleFor(stage int) float64 {
	return min(2.5, 0.8+float64(stage)*0.04)
}

type unlock struct {
	at    int
	slot  string
	value string
}

var unlocks = map[Phase][]unlock{
	PhaseBaby: {
		{3, "head", "bow"},
		{5, "head", "beanie"},
		{8, "face", "pacifier"},
	},
	PhaseTeen: {
		{12, "head", "cap"},
		{15, "face", "sunglasses"},
		{18, "back", "backpack"},
	},
	PhaseAdult: {
		{22, "head", "top_hat"},
		{25, "face", "monocle"},
		{28, "back", "cape"},
	},
	PhaseMythic: {
		{30, "head", "halo"},
		{35, "back", "wings"},
		{40, "aura", "aura"},
	},
}

// AccessoriesFor returns the accessories worn at a stage. Later unlocks in
// the same slot replace earlier ones.
func AccessoriesFor(stage int) Accessories {
	var a Accessories
	for _, u := range unlocks[PhaseFor(stage)] {
		if stage < u.at {
			continue
		}
		switch u.slot {
		case "head":
			a.Head = u.value
		case "face":
			a.Face = u.value
		case "back":
			a.Back = u.value
		case "aura":
			a.Aura = u.value
		}
	}
	return a
}

// TitleFor names the pet's phase and species, e.g. "Teen Dragon"
func TitleFor(stage int, petType models.PetType) string {
	phase := PhaseFor(stage)
	if phase == PhaseEgg {
		return "Mysterious Egg"
	}
	species := strings.ToLower(string(petType))
	if species != "" {
		species = strings.ToUpper(species[:1]) + species[1:]
	}
	label := strings.ToUpper(string(phase)[:1]) + strings.ToLower(string(phase)[1:])
	return strings.TrimSpace(fmt.Sprintf("%s %s", label, species))
}

// AppearanceFor derives the full appearance from stage and species
func AppearanceFor(stage int, petType models.PetType) Appearance {
	return Appearance{
		Stage:       stage,
		Phase:       PhaseFor(stage),
		Title:       TitleFor(stage, petType),
		Scale:       ScaleFor(stage),
		Accessories: AccessoriesFor(stage),
	}
}
