package models

import "fmt"

// Phase names one of the three pedagogical phases of a lesson
type Phase string

const (
	PhaseAtivar  Phase = "ativar"
	PhaseAplicar Phase = "aplicar"
	PhaseAvaliar Phase = "avaliar"
)

// Stage names one of the seven strategy stages of the neurolearning taxonomy
type Stage string

const (
	StageConectar  Stage = "conectar"
	StageExplorar  Stage = "explorar"
	StageExpandir  Stage = "expandir"
	StageEfetivar  Stage = "efetivar"
	StageEmplacar  Stage = "emplacar"
	StageInteragir Stage = "interagir"
	StageAvaliar   Stage = "avaliar"
)

// Stages lists every strategy stage in prompt order
var Stages = []Stage{
	StageConectar,
	StageExplorar,
	StageExpandir,
	StageEfetivar,
	StageEmplacar,
	StageInteragir,
	StageAvaliar,
}

// TimeAllocation holds the percentage of lesson time given to each phase
type TimeAllocation struct {
	Ativar  int `json:"ativar" yaml:"ativar" validate:"min=1,max=100"`
	Aplicar int `json:"aplicar" yaml:"aplicar" validate:"min=1,max=100"`
	Avaliar int `json:"avaliar" yaml:"avaliar" validate:"min=1,max=100"`
}

// Sum returns the total percentage of the allocation
func (t TimeAllocation) Sum() int {
	return t.Ativar + t.Aplicar + t.Avaliar
}

// Strategies maps every stage to the strategy labels selected for it
type Strategies struct {
	Conectar  []string `json:"conectar" yaml:"conectar"`
	Explorar  []string `json:"explorar" yaml:"explorar"`
	Expandir  []string `json:"expandir" yaml:"expandir"`
	Efetivar  []string `json:"efetivar" yaml:"efetivar"`
	Emplacar  []string `json:"emplacar" yaml:"emplacar"`
	Interagir []string `json:"interagir" yaml:"interagir"`
	Avaliar   []string `json:"avaliar" yaml:"avaliar"`
}

// ForStage returns the labels selected for the given stage
func (s Strategies) ForStage(stage Stage) []string {
	switch stage {
	case StageConectar:
		return s.Conectar
	case StageExplorar:
		return s.Explorar
	case StageExpandir:
		return s.Expandir
	case StageEfetivar:
		return s.Efetivar
	case StageEmplacar:
		return s.Emplacar
	case StageInteragir:
		return s.Interagir
	case StageAvaliar:
		return s.Avaliar
	}
	return nil
}

// LessonRequest is the wizard form submitted to generate a lesson plan.
// It is transformed once into a prompt and never stored.
type LessonRequest struct {
	Topic          string         `json:"topic" yaml:"topic" validate:"required"`
	Duration       string         `json:"duration" yaml:"duration" validate:"required,duration"`
	ClassSize      string         `json:"classSize" yaml:"classSize" validate:"required,class_size"`
	TimeAllocation TimeAllocation `json:"timeAllocation" yaml:"timeAllocation"`
	Strategies     Strategies     `json:"strategies" yaml:"strategies"`
	Interactivity  string         `json:"interactivity" yaml:"interactivity" validate:"required,interactivity"`
}

// PromptResponse is returned by the prompt compilation endpoint
type PromptResponse struct {
	Prompt string `json:"prompt"`
}

// ValidationErrorResponse lists form errors keyed by field path
type ValidationErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

// ValidationError reports every invalid field of a lesson request, keyed by JSON path
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("lesson request is invalid: %d field(s)", len(e.Fields))
}
