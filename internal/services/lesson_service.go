package services

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/VictorTadashi/AnimaFlow/internal/catalog"
	"github.com/VictorTadashi/AnimaFlow/internal/models"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const (
	tagDuration      = "duration"
	tagClassSize     = "class_size"
	tagInteractivity = "interactivity"
	tagPhaseSum      = "phase_sum"
	tagEveryStage    = "every_stage"
	tagKnownStrategy = "known_strategy"
)

const promptTemplate = `Crie um roteiro para uma aula online com %s duração de %s com interatividade %s com o tema: %s.

Distribua o tempo da seguinte forma:
- Fase Ativar (despertar interesse e conhecimento prévio): %d%%
- Fase Aplicar (prática e desenvolvimento de habilidades): %d%%
- Fase Avaliar (verificação da aprendizagem): %d%%

Estratégias selecionadas por etapa:
%s

Use a taxonomia de neuroaprendizagem para estruturar o conteúdo de cada fase.`

var phaseLabels = map[string]string{
	"ativar":  "Ativar",
	"aplicar": "Aplicar",
	"avaliar": "Avaliar",
}

type lessonService struct {
	catalog  *catalog.Catalog
	validate *validator.Validate
	logger   *zap.Logger
}

// NewLessonService creates a lesson wizard service validating against the given catalog
func NewLessonService(c *catalog.Catalog, logger *zap.Logger) *lessonService {
	return &lessonService{
		catalog:  c,
		validate: newLessonValidator(c),
		logger:   logger,
	}
}

// Options returns the catalog the wizard offers
func (s *lessonService) Options() *catalog.Catalog {
	return s.catalog
}

// Validate checks a lesson request against the catalog.
// A failure is always a *models.ValidationError listing every offending field.
func (s *lessonService) Validate(req models.LessonRequest) error {
	req.Topic = strings.TrimSpace(req.Topic)

	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("failed to validate lesson request: %w", err)
	}

	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		path := fieldPath(fe)
		if _, exists := fields[path]; exists {
			continue
		}
		fields[path] = validationMessage(path, fe)
	}
	return &models.ValidationError{Fields: fields}
}

// CompilePrompt validates a lesson request and turns it into the prompt sent to the assistant
func (s *lessonService) CompilePrompt(req models.LessonRequest) (string, error) {
	if err := s.Validate(req); err != nil {
		return "", err
	}

	lines := make([]string, 0, len(models.Stages))
	for _, stage := range models.Stages {
		selected := req.Strategies.ForStage(stage)
		if len(selected) == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", stage, strings.Join(selected, ", ")))
	}

	prompt := fmt.Sprintf(promptTemplate,
		req.ClassSize,
		req.Duration,
		strings.ToLower(req.Interactivity),
		strings.TrimSpace(req.Topic),
		req.TimeAllocation.Ativar,
		req.TimeAllocation.Aplicar,
		req.TimeAllocation.Avaliar,
		strings.Join(lines, "\n"),
	)

	s.logger.Debug("compiled lesson prompt",
		zap.String("topic", req.Topic),
		zap.Int("length", len(prompt)),
	)
	return prompt, nil
}

// Rebalance applies the package level Rebalance
func (s *lessonService) Rebalance(t models.TimeAllocation) models.TimeAllocation {
	return Rebalance(t)
}

// Rebalance rescales a phase triple so it sums to 100 while keeping every phase at least 1.
// Rounding leftovers go to the largest phase.
func Rebalance(t models.TimeAllocation) models.TimeAllocation {
	// float64 shares cannot overflow for any int input
	shares := []float64{float64(max(t.Ativar, 0)), float64(max(t.Aplicar, 0)), float64(max(t.Avaliar, 0))}
	total := shares[0] + shares[1] + shares[2]
	if total == 0 {
		return models.TimeAllocation{Ativar: 34, Aplicar: 33, Avaliar: 33}
	}

	values := make([]int, len(shares))
	sum := 0
	for i, v := range shares {
		scaled := int(math.Floor(v*100/total + 0.5))
		values[i] = max(1, scaled)
		sum += values[i]
	}

	largest := 0
	for i := range values {
		if values[i] > values[largest] {
			largest = i
		}
	}
	values[largest] += 100 - sum

	return models.TimeAllocation{Ativar: values[0], Aplicar: values[1], Avaliar: values[2]}
}

func newLessonValidator(c *catalog.Catalog) *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterValidation(tagDuration, func(fl validator.FieldLevel) bool {
		return c.HasDuration(fl.Field().String())
	})
	v.RegisterValidation(tagClassSize, func(fl validator.FieldLevel) bool {
		return c.HasClassSize(fl.Field().String())
	})
	v.RegisterValidation(tagInteractivity, func(fl validator.FieldLevel) bool {
		return c.HasInteractivity(fl.Field().String())
	})

	v.RegisterStructValidation(func(sl validator.StructLevel) {
		t := sl.Current().Interface().(models.TimeAllocation)
		if t.Sum() != 100 {
			sl.ReportError(t, "", "", tagPhaseSum, "100")
		}
	}, models.TimeAllocation{})

	v.RegisterStructValidation(func(sl validator.StructLevel) {
		s := sl.Current().Interface().(models.Strategies)
		for _, stage := range models.Stages {
			selected := s.ForStage(stage)
			if len(selected) == 0 {
				sl.ReportError(selected, "", "", tagEveryStage, "")
				return
			}
		}
		for _, stage := range models.Stages {
			for _, label := range s.ForStage(stage) {
				if !c.HasStrategy(stage, label) {
					sl.ReportError(label, string(stage), string(stage), tagKnownStrategy, label)
				}
			}
		}
	}, models.Strategies{})

	return v
}

// fieldPath returns the JSON path of the failing field without the root struct name
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	return strings.TrimSuffix(ns, ".")
}

func validationMessage(path string, fe validator.FieldError) string {
	switch path {
	case "topic":
		return "O tema da aula é obrigatório"
	case "duration":
		if fe.Tag() == "required" {
			return "A duração da aula é obrigatória"
		}
		return "Selecione uma duração válida"
	case "classSize":
		if fe.Tag() == "required" {
			return "A quantidade de alunos é obrigatória"
		}
		return "Selecione uma quantidade de alunos válida"
	case "interactivity":
		if fe.Tag() == "required" {
			return "O nível de interatividade é obrigatório"
		}
		return "Selecione um nível de interatividade válido"
	case "timeAllocation":
		return "A distribuição deve somar exatamente 100%"
	case "strategies":
		return "É necessário selecionar ao menos uma estratégia para cada etapa"
	}

	if phase, ok := strings.CutPrefix(path, "timeAllocation."); ok {
		if fe.Tag() == "max" {
			return fmt.Sprintf("A fase %s deve ter no máximo 100%%", phaseLabels[phase])
		}
		return fmt.Sprintf("A fase %s deve ter pelo menos 1%%", phaseLabels[phase])
	}
	if stage, ok := strings.CutPrefix(path, "strategies."); ok {
		return fmt.Sprintf("Estratégia desconhecida para a etapa %s: %s", stage, fe.Param())
	}
	return "Valor inválido"
}
