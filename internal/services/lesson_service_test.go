package services

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/VictorTadashi/AnimaFlow/internal/catalog"
	"github.com/VictorTadashi/AnimaFlow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func validLessonRequest() models.LessonRequest {
	return models.LessonRequest{
		Topic:     "Marketing Digital",
		Duration:  "120 minutos",
		ClassSize: "Entre 50 e 100 alunos",
		TimeAllocation: models.TimeAllocation{
			Ativar:  30,
			Aplicar: 50,
			Avaliar: 20,
		},
		Strategies: models.Strategies{
			Conectar:  []string{"Discussão Inicial"},
			Explorar:  []string{"Atividades de Pesquisa Rápida"},
			Expandir:  []string{"Aula Expositiva"},
			Efetivar:  []string{"Reflexão Individual"},
			Emplacar:  []string{"Desafio Prático"},
			Interagir: []string{"Discussão em Grupos"},
			Avaliar:   []string{"Avaliação Formativa"},
		},
		Interactivity: "Média",
	}
}

func newTestLessonService() *lessonService {
	return NewLessonService(catalog.Default(), zap.NewNop())
}

func TestNewLessonService(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	c := catalog.Default()

	svc := NewLessonService(c, logger)

	assert.NotNil(t, svc)
	assert.Equal(t, c, svc.catalog)
	assert.Same(t, c, svc.Options())
	assert.NotNil(t, svc.validate)
}

func TestLessonService_CompilePrompt_MarketingDigital(t *testing.T) {
	svc := newTestLessonService()

	prompt, err := svc.CompilePrompt(validLessonRequest())

	require.NoError(t, err)
	expected := `Crie um roteiro para uma aula online com Entre 50 e 100 alunos duração de 120 minutos com interatividade média com o tema: Marketing Digital.

Distribua o tempo da seguinte forma:
- Fase Ativar (despertar interesse e conhecimento prévio): 30%
- Fase Aplicar (prática e desenvolvimento de habilidades): 50%
- Fase Avaliar (verificação da aprendizagem): 20%

Estratégias selecionadas por etapa:
conectar: Discussão Inicial
explorar: Atividades de Pesquisa Rápida
expandir: Aula Expositiva
efetivar: Reflexão Individual
emplacar: Desafio Prático
interagir: Discussão em Grupos
avaliar: Avaliação Formativa

Use a taxonomia de neuroaprendizagem para estruturar o conteúdo de cada fase.`
	assert.Equal(t, expected, prompt)
	assert.True(t, strings.HasSuffix(prompt, "Use a taxonomia de neuroaprendizagem para estruturar o conteúdo de cada fase."))
}

func TestLessonService_CompilePrompt_JoinsStrategies(t *testing.T) {
	svc := newTestLessonService()
	req := validLessonRequest()
	req.Topic = "  Funções  "
	req.Strategies.Conectar = []string{"Apresentação do Desafio", "Perguntas Provocantes"}

	prompt, err := svc.CompilePrompt(req)

	require.NoError(t, err)
	assert.Contains(t, prompt, "conectar: Apresentação do Desafio, Perguntas Provocantes\n")
	assert.Contains(t, prompt, "com o tema: Funções.")
}

func TestLessonService_Validate(t *testing.T) {
	tests := []struct {
		name           string
		mutate         func(r *models.LessonRequest)
		expectedFields map[string]string
	}{
		{
			name:   "valid request",
			mutate: func(r *models.LessonRequest) {},
		},
		{
			name:   "boundary phases accepted",
			mutate: func(r *models.LessonRequest) { r.TimeAllocation = models.TimeAllocation{Ativar: 1, Aplicar: 98, Avaliar: 1} },
		},
		{
			name:           "blank topic",
			mutate:         func(r *models.LessonRequest) { r.Topic = "   " },
			expectedFields: map[string]string{"topic": "O tema da aula é obrigatório"},
		},
		{
			name:           "missing duration",
			mutate:         func(r *models.LessonRequest) { r.Duration = "" },
			expectedFields: map[string]string{"duration": "A duração da aula é obrigatória"},
		},
		{
			name:           "unknown duration",
			mutate:         func(r *models.LessonRequest) { r.Duration = "90 minutos" },
			expectedFields: map[string]string{"duration": "Selecione uma duração válida"},
		},
		{
			name:           "missing class size",
			mutate:         func(r *models.LessonRequest) { r.ClassSize = "" },
			expectedFields: map[string]string{"classSize": "A quantidade de alunos é obrigatória"},
		},
		{
			name:           "unknown interactivity",
			mutate:         func(r *models.LessonRequest) { r.Interactivity = "media" },
			expectedFields: map[string]string{"interactivity": "Selecione um nível de interatividade válido"},
		},
		{
			name:           "sum below 100",
			mutate:         func(r *models.LessonRequest) { r.TimeAllocation.Avaliar = 10 },
			expectedFields: map[string]string{"timeAllocation": "A distribuição deve somar exatamente 100%"},
		},
		{
			name:   "zero phase",
			mutate: func(r *models.LessonRequest) { r.TimeAllocation = models.TimeAllocation{Ativar: 0, Aplicar: 80, Avaliar: 20} },
			expectedFields: map[string]string{
				"timeAllocation.ativar": "A fase Ativar deve ter pelo menos 1%",
			},
		},
		{
			name:   "zero phase and wrong sum",
			mutate: func(r *models.LessonRequest) { r.TimeAllocation = models.TimeAllocation{Ativar: 30, Aplicar: 0, Avaliar: 20} },
			expectedFields: map[string]string{
				"timeAllocation.aplicar": "A fase Aplicar deve ter pelo menos 1%",
				"timeAllocation":         "A distribuição deve somar exatamente 100%",
			},
		},
		{
			name:   "stage without strategy",
			mutate: func(r *models.LessonRequest) { r.Strategies.Interagir = nil },
			expectedFields: map[string]string{
				"strategies": "É necessário selecionar ao menos uma estratégia para cada etapa",
			},
		},
		{
			name:   "strategy from another stage",
			mutate: func(r *models.LessonRequest) { r.Strategies.Explorar = []string{"Discussão Inicial"} },
			expectedFields: map[string]string{
				"strategies.explorar": "Estratégia desconhecida para a etapa explorar: Discussão Inicial",
			},
		},
	}

	svc := newTestLessonService()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validLessonRequest()
			tt.mutate(&req)

			err := svc.Validate(req)

			if tt.expectedFields == nil {
				assert.NoError(t, err)
				return
			}
			var vErr *models.ValidationError
			require.True(t, errors.As(err, &vErr), "got %v", err)
			assert.Equal(t, tt.expectedFields, vErr.Fields)
		})
	}
}

func TestLessonService_Validate_EveryStageRequired(t *testing.T) {
	svc := newTestLessonService()

	for _, stage := range models.Stages {
		t.Run(string(stage), func(t *testing.T) {
			req := validLessonRequest()
			clearStage(&req.Strategies, stage)

			err := svc.Validate(req)

			var vErr *models.ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Contains(t, vErr.Fields, "strategies")
		})
	}
}

func TestLessonService_Validate_PhaseTriples(t *testing.T) {
	svc := newTestLessonService()

	for a := 1; a <= 98; a += 7 {
		for b := 1; a+b <= 99; b += 11 {
			req := validLessonRequest()
			req.TimeAllocation = models.TimeAllocation{Ativar: a, Aplicar: b, Avaliar: 100 - a - b}
			assert.NoError(t, svc.Validate(req), "triple %d/%d/%d", a, b, 100-a-b)

			req.TimeAllocation.Avaliar++
			assert.Error(t, svc.Validate(req), "triple %d/%d/%d", a, b, 101-a-b)
		}
	}
}

func TestLessonService_CompilePrompt_Invalid(t *testing.T) {
	svc := newTestLessonService()
	req := validLessonRequest()
	req.Topic = ""

	prompt, err := svc.CompilePrompt(req)

	assert.Empty(t, prompt)
	var vErr *models.ValidationError
	assert.True(t, errors.As(err, &vErr))
}

func TestRebalance(t *testing.T) {
	tests := []struct {
		name     string
		input    models.TimeAllocation
		expected models.TimeAllocation
	}{
		{
			name:     "already balanced",
			input:    models.TimeAllocation{Ativar: 30, Aplicar: 50, Avaliar: 20},
			expected: models.TimeAllocation{Ativar: 30, Aplicar: 50, Avaliar: 20},
		},
		{
			name:     "scaled down",
			input:    models.TimeAllocation{Ativar: 40, Aplicar: 60, Avaliar: 40},
			expected: models.TimeAllocation{Ativar: 29, Aplicar: 42, Avaliar: 29},
		},
		{
			name:     "zero phase raised to one",
			input:    models.TimeAllocation{Ativar: 0, Aplicar: 0, Avaliar: 10},
			expected: models.TimeAllocation{Ativar: 1, Aplicar: 1, Avaliar: 98},
		},
		{
			name:     "all zero",
			input:    models.TimeAllocation{},
			expected: models.TimeAllocation{Ativar: 34, Aplicar: 33, Avaliar: 33},
		},
		{
			name:     "huge values do not overflow",
			input:    models.TimeAllocation{Ativar: 1 << 62, Aplicar: 1 << 62},
			expected: models.TimeAllocation{Ativar: 49, Aplicar: 50, Avaliar: 1},
		},
		{
			name:     "max int phases",
			input:    models.TimeAllocation{Ativar: math.MaxInt, Aplicar: math.MaxInt, Avaliar: math.MaxInt},
			expected: models.TimeAllocation{Ativar: 34, Aplicar: 33, Avaliar: 33},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Rebalance(tt.input)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, 100, got.Sum())
		})
	}
}

func clearStage(s *models.Strategies, stage models.Stage) {
	switch stage {
	case models.StageConectar:
		s.Conectar = nil
	case models.StageExplorar:
		s.Explorar = nil
	case models.StageExpandir:
		s.Expandir = nil
	case models.StageEfetivar:
		s.Efetivar = nil
	case models.StageEmplacar:
		s.Emplacar = nil
	case models.StageInteragir:
		s.Interagir = nil
	case models.StageAvaliar:
		s.Avaliar = nil
	}
}
