package catalog

import (
	"testing"

	"github.com/VictorTadashi/AnimaFlow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	require.NotNil(t, c)

	assert.Len(t, c.Durations, 4)
	assert.Len(t, c.ClassSizes, 4)
	assert.Equal(t, []string{"Baixa", "Média", "Alta"}, c.InteractivityLevels)
	assert.Len(t, c.BackgroundImages, 10)
	assert.Equal(t, 100, c.DefaultTimeAllocation.Sum())

	for _, stage := range models.Stages {
		assert.NotEmpty(t, c.Strategies[stage], "stage %s", stage)
	}

	phase, ok := c.Phase(models.PhaseAplicar)
	require.True(t, ok)
	assert.Equal(t, []models.Stage{models.StageExpandir, models.StageEfetivar, models.StageEmplacar}, phase.Stages)
}

func TestCatalog_Lookups(t *testing.T) {
	c := Default()

	assert.True(t, c.HasDuration("120 minutos"))
	assert.False(t, c.HasDuration("90 minutos"))
	assert.True(t, c.HasClassSize("Entre 50 e 100 alunos"))
	assert.False(t, c.HasClassSize("50 alunos"))
	assert.True(t, c.HasInteractivity("Média"))
	assert.False(t, c.HasInteractivity("media"))
	assert.True(t, c.HasStrategy(models.StageConectar, "Discussão Inicial"))
	assert.False(t, c.HasStrategy(models.StageExplorar, "Discussão Inicial"))
}

func TestParse(t *testing.T) {
	tests := []struct {
		name          string
		data          string
		expectedError bool
	}{
		{
			name:          "invalid yaml",
			data:          "durations: [",
			expectedError: true,
		},
		{
			name:          "missing stage strategies",
			data:          "durations: [\"60 minutos\"]\nstrategies:\n  conectar: [\"a\"]\n",
			expectedError: true,
		},
		{
			name:          "embedded catalog",
			data:          string(defaultCatalogYAML),
			expectedError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Parse([]byte(tt.data))
			if tt.expectedError {
				assert.Error(t, err)
				assert.Nil(t, c)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, c)
			}
		})
	}
}
