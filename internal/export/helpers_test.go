package export

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/VictorTadashi/AnimaFlow/internal/models"
	"github.com/stretchr/testify/require"
)

// solidPNG returns a small PNG filled with c
func solidPNG(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func testImages(t *testing.T) map[string]models.BackgroundImage {
	t.Helper()
	return map[string]models.BackgroundImage{
		"HomeCapa.png": {
			Filename:    "HomeCapa.png",
			ContentType: "image/png",
			Data:        solidPNG(t, color.RGBA{R: 255, A: 255}),
		},
	}
}

const threeSlides = `<!DOCTYPE html><html><body>
<div class="slide-container" style="background-image: url('/assets/HomeCapa.png')">
  <h1>Marketing Digital</h1>
  <p>Roteiro de aula</p>
</div>
<div class="slide-container">
  <h1>Ativar</h1>
  <h2>Conectar</h2>
  <p>Discussão inicial</p>
</div>
<div class="slide-container">
  <h1>Encerramento</h1>
  <p>Obrigado!</p>
</div>
</body></html>`

func stringsReader(s string) *strings.Reader {
	return strings.NewReader(s)
}

func escapeAttr(s string) string {
	return strings.ReplaceAll(s, `"`, "&quot;")
}
