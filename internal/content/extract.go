// Package content finds the HTML document embedded in an assistant reply
package content

import (
	"html"
	"regexp"
	"strings"
)

// A matcher returns the HTML it recognises in a reply and whether it matched.
// Matchers are tried in order and the first match wins, so the patterns never compete.
type matcher struct {
	name  string
	match func(reply string) (string, bool)
}

var (
	// fencedBlockPattern matches a markdown block opened by ```html and a newline.
	// The newline before the closing fence belongs to the fence, not to the content.
	fencedBlockPattern = regexp.MustCompile("```html\\n([\\s\\S]*?)\\n?```")

	// doctypeSpanPattern matches from the first doctype to the last closing html tag
	doctypeSpanPattern = regexp.MustCompile(`(?i)<!DOCTYPE html>[\s\S]*</html>`)

	// documentPattern matches each doctype document lazily, for removal from chat text
	documentPattern = regexp.MustCompile(`(?i)<!DOCTYPE html>[\s\S]*?</html>`)

	// chatFencePattern matches fenced blocks whose closing fence sits on its own line
	chatFencePattern = regexp.MustCompile("```html\\n[\\s\\S]*?\\n```")

	blankLinesPattern = regexp.MustCompile(`\n\s*\n\s*\n`)
)

var matchers = []matcher{
	{name: "fenced-block", match: matchFencedBlocks},
	{name: "doctype-span", match: matchDoctypeSpan},
}

// DefaultChatMessage replaces a reply that contained nothing but HTML
const DefaultChatMessage = "Roteiro de aula gerado com sucesso! Você pode visualizar o resultado no painel à direita."

// ExtractHTML returns the HTML document carried by an assistant reply.
//
// Fenced ```html blocks win and are joined with a newline in order of appearance.
// Otherwise the doctype-to-closing-html span is returned verbatim.
// When neither is present a placeholder document embedding the escaped reply is built.
// The function is pure: the same reply always yields the same document.
func ExtractHTML(reply string) string {
	doc, _ := Extract(reply)
	return doc
}

// Extract is ExtractHTML that also names the matcher that produced the result.
// The name is "placeholder" when the fallback document was synthesised.
func Extract(reply string) (string, string) {
	for _, m := range matchers {
		if doc, ok := m.match(reply); ok {
			return doc, m.name
		}
	}
	return placeholderDocument(reply), "placeholder"
}

func matchFencedBlocks(reply string) (string, bool) {
	blocks := fencedBlockPattern.FindAllStringSubmatch(reply, -1)
	if len(blocks) == 0 {
		return "", false
	}

	parts := make([]string, 0, len(blocks))
	for _, block := range blocks {
		parts = append(parts, block[1])
	}
	return strings.Join(parts, "\n"), true
}

func matchDoctypeSpan(reply string) (string, bool) {
	span := doctypeSpanPattern.FindString(reply)
	if span == "" {
		return "", false
	}
	return span, true
}

// CleanChatMessage removes embedded documents from a reply so it can be shown as chat text
func CleanChatMessage(reply string) string {
	cleaned := chatFencePattern.ReplaceAllString(reply, "")
	cleaned = documentPattern.ReplaceAllString(cleaned, "")
	cleaned = blankLinesPattern.ReplaceAllString(cleaned, "\n\n")

	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return DefaultChatMessage
	}
	return cleaned
}

func placeholderDocument(reply string) string {
	body := strings.ReplaceAll(html.EscapeString(reply), "\n", "<br>")
	return placeholderHead + body + placeholderTail
}

const placeholderHead = `<!DOCTYPE html>
<html lang="pt-BR">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Roteiro de Aula</title>
    <style>
        body {
            font-family: 'Arial', sans-serif;
            line-height: 1.6;
            max-width: 1200px;
            margin: 0 auto;
            padding: 2rem;
            background: #f8f9fa;
        }
        .container {
            background: white;
            padding: 2rem;
            border-radius: 10px;
            box-shadow: 0 2px 10px rgba(0,0,0,0.1);
        }
        h1, h2, h3 {
            color: #333;
            margin-bottom: 1rem;
        }
        .error-notice {
            background: #fff3cd;
            border: 1px solid #ffeaa7;
            color: #856404;
            padding: 1rem;
            border-radius: 5px;
            margin-bottom: 1rem;
        }
    </style>
</head>
<body>
    <div class="container">
        <div class="error-notice">
            <h3>Conteúdo Parcial</h3>
            <p>O HTML completo não foi encontrado na resposta. Exibindo conteúdo disponível:</p>
        </div>
        <h1>Roteiro de Aula</h1>
        <div class="content">
            `

const placeholderTail = `
        </div>
    </div>
</body>
</html>`
