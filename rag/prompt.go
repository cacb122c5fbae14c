package rag

import (
	"bytes"
	"strings"
	"text/template"
)

// PromptTemplate is a named, versioned prompt template with variable
// substitution. Keeping prompts as small text/template values instead of
// hardcoded format strings means they are swappable without touching
// pipeline code.
type PromptTemplate struct {
	Name    string
	Version string
	tpl     *template.Template
}

// NewPromptTemplate parses body as a text/template under the given name.
func NewPromptTemplate(name, version, body string) (*PromptTemplate, error) {
	tpl, err := template.New(name).Parse(body)
	if err != nil {
		return nil, err
	}
	return &PromptTemplate{Name: name, Version: version, tpl: tpl}, nil
}

// MustPromptTemplate panics on a parse error; used only for the package's
// own built-in templates, never for externally supplied bodies.
func MustPromptTemplate(name, version, body string) *PromptTemplate {
	pt, err := NewPromptTemplate(name, version, body)
	if err != nil {
		panic(err)
	}
	return pt
}

// Render substitutes vars into the template body.
func (p *PromptTemplate) Render(vars map[string]any) (string, error) {
	var buf bytes.Buffer
	if err := p.tpl.Execute(&buf, vars); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var queryExpansionTemplate = MustPromptTemplate("query_expansion", "v1", strings.TrimSpace(`
Generate {{.Count}} alternative phrasings of the user's query that would
help retrieve relevant documents from a knowledge base. Keep each
paraphrase on its own line, no numbering, no extra commentary.

Query: {{.Query}}
`))

var hallucinationCheckTemplate = MustPromptTemplate("hallucination_check", "v1", strings.TrimSpace(`
Answer only YES or NO: is the following claim fully supported by the
provided context documents?

Claim: {{.Claim}}

Context:
{{.Context}}
`))

var refinementTemplate = MustPromptTemplate("refinement", "v1", strings.TrimSpace(`
당신은 크리에이터 온보딩 플랫폼의 친절하고 전문적인 어시스턴트입니다.
아래 답변을 마크다운 형식으로 다듬고, 친근하면서도 전문적인 어조를 유지하세요.
내용을 새로 만들지 말고 다듬기만 하세요.

답변:
{{.Answer}}
`))
