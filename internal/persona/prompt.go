// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package persona

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/pdiddy/advisor-engine/pkg/types"
)

// systemPreamble is prepended to every persona prompt.
const systemPreamble = "Be concise, rigorous, evidence-driven. Use citation indices when applicable."

// answerPromptTmpl frames a sub-question for one persona. Evidence is
// numbered [1]..[n] so the reply can cite by index.
const answerPromptTmpl = `You are {{.Name}}, an expert in {{.Specialty}}.
{{.Preamble}}

{{if .Evidence -}}
Evidence:
{{range $i, $e := .Evidence -}}
[{{inc $i}}] {{$e.Text}}
{{end}}
{{- else -}}
No evidence was retrieved for this question. Answer from general knowledge and say so.
{{end}}
Question: {{.Question}}

Answer in two or three sentences, citing evidence as [n] where it supports a claim.`

var answerPrompt = template.Must(template.New("answer").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(answerPromptTmpl))

type promptData struct {
	Name      string
	Specialty string
	Preamble  string
	Question  string
	Evidence  []types.EvidenceSnippet
}

// buildPrompt renders the completion prompt for p answering question with
// the given evidence.
func buildPrompt(p Persona, question string, evidence []types.EvidenceSnippet) (string, error) {
	var buf bytes.Buffer
	err := answerPrompt.Execute(&buf, promptData{
		Name:      p.Name,
		Specialty: p.Specialty,
		Preamble:  systemPreamble,
		Question:  question,
		Evidence:  evidence,
	})
	if err != nil {
		return "", fmt.Errorf("rendering answer prompt: %w", err)
	}
	return buf.String(), nil
}
