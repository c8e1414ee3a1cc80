package message

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"os"
)

//go:embed campaign.html
var defaultTemplate string

type Data struct {
	CampaignName string
	Subject      string
}

// Renderer produces the final HTML body for a campaign. Rendering is
// pure formatting; a failure here is fatal to the send step.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the template at templateFile, or the bundled
// default when templateFile is empty.
func NewRenderer(templateFile string) (*Renderer, error) {
	source := defaultTemplate
	if templateFile != "" {
		data, err := os.ReadFile(templateFile)
		if err != nil {
			return nil, fmt.Errorf("read message template %s: %w", templateFile, err)
		}
		source = string(data)
	}
	tmpl, err := template.New("campaign").Parse(source)
	if err != nil {
		return nil, fmt.Errorf("parse message template: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

func (r *Renderer) Render(data Data) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render message: %w", err)
	}
	return buf.String(), nil
}
