package prompt

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/Conceptual-Machines/sfx-api/internal/models"
	"github.com/Conceptual-Machines/sfx-api/pkg/embedded"
)

var funcs = template.FuncMap{"join": strings.Join}

// Loader renders the embedded prompt templates
type Loader struct {
	system *template.Template
	user   *template.Template
}

func NewPromptLoader() (*Loader, error) {
	system, err := template.New("system").Funcs(funcs).Parse(embedded.SfxSystemPromptTmpl)
	if err != nil {
		return nil, fmt.Errorf("failed to parse system prompt template: %w", err)
	}
	user, err := template.New("user").Parse(embedded.SfxUserPromptTmpl)
	if err != nil {
		return nil, fmt.Errorf("failed to parse user prompt template: %w", err)
	}
	return &Loader{system: system, user: user}, nil
}

// GetSystemPrompt renders the fixed SFX analysis prompt with the full
// mood, genre, theme and energy vocabularies.
func (l *Loader) GetSystemPrompt() (string, error) {
	data := struct {
		Moods          []string
		Genres         []string
		Themes         []string
		EnergyProfiles []string
	}{
		Moods:          models.Strings(models.Moods),
		Genres:         models.Strings(models.Genres),
		Themes:         models.Strings(models.Themes),
		EnergyProfiles: models.Strings(models.EnergyProfiles),
	}
	return render(l.system, data)
}

// GetUserPrompt renders the per-request prompt. Absent hints leave blank lines.
func (l *Loader) GetUserPrompt(description string, category models.Category, intensity models.Intensity) (string, error) {
	data := struct {
		Description string
		Category    models.Category
		Intensity   models.Intensity
	}{description, category, intensity}
	return render(l.user, data)
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s prompt: %w", t.Name(), err)
	}
	return strings.TrimSpace(buf.String()), nil
}
