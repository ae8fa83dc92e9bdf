package integration

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"text/template"

	"github.com/Conceptual-Machines/sfx-api/internal/models"
	"github.com/Conceptual-Machines/sfx-api/pkg/embedded"
)

var (
	nonLetter     = regexp.MustCompile(`[^a-zA-Z]`)
	nonIdentifier = regexp.MustCompile(`[^a-z0-9_]`)

	templates = template.Must(template.ParseFS(embedded.IntegrationTemplates, "templates/*.tmpl"))
)

type snippetData struct {
	AudioURL string
	Name     string
	UnityID  string
	GodotID  string
}

// Render returns the integration snippet for engine. ok is false when no
// engine was requested.
func Render(engine models.Engine, audioURL, assetName string) (code string, ok bool) {
	if engine == models.EngineNone || !engine.Valid() {
		return "", false
	}

	data := snippetData{
		AudioURL: audioURL,
		Name:     assetName,
		UnityID:  UnityIdentifier(assetName),
		GodotID:  GodotIdentifier(assetName),
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, string(engine)+".tmpl", data); err != nil {
		// Templates are embedded and checked by tests.
		panic(fmt.Sprintf("integration template %s: %v", engine, err))
	}
	return strings.TrimRight(buf.String(), "\n"), true
}

// UnityIdentifier strips everything but letters
func UnityIdentifier(name string) string {
	return nonLetter.ReplaceAllString(name, "")
}

// GodotIdentifier lower-cases name and maps non-identifier characters to '_'
func GodotIdentifier(name string) string {
	return nonIdentifier.ReplaceAllString(strings.ToLower(name), "_")
}
