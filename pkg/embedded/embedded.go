package embedded

import (
	"embed"
)

// Embed prompt and snippet templates
//
//go:embed prompts/sfx_system_prompt.tmpl
var SfxSystemPromptTmpl string

//go:embed prompts/sfx_user_prompt.tmpl
var SfxUserPromptTmpl string

// IntegrationTemplates holds one <engine>.tmpl per supported game engine.
//
//go:embed templates/*.tmpl
var IntegrationTemplates embed.FS
