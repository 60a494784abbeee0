package engine

import (
	"embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed personas/*.yaml
var personaFiles embed.FS

// Persona is one role in the planning pipeline (product manager,
// engineer, pmo). Personas ship as embedded YAML so prompt changes are a
// config edit, not a code change.
type Persona struct {
	Name         string `yaml:"name"`
	Description  string `yaml:"description"`
	Instructions string `yaml:"instructions"`
}

// PersonaRegistry holds the loaded personas and composes the engine's
// system prompt from them.
type PersonaRegistry struct {
	personas map[string]*Persona
	mu       sync.RWMutex
}

// NewPersonaRegistry loads every embedded persona file.
func NewPersonaRegistry() (*PersonaRegistry, error) {
	r := &PersonaRegistry{personas: make(map[string]*Persona)}

	entries, err := personaFiles.ReadDir("personas")
	if err != nil {
		return nil, fmt.Errorf("read personas: %w", err)
	}

	for _, entry := range entries {
		data, err := personaFiles.ReadFile("personas/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", entry.Name(), err)
		}

		var persona Persona
		if err := yaml.Unmarshal(data, &persona); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", entry.Name(), err)
		}
		if persona.Name == "" {
			return nil, fmt.Errorf("persona %s has no name", entry.Name())
		}

		r.mu.Lock()
		r.personas[persona.Name] = &persona
		r.mu.Unlock()
	}

	if len(r.personas) == 0 {
		return nil, fmt.Errorf("no personas loaded")
	}

	return r, nil
}

// Get returns a persona by name.
func (r *PersonaRegistry) Get(name string) (*Persona, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	persona, ok := r.personas[name]
	if !ok {
		return nil, fmt.Errorf("persona %q not found", name)
	}
	return persona, nil
}

// Names returns the loaded persona names, sorted.
func (r *PersonaRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.personas))
	for name := range r.personas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SystemPrompt composes one system prompt from all personas, product
// manager first. The pipeline runs as a single model call with the roles
// folded into the prompt rather than separate hand-off agents.
func (r *PersonaRegistry) SystemPrompt() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ordered := []string{"product_manager", "engineer", "pmo"}
	var sb strings.Builder
	for _, name := range ordered {
		persona, ok := r.personas[name]
		if !ok {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(persona.Instructions)
	}
	return sb.String()
}
