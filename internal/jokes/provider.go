package jokes

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed jokes.json
var embeddedJokes []byte

type Joke struct {
	ID   string `json:"id"`
	Joke string `json:"joke"`
}

// Provider serves a fixed list loaded once at construction.
type Provider struct {
	jokes []Joke
}

func NewProvider() (*Provider, error) {
	return NewProviderFromJSON(embeddedJokes)
}

func NewProviderFromJSON(data []byte) (*Provider, error) {
	var list []Joke
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to decode jokes: %w", err)
	}
	return &Provider{jokes: list}, nil
}

// List returns a copy so callers cannot mutate the shared list.
func (p *Provider) List() []Joke {
	out := make([]Joke, len(p.jokes))
	copy(out, p.jokes)
	return out
}
