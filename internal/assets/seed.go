package assets

import (
	"encoding/json"
	"fmt"

	"github.com/lanarena/relay/internal/entity"
)

// SeedDefaultHeroes writes the built-in hero roster to heroes/ for any
// hero id not already present. Existing files are never overwritten.
func SeedDefaultHeroes(s *Store) error {
	existing, err := s.List("heroes")
	if err != nil {
		return err
	}
	present := make(map[string]bool, len(existing))
	for _, n := range existing {
		present[n] = true
	}

	for id, hero := range entity.DefaultHeroes() {
		if present[id] {
			continue
		}
		body, err := json.Marshal(hero)
		if err != nil {
			return fmt.Errorf("marshal default hero %s: %w", id, err)
		}
		if err := s.Put("heroes", id, body); err != nil {
			return fmt.Errorf("seed default hero %s: %w", id, err)
		}
	}
	return nil
}
