// Package roster loads the agent time-context file and resolves agents by
// name for the interview flow.
package roster

import (
	"encoding/json"
	"log/slog"
	"os"
	"strings"

	"quartz/app/config"

	"github.com/elliotchance/pie/v2"
	"github.com/samber/do"
	"github.com/samber/oops"
)

type Service struct {
	agents []Agent
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	agents, err := loadFile(cfg.Data.AgentsFile)
	if err != nil {
		return nil, err
	}

	slog.Info("Agent roster loaded",
		"path", cfg.Data.AgentsFile,
		"agents", len(agents))

	return &Service{agents: agents}, nil
}

func loadFile(path string) ([]Agent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Warn("Agent roster file is missing, starting with an empty roster", "path", path)
			return nil, nil
		}
		return nil, oops.Errorf("failed to read roster file: %w", err)
	}

	var file rosterFile
	if err = json.Unmarshal(data, &file); err != nil {
		return nil, oops.Errorf("failed to parse roster file: %w", err)
	}

	return file.Agents, nil
}

// List returns all known agents.
func (s *Service) List() []Agent {
	return s.agents
}

// Find resolves an agent by case-insensitive name.
func (s *Service) Find(name string) (*Agent, bool) {
	idx := pie.FindFirstUsing(s.agents, func(a Agent) bool {
		return strings.EqualFold(a.Name, name)
	})
	if idx < 0 {
		return nil, false
	}

	return &s.agents[idx], true
}
