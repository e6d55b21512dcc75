package scenario

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/opsgate/opsgate/internal/impact"
	"github.com/opsgate/opsgate/internal/model"
	"github.com/opsgate/opsgate/internal/oversight"
	"github.com/opsgate/opsgate/internal/policy"
)

// Run evaluates all cases in a scenario through a fresh oversight pipeline.
// Cases are independent: decisions made by earlier cases never influence
// later ones.
func Run(s *Scenario) (*RunResult, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	evaluator, err := policy.NewEvaluator(s.Principles, logger)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", s.Name, err)
	}
	composer := oversight.NewComposer(evaluator, impact.NewAssessor(), nil, logger)

	result := &RunResult{
		Name:  s.Name,
		Total: len(s.Cases),
	}

	for i, c := range s.Cases {
		decision, err := composer.Decide(context.Background(), c.Operation, c.Data, model.Context(c.Context))
		if err != nil {
			return nil, fmt.Errorf("scenario %q case %d: %w", s.Name, i+1, err)
		}

		actual := "denied"
		if decision.Approved {
			actual = "approved"
		}
		expected := strings.ToLower(c.Expect)

		cr := CaseResult{
			Index:     i + 1,
			Operation: c.Operation,
			Expected:  expected,
			Actual:    actual,
			RiskLevel: string(decision.Impact.RiskLevel),
			Guidance:  decision.Guidance,
		}

		if actual == expected {
			cr.Passed = true
			result.Passed++
		} else {
			result.Failed++
		}

		result.Cases = append(result.Cases, cr)
	}

	return result, nil
}

// LoadAndRun loads a scenario YAML file and runs it.
func LoadAndRun(path string) (*RunResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}

	result, err := Run(&s)
	if err != nil {
		return nil, err
	}
	result.File = path

	return result, nil
}
