package policy

import "fmt"

// Principle is one named ethical criterion evaluated independently per
// operation. The set is closed: unknown names are a configuration error.
type Principle string

const (
	Transparency   Principle = "transparency"
	Fairness       Principle = "fairness"
	Privacy        Principle = "privacy"
	Accountability Principle = "accountability"
	Beneficence    Principle = "beneficence"
	NonMaleficence Principle = "non_maleficence"
	Autonomy       Principle = "autonomy"
	Justice        Principle = "justice"
)

// AllPrinciples is the full fixed set, in declaration order. This order is
// the default evaluation order.
var AllPrinciples = []Principle{
	Transparency,
	Fairness,
	Privacy,
	Accountability,
	Beneficence,
	NonMaleficence,
	Autonomy,
	Justice,
}

// Descriptions maps each principle to its human-readable meaning.
var Descriptions = map[Principle]string{
	Transparency:   "Operations must be clear, explainable, and well-documented",
	Fairness:       "Decisions must be unbiased and equitable across all groups",
	Privacy:        "Personal data must be protected and used with consent",
	Accountability: "Clear responsibility and audit trails for all actions",
	Beneficence:    "Actions should actively promote well-being",
	NonMaleficence: "Prevent harm and minimize negative impacts",
	Autonomy:       "Respect individual choice and self-determination",
	Justice:        "Fair distribution of benefits and burdens",
}

// Describe returns the description of a principle by name.
func Describe(name string) string {
	if d, ok := Descriptions[Principle(name)]; ok {
		return d
	}
	return "No description available"
}

// ConfigError reports an unknown principle name supplied at construction.
// Evaluation never sees unknown principles: the set is validated up front.
type ConfigError struct {
	Principle string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("policy: unknown principle %q", e.Principle)
}

// ParsePrinciples validates a list of principle names against the fixed set.
// An empty list selects all principles. Duplicates are dropped, order is
// preserved. Unknown names fail with *ConfigError rather than being ignored.
func ParsePrinciples(names []string) ([]Principle, error) {
	if len(names) == 0 {
		out := make([]Principle, len(AllPrinciples))
		copy(out, AllPrinciples)
		return out, nil
	}

	known := make(map[Principle]bool, len(AllPrinciples))
	for _, p := range AllPrinciples {
		known[p] = true
	}

	var out []Principle
	seen := make(map[Principle]bool, len(names))
	for _, name := range names {
		p := Principle(name)
		if !known[p] {
			return nil, &ConfigError{Principle: name}
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out, nil
}
