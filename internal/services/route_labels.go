package services

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LabelRule names a route when any stop address contains one of its keywords.
type LabelRule struct {
	Label    string   `yaml:"label"`
	Keywords []string `yaml:"keywords"`
}

// Keywords match NYC sample deployments. Rule order decides precedence.
var DefaultLabelRules = []LabelRule{
	{Label: "Manhattan Route", Keywords: []string{"manhattan"}},
	{Label: "Brooklyn Route", Keywords: []string{"brooklyn"}},
	{Label: "Center City Route", Keywords: []string{"center", "downtown"}},
}

// RouteLabeler derives a display name for a route from its members' addresses.
type RouteLabeler struct {
	rules []LabelRule
}

func NewRouteLabeler(rules []LabelRule) *RouteLabeler {
	normalized := make([]LabelRule, 0, len(rules))
	for _, r := range rules {
		label := strings.TrimSpace(r.Label)
		if label == "" {
			continue
		}

		keywords := make([]string, 0, len(r.Keywords))
		for _, k := range r.Keywords {
			k = strings.ToLower(strings.TrimSpace(k))
			if k != "" {
				keywords = append(keywords, k)
			}
		}
		if len(keywords) == 0 {
			continue
		}
		normalized = append(normalized, LabelRule{Label: label, Keywords: keywords})
	}

	return &RouteLabeler{rules: normalized}
}

// LoadLabelRules reads label rules from a YAML file of the form:
//
//	- label: Queens Route
//	  keywords: [queens, astoria]
func LoadLabelRules(path string) ([]LabelRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load label rules: read %q: %w", path, err)
	}

	var rules []LabelRule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("load label rules: parse yaml: %w", err)
	}
	if len(rules) == 0 {
		return nil, errors.New("load label rules: file contains no rules")
	}

	return rules, nil
}

// Label returns the first rule whose keyword occurs in any address
// (case-insensitive), or "Route {n} Stops" when nothing matches.
func (l *RouteLabeler) Label(addresses []string) string {
	if len(addresses) == 0 {
		return "Empty Route"
	}

	lowered := make([]string, len(addresses))
	for i, a := range addresses {
		lowered[i] = strings.ToLower(a)
	}

	if l != nil {
		for _, rule := range l.rules {
			for _, a := range lowered {
				for _, k := range rule.Keywords {
					if strings.Contains(a, k) {
						return rule.Label
					}
				}
			}
		}
	}

	return fmt.Sprintf("Route %d Stops", len(addresses))
}
