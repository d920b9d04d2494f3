package engine

import (
	"fmt"
	"regexp"

	"github.com/plenix/tikrana/internal/config"
)

// rule is one compiled replacement.
type rule struct {
	re          *regexp.Regexp
	replacement string
}

// compileRules compiles replacements in list order.
func compileRules(property string, reps config.Replacements) ([]rule, error) {
	rules := make([]rule, 0, len(reps))
	for _, r := range reps {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("%w for %q: %q: %v", ErrBadPattern, property, r.Pattern, err)
		}
		rules = append(rules, rule{re: re, replacement: r.Replacement})
	}
	return rules, nil
}

func applyRules(value string, rules []rule) string {
	for _, r := range rules {
		value = r.re.ReplaceAllString(value, r.replacement)
	}
	return value
}

// ApplyReplacements substitutes every match of each pattern, in list order,
// feeding each substitution the output of the previous one. Replacement
// strings may reference capture groups as $1 or ${name}.
func ApplyReplacements(value string, reps config.Replacements) (string, error) {
	rules, err := compileRules("", reps)
	if err != nil {
		return "", err
	}
	return applyRules(value, rules), nil
}
