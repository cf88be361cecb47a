package cleanup

import (
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Entry is one directory entry a rule is evaluated against.
type Entry struct {
	Name     string
	Path     string
	Ext      string
	Size     int64
	AgeHours float64
	IsDir    bool
	Modified time.Time
}

// Rule is a compiled boolean expression over Entry fields, e.g.
// "age_hours > 48 and not is_dir" or "ext == '.part' or size > 2000000000".
type Rule struct {
	expression string
	program    *vm.Program
}

// CompileRule compiles a rule expression. Unknown identifiers are rejected
// at compile time so a typo never silently matches nothing.
func CompileRule(expression string) (*Rule, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &RuleError{Expression: expression, Reason: "empty expression"}
	}

	program, err := expr.Compile(expression,
		expr.Env(ruleEnv(Entry{})),
		expr.AsBool(), // Ensure boolean result
	)
	if err != nil {
		return nil, &RuleError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Err:        err,
		}
	}

	return &Rule{expression: expression, program: program}, nil
}

// Match evaluates the rule against a directory entry.
func (r *Rule) Match(entry Entry) (bool, error) {
	result, err := expr.Run(r.program, ruleEnv(entry))
	if err != nil {
		return false, &RuleError{
			Expression: r.expression,
			Reason:     "failed to evaluate expression",
			Err:        err,
		}
	}

	// Result is guaranteed to be bool due to AsBool() during compilation
	return result.(bool), nil
}

// Expression returns the original expression.
func (r *Rule) Expression() string {
	return r.expression
}

func ruleEnv(entry Entry) map[string]any {
	return map[string]any{
		"name":      entry.Name,
		"path":      entry.Path,
		"ext":       entry.Ext,
		"size":      entry.Size,
		"age_hours": entry.AgeHours,
		"is_dir":    entry.IsDir,
		"modified":  entry.Modified,
	}
}
