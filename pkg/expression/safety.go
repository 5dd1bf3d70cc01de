package expression

import (
	"regexp"
	"strings"
)

// forbiddenPatterns is a pre-parse substring/regex blocklist kept as
// defense-in-depth, not as the primary safety barrier — the primary
// barrier is that the evaluator never hands user text to a host-language
// eval/exec, because there is no such call in this engine at all.
var forbiddenPatterns = []*regexp.Regexp{
	regexp.MustCompile(`__[A-Za-z0-9_]+__`),               // dunder identifiers, e.g. __import__
	regexp.MustCompile(`(?i)\bexec\b`),
	regexp.MustCompile(`(?i)\beval\b`),
	regexp.MustCompile(`(?i)\bcompile\b`),
	regexp.MustCompile(`(?i)\bopen\b`),
	regexp.MustCompile(`(?i)\bglobals\b`),
	regexp.MustCompile(`(?i)\blocals\b`),
	regexp.MustCompile(`(?i)\bgetattr\b`),
	regexp.MustCompile(`(?i)\bsetattr\b`),
	regexp.MustCompile(`(?i)\bdelattr\b`),
	regexp.MustCompile(`(?i)\blambda\b`),
	regexp.MustCompile(`(?i)\b__builtins__\b`),
	regexp.MustCompile(`(?i)\bimport\b`),
	regexp.MustCompile(`(?i)\bos\.\w+`),
	regexp.MustCompile(`(?i)\bsys\.\w+`),
	regexp.MustCompile(`(?i)\bsubprocess\w*`),
}

// checkSafety rejects expr if it contains any forbidden construct. It runs
// before the lexer ever sees the text.
func checkSafety(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return newError(expr, ErrEmptyExpression, "Expression cannot be empty")
	}
	for _, pattern := range forbiddenPatterns {
		if pattern.MatchString(expr) {
			return newError(expr, ErrUnsafeExpression, "expression contains a forbidden construct (%s)", pattern.String())
		}
	}
	return nil
}

var (
	reAndAnd = regexp.MustCompile(`&&`)
	reOrOr   = regexp.MustCompile(`\|\|`)
	reSpaces = regexp.MustCompile(`\s+`)
)

// Normalize applies the surface-syntax rewrites once, at the top of
// evaluation: && -> and, || -> or, ! (not followed by =) -> not, then
// collapses whitespace.
func Normalize(expr string) string {
	out := reAndAnd.ReplaceAllString(expr, " and ")
	out = reOrOr.ReplaceAllString(out, " or ")
	var b strings.Builder
	for i := 0; i < len(out); i++ {
		if out[i] == '!' && (i+1 == len(out) || out[i+1] != '=') {
			b.WriteString(" not ")
			continue
		}
		b.WriteByte(out[i])
	}
	out = reSpaces.ReplaceAllString(b.String(), " ")
	return strings.TrimSpace(out)
}
