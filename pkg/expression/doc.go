// Package expression implements the safe expression sublanguage used by the
// Filter and Formula nodes: a hand-written lexer and recursive-descent
// parser produce an AST, which is evaluated column-wise against a Table.
// No host-language eval/exec is ever invoked.
//
// # Pipeline
//
// ParseExpression runs the full pipeline: Normalize rewrites surface syntax
// (&&, ||, !) to their word forms once, checkSafety runs the substring
// blocklist as defense-in-depth, then the lexer/parser produce an AST.
// EvaluateFilter and EvaluateFormula take it from there, walking the AST
// once per Table to produce a boolean mask or a value column respectively.
//
// # Grammar
//
//	expr   := or
//	or     := and ('or' and)*
//	and    := not ('and' not)*
//	not    := 'not' not | cmp
//	cmp    := add ((== | != | < | <= | > | >= | in | 'not in') add)?
//	add    := mul (('+' | '-') mul)*
//	mul    := unary (('*' | '/' | '//' | '%') unary)*
//	unary  := ('+' | '-') unary | pow
//	pow    := atom ('**' unary)?
//	atom   := number | string | True | False | None
//	        | ident | ident '(' [args] ')' | '[' [args] ']' | '(' expr ')'
//
// # NULL propagation
//
// Arithmetic, comparisons, and the string/math built-ins are NULL
// preserving: any NULL operand yields a NULL result, except contains() which
// returns false on a NULL operand per its own documented semantics.
package expression
