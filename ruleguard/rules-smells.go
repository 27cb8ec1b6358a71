// Package gorules holds go-ruleguard lint rules for this module.
// Run with: golangci-lint (gocritic ruleguard checker) -rules ruleguard/rules-smells.go
package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

func smells(m dsl.Matcher) {
	// Two guards that return the same value can be merged with ||.
	m.Match(`if $c1 { return $ret }; if $c2 { return $ret }`).
		Report(`two consecutive guards return the same value; consider merging conditions with ||`).
		Suggest(`if $c1 || $c2 { return $ret }`)

	m.Match(`if $c1 { continue }; if $c2 { continue }`).
		Report(`two consecutive continues; consider merging conditions with ||`).
		Suggest(`if $c1 || $c2 { continue }`)

	m.Match(`for $*_ { for $*_ { $*_ } }`).
		Report(`nested for-loop; consider extracting inner loop logic`)
}

func errorsAndLogging(m dsl.Matcher) {
	m.Match(`errors.New(fmt.Sprintf($*args))`).
		Report(`use fmt.Errorf instead of errors.New(fmt.Sprintf(...))`).
		Suggest(`fmt.Errorf($args)`)

	// Library packages log through slog so LOG_FORMAT=json stays parseable.
	m.Match(`fmt.Println($*_)`, `fmt.Printf($*_)`, `log.Printf($*_)`, `log.Println($*_)`).
		Where(m.File().PkgPath.Matches(`/internal/`)).
		Report(`use log/slog instead of printing from internal packages`)
}

func providerCalls(m dsl.Matcher) {
	// Outbound provider calls must be bounded by the 15s client timeout.
	m.Match(`http.DefaultClient`, `http.Get($*_)`, `http.Post($*_)`).
		Where(m.File().PkgPath.Matches(`/internal/infra/llm`) && !m.File().Name.Matches(`_test\.go$`)).
		Report(`use the provider's configured *http.Client, which carries the request timeout`)

	m.Match(`context.Background()`).
		Where(m.File().PkgPath.Matches(`/internal/(domain|infra/llm)`) && !m.File().Name.Matches(`_test\.go$`)).
		Report(`propagate the caller's context instead of context.Background()`)
}
