// Package cond provides first-match conditional dispatch: an ordered list of
// (condition, result) clauses evaluated left to right, returning the result
// paired with the first condition that holds.
//
//	text := cond.Dispatch(
//		cond.When(func() bool { return a < b }, func() string { return "less" }),
//		cond.When(func() bool { return a > b }, func() string { return "greater" }),
//		cond.Default(func() string { return "equal" }),
//	)
//
// Conditions and results are thunks so that nothing past the first matching
// clause is ever evaluated. The condgen command (cmd/condgen) rewrites these
// call sites into plain if-ladders before compilation, removing the closures
// entirely; the package is also usable as-is without generation, with the
// same ordering and short-circuit semantics.
//
// # Caveat
//
// Every clause needs a trailing comma in a multi-line call, including clauses
// whose result is a block-shaped func literal. Unlike a switch statement,
// there is no comma-free form for block arms.
package cond

// Clause is a single condition/result pair considered by Dispatch.
// Clause order is significant: first match wins.
type Clause[T any] struct {
	cond      func() bool
	result    func() T
	isDefault bool
}

// When builds a conditional clause. The condition is evaluated at most once,
// and the result only if the condition is the first to hold.
func When[T any](cond func() bool, result func() T) Clause[T] {
	return Clause[T]{cond: cond, result: result}
}

// Default builds the fallback clause, chosen when no condition holds.
// It must be the last clause of a Dispatch call; condgen rejects a Default
// in any other position.
func Default[T any](result func() T) Clause[T] {
	return Clause[T]{result: result, isDefault: true}
}

// Dispatch evaluates clause conditions strictly in argument order and returns
// the result of the first clause whose condition holds. Conditions and results
// after the match are never evaluated. If no condition holds, Dispatch returns
// the Default clause's result, or the zero value of T when no Default was
// given. condgen requires a Default on every value-producing Dispatch; the
// zero-value fallback exists only for the un-generated form.
//
// Clause constructors are ordinary calls, so their arguments are built
// eagerly here even though the thunks run lazily. Keep constructor arguments
// to func literals or stable values: an expression like When(mkCond(), ...)
// runs mkCond() for every clause in this runtime form, but only when its
// clause is reached once condgen has expanded the site.
func Dispatch[T any](clauses ...Clause[T]) T {
	var def func() T
	for _, c := range clauses {
		if c.isDefault {
			def = c.result
			continue
		}
		if c.cond() {
			return c.result()
		}
	}
	if def != nil {
		return def()
	}
	var zero T
	return zero
}
