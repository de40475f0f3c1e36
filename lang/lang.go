// Package lang registers the built-in languages with cst. Import it for its
// side effects.
package lang
