// Package validation provides struct-tag and fluent validation helpers
// built on go-playground/validator, producing structured AppErrors.
package validation
