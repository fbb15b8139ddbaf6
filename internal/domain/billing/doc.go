// Package billing holds plan tiers, their resource ceilings and the usage
// classification used to warn about and block creates past a plan's limit.
package billing
