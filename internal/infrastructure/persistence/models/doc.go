// Package models holds the GORM persistence models. Each model converts to
// and from its domain aggregate with ToDomain and FromDomain; no other
// package sees gorm tags.
package models
