package models

import "strings"

// BusinessCard is a singleton (row id 1, upsert semantics) printed in the
// offer header.
type BusinessCard struct {
	ID       uint `gorm:"primaryKey"`
	Company  string
	FullName string
	Phone    string
	Email    string
}

// BusinessCardID is the fixed row id of the singleton record.
const BusinessCardID uint = 1

// ContactLine builds the header contact line, omitting missing fields:
// "Jan Kowalski | Tel: 600 100 200 | E-mail: jan@example.pl".
func (c *BusinessCard) ContactLine() string {
	var parts []string
	if c.FullName != "" {
		parts = append(parts, c.FullName)
	}
	if c.Phone != "" {
		parts = append(parts, "Tel: "+c.Phone)
	}
	if c.Email != "" {
		parts = append(parts, "E-mail: "+c.Email)
	}
	return strings.Join(parts, " | ")
}
