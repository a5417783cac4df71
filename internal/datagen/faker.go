//-------------------------------------------------------------------------
//
// FlexiMart Data Pipeline
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package datagen generates deliberately messy raw extracts for demos and
// tests.
package datagen

import (
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

// Faker provides fake data generation using gofakeit.
type Faker struct {
	faker *gofakeit.Faker
}

// NewFaker creates a new Faker with a random seed.
func NewFaker() *Faker {
	return &Faker{
		faker: gofakeit.New(uint64(time.Now().UnixNano())),
	}
}

// NewFakerWithSeed creates a new Faker with a specific seed for reproducibility.
func NewFakerWithSeed(seed uint64) *Faker {
	return &Faker{
		faker: gofakeit.New(seed),
	}
}

// FirstName generates a random first name.
func (f *Faker) FirstName() string {
	return f.faker.FirstName()
}

// LastName generates a random last name.
func (f *Faker) LastName() string {
	return f.faker.LastName()
}

// Email builds an address from a person's names on a random mail domain.
func (f *Faker) Email(first, last string) string {
	local := emailLocal.Replace(strings.ToLower(first + "." + last))
	return local + "@" + Choose(f, mailDomains)
}

var (
	emailLocal  = strings.NewReplacer(" ", "", "'", "", "-", "")
	mailDomains = []string{"gmail.com", "yahoo.com", "outlook.com", "fleximart.in", "rediffmail.com"}
)

// MobileNumber generates a 10-digit national mobile number.
func (f *Faker) MobileNumber() string {
	return fmt.Sprintf("%d%s", f.Int(6, 9), f.faker.DigitN(9))
}

// City generates a random city name.
func (f *Faker) City() string {
	return Choose(f, cities)
}

var cities = []string{
	"Mumbai", "Delhi", "Bangalore", "Chennai", "Hyderabad",
	"Pune", "Kolkata", "Ahmedabad", "Jaipur", "Lucknow", "New Delhi",
}

// ProductName generates a random product name.
func (f *Faker) ProductName() string {
	return f.faker.ProductName()
}

// ProductCategory generates a random product category.
func (f *Faker) ProductCategory() string {
	return f.faker.ProductCategory()
}

// Price generates a random price between min and max.
func (f *Faker) Price(min, max float64) float64 {
	return f.faker.Price(min, max)
}

// Date generates a random date within a range.
func (f *Faker) Date(start, end time.Time) time.Time {
	return f.faker.DateRange(start, end)
}

// Int generates a random integer between min and max (inclusive).
func (f *Faker) Int(min, max int) int {
	return f.faker.IntRange(min, max)
}

// Float64 generates a random float64 between min and max.
func (f *Faker) Float64(min, max float64) float64 {
	return f.faker.Float64Range(min, max)
}

// Chance reports true with probability p. Chance(0) is always false and
// Chance(1) always true.
func (f *Faker) Chance(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return f.Float64(0, 1) < p
}

// Choose returns a random element from the given slice.
func Choose[T any](f *Faker, items []T) T {
	if len(items) == 0 {
		var zero T
		return zero
	}
	return items[f.Int(0, len(items)-1)]
}

// ChooseWeighted returns a random element based on weights.
func ChooseWeighted[T any](f *Faker, items []T, weights []int) T {
	if len(items) == 0 || len(weights) == 0 {
		var zero T
		return zero
	}

	totalWeight := 0
	for _, w := range weights {
		totalWeight += w
	}

	r := f.Int(1, totalWeight)
	cumulative := 0
	for i, w := range weights {
		cumulative += w
		if r <= cumulative {
			return items[i]
		}
	}

	return items[len(items)-1]
}
