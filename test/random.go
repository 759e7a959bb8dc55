package test

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"sync/atomic"
)

var globalSeed atomic.Int64

const letters = "abcdefghijklmnopqrstuvwxyz0123456789"

// RandomRootNames returns a slice of n random unique root names.
func RandomRootNames(n int) []string {
	rng := rand.New(rand.NewSource(globalSeed.Add(1)))
	names := make([]string, n)
	nameSet := make(map[string]struct{})
	for i := 0; i < n; i++ {
		b := make([]byte, 6+rng.Intn(10))
		for j := range b {
			b[j] = letters[rng.Intn(len(letters))]
		}
		name := string(b)
		if _, ok := nameSet[name]; ok {
			i--
			continue
		}
		nameSet[name] = struct{}{}
		names[i] = name
	}
	return names
}

// SectionsJSON returns an API response body: a list holding a "header"
// section, a "main" section with the given fields, and a "footer" section.
func SectionsJSON(logo, description, background string) string {
	sections := []map[string]any{
		{"name": "header", "logoUrl": "header-logo"},
		{
			"name":                            "main",
			"logoUrl":                         logo,
			"sectionMain1Description":         description,
			"sectionMain1Background2ImageUrl": background,
			"lastUpdated":                     "2024-02-29T10:00:00Z",
		},
		{"name": "footer"},
	}
	b, err := json.Marshal(sections)
	if err != nil {
		panic(err)
	}
	return string(b)
}

// RandomSectionsJSON returns SectionsJSON with field values derived from
// rootName.
func RandomSectionsJSON(rootName string) string {
	return SectionsJSON(
		fmt.Sprintf("https://cdn.example.com/%s/logo.png", rootName),
		fmt.Sprintf("About %s", rootName),
		fmt.Sprintf("https://cdn.example.com/%s/bg.jpg", rootName),
	)
}
