package assistant

import "strings"

// Topic is a canned answer for one keyword within a category.
type Topic struct {
	Name   string
	Answer string
}

// Category groups topics. Order matters: classification scans categories and
// topics in slice order and stops at the first hit.
type Category struct {
	Name   string
	Topics []Topic
}

// PromptTable is the read-only lookup consulted before the model.
type PromptTable []Category

// DefaultPrompts returns a fresh copy of the built-in prompt table.
func DefaultPrompts() PromptTable {
	return PromptTable{
		{
			Name: "math",
			Topics: []Topic{
				{"algebra", "Algebra is a branch of mathematics dealing with symbols and the rules for manipulating those symbols."},
				{"geometry", "Geometry is a branch of mathematics concerned with questions of shape, size, and the properties of space."},
				{"calculus", "Calculus is the mathematical study of continuous change."},
			},
		},
		{
			Name: "science",
			Topics: []Topic{
				{"physics", "Physics is the natural science that studies matter, its motion and behavior through space and time."},
				{"chemistry", "Chemistry is the scientific study of the properties and behavior of matter."},
				{"biology", "Biology is the natural science that studies life and living organisms."},
			},
		},
		{
			Name: "history",
			Topics: []Topic{
				{"world", "World history encompasses the study of significant events throughout human history across all regions."},
				{"american", "American history covers the major events and developments in what is now the United States."},
			},
		},
		{
			Name: "literature",
			Topics: []Topic{
				{"english", "English literature includes written works in the English language from various countries."},
				{"american", "American literature refers to written or literary work produced in the United States."},
			},
		},
	}
}

// Lookup returns the first category/topic pair whose names both occur in
// input. Matching is plain substring containment on already-lowercased input.
func (t PromptTable) Lookup(input string) (Category, Topic, bool) {
	for _, category := range t {
		if !strings.Contains(input, category.Name) {
			continue
		}
		for _, topic := range category.Topics {
			if strings.Contains(input, topic.Name) {
				return category, topic, true
			}
		}
	}
	return Category{}, Topic{}, false
}
