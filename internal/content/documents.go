package content

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// BibleDocument is one translation's text: books of chapters of verses.
type BibleDocument struct {
	Translation Translation `json:"translation" validate:"required"`
	Books       []Book      `json:"books" validate:"required,min=1,dive"`
}

type Translation struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name" validate:"required"`
}

type Book struct {
	ID       string     `json:"id" validate:"required"`
	Name     string     `json:"name" validate:"required"`
	Chapters [][]string `json:"chapters" validate:"required,min=1"`
}

// CrossRefDocument maps a verse key ("Gen 1:1") to related verse keys.
type CrossRefDocument map[string][]string

// TheologyDocument is a set of commentary entries.
type TheologyDocument struct {
	Entries []TheologyEntry `json:"entries" validate:"required,min=1,dive"`
}

type TheologyEntry struct {
	ID    string   `json:"id" validate:"required"`
	Title string   `json:"title" validate:"required"`
	Body  string   `json:"body" validate:"required"`
	Refs  []string `json:"refs"`
}

func validateBible(v *validator.Validate, doc *BibleDocument) error {
	if err := v.Struct(doc); err != nil {
		return err
	}
	for _, book := range doc.Books {
		for i, chapter := range book.Chapters {
			if len(chapter) == 0 {
				return fmt.Errorf("book %s: chapter %d has no verses", book.ID, i+1)
			}
			for j, verse := range chapter {
				if strings.TrimSpace(verse) == "" {
					return fmt.Errorf("book %s: empty verse %d:%d", book.ID, i+1, j+1)
				}
			}
		}
	}
	return nil
}

func validateCrossRefs(doc CrossRefDocument) error {
	if len(doc) == 0 {
		return fmt.Errorf("no cross-reference entries")
	}
	for key, refs := range doc {
		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("empty verse key")
		}
		if !strings.Contains(key, ":") {
			return fmt.Errorf("verse key %q is not in 'Book C:V' form", key)
		}
		if len(refs) == 0 {
			return fmt.Errorf("verse key %q has no references", key)
		}
		for _, ref := range refs {
			if strings.TrimSpace(ref) == "" {
				return fmt.Errorf("verse key %q has an empty reference", key)
			}
		}
	}
	return nil
}

func validateTheology(v *validator.Validate, doc *TheologyDocument) error {
	if err := v.Struct(doc); err != nil {
		return err
	}
	seen := map[string]bool{}
	for _, entry := range doc.Entries {
		if seen[entry.ID] {
			return fmt.Errorf("duplicate entry id %q", entry.ID)
		}
		seen[entry.ID] = true
	}
	return nil
}
