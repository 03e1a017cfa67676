package catalog

import (
	"context"
	"fmt"
	"log"

	"github.com/snippet-prep/backend/internal/models"
)

// SeedIfEmpty loads the default catalog on a fresh database so the app
// is usable before any content import has run.
func (s *Store) SeedIfEmpty(ctx context.Context) error {
	count, err := s.CountUnits(ctx)
	if err != nil {
		return fmt.Errorf("count units: %w", err)
	}
	if count > 0 {
		return nil
	}

	units, items, err := s.ImportUnits(ctx, DefaultUnits())
	if err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	log.Printf("Seeded catalog: %d units, %d items", units, items)
	return nil
}

// DefaultUnits is the built-in starter catalog: short C-snippet quizzes.
func DefaultUnits() []models.UnitDefinition {
	return []models.UnitDefinition{
		{
			ID:          "c-pointers-basics",
			Title:       "Pointer Basics",
			Description: "Reading and writing through pointers, address-of and dereference.",
			Ability:     "Memory",
			Difficulty:  "Beginner",
			IntroContent: []string{
				"A pointer stores the address of another object. The & operator takes an address, the * operator follows one.",
				"Every question shows a short snippet. Trace what each statement does to memory before looking at the options.",
			},
			Items: []models.ItemDefinition{
				{
					ID:     "ptr-deref-write",
					Title:  "Writing through a pointer",
					Prompt: "What does this program print?",
					Code: "int x = 10;\n" +
						"int *p = &x;\n" +
						"*p = 25;\n" +
						"printf(\"%d\\n\", x);",
					Options: []models.Option{
						{ID: "a", Label: "10"},
						{ID: "b", Label: "25"},
						{ID: "c", Label: "The address of x"},
						{ID: "d", Label: "Undefined behavior"},
					},
					CorrectOptionID: "b",
					Explanation:     "p holds the address of x, so *p = 25 assigns through the pointer and overwrites x.",
				},
				{
					ID:     "ptr-increment",
					Title:  "Pointer arithmetic",
					Prompt: "After these statements, what is *p?",
					Code: "int a[] = {4, 8, 15};\n" +
						"int *p = a;\n" +
						"p++;",
					Options: []models.Option{
						{ID: "a", Label: "4"},
						{ID: "b", Label: "8"},
						{ID: "c", Label: "15"},
						{ID: "d", Label: "Undefined behavior"},
					},
					CorrectOptionID: "b",
					Explanation:     "Incrementing an int pointer moves it by one element, not one byte, so p points at a[1].",
				},
				{
					ID:     "ptr-null-check",
					Title:  "Null pointers",
					Prompt: "Which statement about NULL is correct?",
					Options: []models.Option{
						{ID: "a", Label: "Dereferencing NULL returns 0"},
						{ID: "b", Label: "NULL compares equal to any uninitialized pointer"},
						{ID: "c", Label: "Dereferencing NULL is undefined behavior"},
						{ID: "d", Label: "NULL is only valid for char pointers"},
					},
					CorrectOptionID: "c",
					Explanation:     "NULL is a valid pointer value that points at no object; following it is undefined behavior.",
				},
			},
		},
		{
			ID:          "c-eval-order",
			Title:       "Evaluation and Side Effects",
			Description: "Operator precedence, sequencing and the classic C traps.",
			Ability:     "Semantics",
			Difficulty:  "Intermediate",
			IntroContent: []string{
				"C gives the compiler freedom over evaluation order. These questions probe the difference between what usually happens and what the language guarantees.",
			},
			Items: []models.ItemDefinition{
				{
					ID:     "eval-postfix",
					Title:  "Postfix increment",
					Prompt: "What does this program print?",
					Code: "int i = 5;\n" +
						"int j = i++;\n" +
						"printf(\"%d %d\\n\", i, j);",
					Options: []models.Option{
						{ID: "a", Label: "5 5"},
						{ID: "b", Label: "6 5"},
						{ID: "c", Label: "6 6"},
						{ID: "d", Label: "5 6"},
					},
					CorrectOptionID: "b",
					Explanation:     "Postfix ++ yields the old value: j receives 5, then i becomes 6.",
				},
				{
					ID:     "eval-logical-and",
					Title:  "Short-circuit evaluation",
					Prompt: "How many times does f() run?",
					Code: "int calls = 0;\n" +
						"int f(void) { calls++; return 0; }\n" +
						"int main(void) { return f() && f(); }",
					Options: []models.Option{
						{ID: "a", Label: "0"},
						{ID: "b", Label: "1"},
						{ID: "c", Label: "2"},
						{ID: "d", Label: "Unspecified"},
					},
					CorrectOptionID: "b",
					Explanation:     "&& short-circuits: the left operand returns 0, so the right operand is never evaluated.",
				},
			},
		},
	}
}
