package catalog

import "github.com/snippet-prep/backend/internal/models"

// Unit is a normalized unit: its metadata plus the ids of its items in
// pedagogical order.
type Unit struct {
	ID           string
	Title        string
	Description  string
	Ability      string
	Difficulty   string
	IntroContent []string
	ItemIDs      []string
}

// Item is a normalized item tagged with the id of its owning unit.
type Item struct {
	models.ItemDefinition
	UnitID string
}

// Normalized holds the flat lookups built from a nested catalog: the
// stable unit ordering, units by id and items by id.
type Normalized struct {
	UnitOrder []string
	Units     map[string]Unit
	Items     map[string]Item
}

// Normalize flattens nested unit definitions into the lookup structures
// the session store works with. Unit order and each unit's item order are
// preserved exactly; both are observable as the question sequence and
// have no other source of truth.
func Normalize(defs []models.UnitDefinition) Normalized {
	n := Normalized{
		UnitOrder: make([]string, 0, len(defs)),
		Units:     make(map[string]Unit, len(defs)),
		Items:     make(map[string]Item),
	}

	for _, def := range defs {
		n.UnitOrder = append(n.UnitOrder, def.ID)

		itemIDs := make([]string, 0, len(def.Items))
		for _, item := range def.Items {
			itemIDs = append(itemIDs, item.ID)
			n.Items[item.ID] = Item{
				ItemDefinition: item,
				UnitID:         def.ID,
			}
		}

		n.Units[def.ID] = Unit{
			ID:           def.ID,
			Title:        def.Title,
			Description:  def.Description,
			Ability:      def.Ability,
			Difficulty:   def.Difficulty,
			IntroContent: def.IntroContent,
			ItemIDs:      itemIDs,
		}
	}

	return n
}
