package memory

// Kind is the intrinsic type of an observable entity.
type Kind uint8

const (
	KindNone Kind = iota
	KindShelter
	KindApple
	KindPredator
	KindPrey
)

var kindNames = [...]string{"none", "shelter", "apple", "predator", "prey"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// MarshalText renders the kind by name in JSON.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// InteractionTemplates gives, per observer kind, what each observed kind means.
var InteractionTemplates = map[Kind]map[Kind]Category{
	KindPrey: {
		KindShelter:  CategoryShelter,
		KindApple:    CategoryFood,
		KindPredator: CategoryPredator,
		KindPrey:     CategoryDynamicCreature,
	},
	KindPredator: {
		KindShelter:  CategoryShelter,
		KindApple:    CategoryFood,
		KindPredator: CategoryDynamicCreature,
		KindPrey:     CategoryFood,
	},
}
