// Package narrative provides verb classification for narration text using an FST.
// The lexicon maps verb stems to a Category and a canonical third-person form.
package narrative

// Category groups action verbs by the kind of beat they describe
type Category uint8

const (
	CategoryMovement      Category = 0
	CategoryPerception    Category = 1
	CategoryCommunication Category = 2
	CategoryConfrontation Category = 3
	CategoryRealization   Category = 4
	CategoryResolution    Category = 5
	CategoryState         Category = 6
	CategoryProgression   Category = 7 // begins, starts, continues...

	CategoryUnknown Category = 255
)

// String returns a readable name
func (c Category) String() string {
	switch c {
	case CategoryMovement:
		return "MOVEMENT"
	case CategoryPerception:
		return "PERCEPTION"
	case CategoryCommunication:
		return "COMMUNICATION"
	case CategoryConfrontation:
		return "CONFRONTATION"
	case CategoryRealization:
		return "REALIZATION"
	case CategoryResolution:
		return "RESOLUTION"
	case CategoryState:
		return "STATE"
	case CategoryProgression:
		return "PROGRESSION"
	default:
		return "UNKNOWN"
	}
}

// Form is the inflection a verb was found in. Lower values are preferred
// when a clause holds more than one verb.
type Form uint8

const (
	FormPresent Form = iota // arrives
	FormGerund              // arriving
	FormPast                // arrived, ran
	FormBase                // arrive
)

// String returns a readable name
func (f Form) String() string {
	switch f {
	case FormPresent:
		return "present"
	case FormGerund:
		return "gerund"
	case FormPast:
		return "past"
	default:
		return "base"
	}
}
