package patterns

import "github.com/ppiankov/tautohetohe/internal/model"

// Era selects the date and speaker recognizers for a volume. Volume 294
// introduced the modern date line and volume 410 (19 May 1977) the
// "Name: text" speaker layout.
type Era int

const (
	EraA Era = iota // before 294, or a non-numeric volume name
	EraB            // 294 to 409
	EraC            // 410 onwards
)

func (e Era) String() string {
	switch e {
	case EraA:
		return "A"
	case EraB:
		return "B"
	case EraC:
		return "C"
	}
	return "unknown"
}

// EraFor derives the era from a volume name
func EraFor(volume string) Era {
	n, ok := model.Volume{Name: volume}.Number()
	switch {
	case !ok:
		return EraA
	case n >= 410:
		return EraC
	case n >= 294:
		return EraB
	}
	return EraA
}
