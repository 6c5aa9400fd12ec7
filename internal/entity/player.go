package entity

// MysteryPalette is the glyph pool mystery mode draws from.
var MysteryPalette = [8]string{"🔥", "🌟", "💀", "🍕", "⚽", "🎉", "🎈", "💎"}

// Symbols maps each player to its display glyph.
type Symbols struct {
	X string `json:"X"`
	O string `json:"O"`
}

func DefaultSymbols() Symbols {
	return Symbols{X: string(PlayerX), O: string(PlayerO)}
}

func (that Symbols) For(player Mark) string {
	switch player {
	case PlayerX:
		return that.X
	case PlayerO:
		return that.O
	default:
		return ""
	}
}

// Scores is the win tally of a session.
type Scores struct {
	X int `json:"X"`
	O int `json:"O"`
}

func (that *Scores) Increment(player Mark) {
	switch player {
	case PlayerX:
		that.X++
	case PlayerO:
		that.O++
	}
}

func (that Scores) Of(player Mark) int {
	switch player {
	case PlayerX:
		return that.X
	case PlayerO:
		return that.O
	default:
		return 0
	}
}
