package bracket

// ByeName is the reserved opponent name for an empty seat. A player with
// this name never plays; the real opponent advances automatically.
const ByeName = "BYE"

type Player struct {
	Name string `db:"name" json:"name"`
	Seed int    `db:"seed" json:"seed"`
}
