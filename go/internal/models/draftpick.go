package models

// DraftPick represents a single drafted player. The ID is allocated by the
// identity authority and never changes once assigned.
type DraftPick struct {
	ID          int64  `json:"id"`
	PickNumber  string `json:"pick_number"`
	ProTeam     string `json:"pro_team"`
	PlayerName  string `json:"player_name"`
	AmateurTeam string `json:"amateur_team"` // optional, empty when unknown
}

// DraftPickFields holds the mutable columns of a draft pick.
type DraftPickFields struct {
	PickNumber  string `json:"pick_number"`
	ProTeam     string `json:"pro_team"`
	PlayerName  string `json:"player_name"`
	AmateurTeam string `json:"amateur_team"`
}

// WithID returns the pick described by f with the given id.
func (f DraftPickFields) WithID(id int64) DraftPick {
	return DraftPick{
		ID:          id,
		PickNumber:  f.PickNumber,
		ProTeam:     f.ProTeam,
		PlayerName:  f.PlayerName,
		AmateurTeam: f.AmateurTeam,
	}
}

// Fields returns the mutable columns of p.
func (p DraftPick) Fields() DraftPickFields {
	return DraftPickFields{
		PickNumber:  p.PickNumber,
		ProTeam:     p.ProTeam,
		PlayerName:  p.PlayerName,
		AmateurTeam: p.AmateurTeam,
	}
}
