package internal

type Player struct {
	Id     string `json:"id"`
	Name   string `json:"name"`
	Points int    `json:"points"`
	Role   Role   `json:"role"`
}

func NewPlayer(id, name string, role Role) *Player {
	return &Player{
		Id:   id,
		Name: name,
		Role: role,
	}
}

func (p *Player) SwapRole() {
	p.Role = p.Role.Opposite()
}

// Snapshot copies the player so it can be sent after the room lock is released.
func (p *Player) Snapshot() Player {
	return Player{
		Id:     p.Id,
		Name:   p.Name,
		Points: p.Points,
		Role:   p.Role,
	}
}
