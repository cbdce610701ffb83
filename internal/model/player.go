package model

import (
	"encoding/json"
	"fmt"
)

type Color uint8

const (
	White Color = iota
	Black
)

func (c Color) Other() Color {
	return c ^ 1
}

func (c Color) String() string {
	if c == Black {
		return "black"
	}
	return "white"
}

// Token is the one-letter prefix used by the board text format.
func (c Color) Token() string {
	if c == Black {
		return "b"
	}
	return "w"
}

func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Color) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseColor(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func ParseColor(s string) (Color, error) {
	switch s {
	case "white", "w":
		return White, nil
	case "black", "b":
		return Black, nil
	}
	return White, fmt.Errorf("invalid color %q", s)
}

type PlayerType string

const (
	Human    PlayerType = "human"
	Computer PlayerType = "computer"
)

type Players struct {
	White PlayerType `json:"white"`
	Black PlayerType `json:"black"`
}

func (p Players) Of(c Color) PlayerType {
	if c == Black {
		return p.Black
	}
	return p.White
}

// GameType classifies who plays whom. GameUndefined is the free setup mode.
type GameType int

const (
	GameUndefined  GameType = -1
	GameLocal      GameType = 0
	GameOnline     GameType = 1
	GameTeamOnline GameType = 2
	GameParty      GameType = 3
	GameComputer   GameType = 4
)

var gameTypeNames = map[GameType]string{
	GameUndefined:  "undefined",
	GameLocal:      "local",
	GameOnline:     "online",
	GameTeamOnline: "team-online",
	GameParty:      "party",
	GameComputer:   "computer",
}

func (t GameType) String() string {
	if name, ok := gameTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("GameType(%d)", int(t))
}

func ParseGameType(s string) (GameType, error) {
	for t, name := range gameTypeNames {
		if name == s {
			return t, nil
		}
	}
	return GameUndefined, fmt.Errorf("invalid game type %q", s)
}

func (t GameType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *GameType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseGameType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
