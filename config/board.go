package config

import "github.com/spf13/viper"

// Board configures the local board.
type Board struct {
	Seed bool
	// Location names the time zone wall-clock times are read in, e.g.
	// "Europe/Berlin". Empty means the server's local zone.
	Location string
}

func getBoardConfig(v *viper.Viper) *Board {
	return &Board{
		Seed:     getBoolOrDefault(v, "board.seed", true),
		Location: v.GetString("board.location"),
	}
}
