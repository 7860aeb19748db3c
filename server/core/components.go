package core

import (
	"github.com/automoto/bouncerz-mp/shared/arena"
	"github.com/automoto/bouncerz-mp/shared/messages"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/filter"
)

// Conn is the outbound side of a player's connection. Send must not block.
type Conn interface {
	Send(messages.Message) error
}

// PlayerData is the identity of a player entity.
type PlayerData struct {
	ID    string
	Name  string
	Color string
	Conn  Conn
}

var (
	Player = donburi.NewComponentType[PlayerData]()
	Avatar = donburi.NewComponentType[arena.Avatar]()
	Inputs = donburi.NewComponentType[InputQueue]()
)

var playerQuery = donburi.NewQuery(filter.Contains(Player, Avatar, Inputs))
