package app

import "github.com/google/uuid"

// NewPlayerID returns an opaque id for a player cookie.
func NewPlayerID() string { return uuid.NewString() }

func newGameID() string { return uuid.NewString() }
