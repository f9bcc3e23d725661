// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package bootstrap

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/streamkit/tazos-engine/pkg/game"
	"github.com/streamkit/tazos-engine/pkg/handler"
	"github.com/streamkit/tazos-engine/pkg/leaderboard"
	"github.com/streamkit/tazos-engine/pkg/sweeper"
)

// Handlers is everything the transport and the sweeper need.
type Handlers struct {
	Games      *handler.Games
	Dispatcher *handler.Dispatcher
	Service    *handler.CommandService
}

// InitHandlers builds the games, the command dispatcher and its gRPC service.
func InitHandlers(deps *game.Deps) (*Handlers, error) {
	games, err := handler.NewGames(deps)
	if err != nil {
		return nil, fmt.Errorf("failed to register events: %w", err)
	}
	logrus.Infof("registered %d community events", games.Events.Count())

	board := leaderboard.New(deps.Ledger, deps.Names, deps.Config.ExcludedUsers)
	dispatcher, err := handler.NewDispatcher(deps, games, board)
	if err != nil {
		return nil, fmt.Errorf("failed to register commands: %w", err)
	}
	logrus.Infof("registered %d chat commands", dispatcher.Commands().Count())

	return &Handlers{
		Games:      games,
		Dispatcher: dispatcher,
		Service:    handler.NewCommandService(dispatcher, board),
	}, nil
}

// InitSweeper schedules expiry of events and pending offers.
func InitSweeper(games *handler.Games, interval time.Duration) *sweeper.Sweeper {
	return sweeper.New(games.Events, interval, games.Duels, games.Transfers)
}
