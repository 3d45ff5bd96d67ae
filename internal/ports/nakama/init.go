package nakama

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/heroiclabs/nakama-common/runtime"

	"colonos/internal/app"
	"colonos/internal/bot"
	"colonos/internal/config"
	"colonos/internal/ports/sqlite"
)

// InitModule opens the game store and registers the colonos RPCs and hooks
// with the Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	vars, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	mc, err := config.LoadModuleConfig(vars)
	if err != nil {
		logger.Error("InitModule: Invalid runtime env: %v", err)
		return err
	}

	if err := config.LoadGameConfig(mc.GameConfig); err != nil {
		logger.Warn("InitModule: Using default game config: %v", err)
	}
	gameCfg := config.GetGameConfig()
	if err := bot.LoadIdentities(mc.BotIdentities); err != nil {
		logger.Warn("InitModule: Using built-in bot identities: %v", err)
	}

	store, err := sqlite.Open(mc.DBPath)
	if err != nil {
		logger.Error("InitModule: Failed to open store %s: %v", mc.DBPath, err)
		return err
	}
	svc := app.NewService(store, gameCfg.Rules(), nil)

	boards, err := config.LoadBoards(mc.Boards)
	if err != nil {
		logger.Warn("InitModule: No board templates loaded: %v", err)
	} else {
		n, err := svc.SeedBoards(ctx, boards)
		if err != nil {
			logger.Error("InitModule: Failed to seed boards: %v", err)
			return err
		}
		logger.Info("InitModule: Seeded %d of %d boards", n, len(boards))
	}

	botsEnabled := gameCfg.BotsEnabled
	if mc.BotsEnabled != nil {
		botsEnabled = *mc.BotsEnabled
	}
	var runner BotRunner
	if botsEnabled {
		bot.ProvisionBots(ctx, nk, logger)
		runner = bot.NewRunner(svc, gameCfg.MaxBotSteps())
	}

	notifier := NewNakamaNotifier(nk, gamePlayers(svc), bot.IsBot)
	if err := NewModule(svc, notifier, runner).RegisterRPCs(initializer); err != nil {
		return err
	}
	if err := initializer.RegisterAfterAuthenticateDevice(AfterAuthenticateDevice); err != nil {
		return err
	}

	logger.Info("Colonos Go module loaded. Bots enabled: %v", botsEnabled)
	return nil
}

// gamePlayers lists the players of a game in turn order.
func gamePlayers(svc *app.Service) PlayerLister {
	return func(ctx context.Context, gameID int64) ([]string, error) {
		info, err := svc.GameInfo(ctx, gameID)
		if err != nil {
			return nil, fmt.Errorf("game info: %w", err)
		}
		names := make([]string, 0, len(info.Players))
		for _, p := range info.Players {
			names = append(names, p.Username)
		}
		return names, nil
	}
}
