package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/heroiclabs/nakama-common/runtime"
)

type BotIdentity struct {
	DeviceID    string `json:"device_id"`
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Difficulty  string `json:"difficulty"` // "easy", "medium", "hard"
	AvatarIndex int    `json:"avatar_index"`
}

var defaultIdentities = []BotIdentity{
	{DeviceID: "colonos-bot-device-0001", Username: "bot_ada", DisplayName: "Ada the Builder", Difficulty: "hard", AvatarIndex: 1},
	{DeviceID: "colonos-bot-device-0002", Username: "bot_bram", DisplayName: "Bram the Trader", Difficulty: "medium", AvatarIndex: 2},
	{DeviceID: "colonos-bot-device-0003", Username: "bot_cleo", DisplayName: "Cleo the Drifter", Difficulty: "easy", AvatarIndex: 3},
}

var (
	mu            sync.RWMutex
	botIdentities []BotIdentity
	botConfigMap  map[string]BotIdentity
	loadOnce      sync.Once
	provisionOnce sync.Once
	loadErr       error
)

func init() {
	setIdentities(defaultIdentities)
}

// LoadIdentities replaces the built-in bot profiles with those at path.
func LoadIdentities(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read bot identities: %w", err)
			return
		}
		identities, err := ParseIdentities(data)
		if err != nil {
			loadErr = err
			return
		}
		setIdentities(identities)
	})
	return loadErr
}

// ParseIdentities decodes a JSON list of bot profiles. Usernames must be unique.
func ParseIdentities(data []byte) ([]BotIdentity, error) {
	var identities []BotIdentity
	if err := json.Unmarshal(data, &identities); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bot identities: %w", err)
	}
	seen := make(map[string]bool, len(identities))
	for _, identity := range identities {
		if identity.Username == "" {
			return nil, fmt.Errorf("bot identity without username")
		}
		if seen[identity.Username] {
			return nil, fmt.Errorf("duplicate bot username %q", identity.Username)
		}
		seen[identity.Username] = true
	}
	return identities, nil
}

func setIdentities(identities []BotIdentity) {
	mu.Lock()
	defer mu.Unlock()
	botIdentities = append([]BotIdentity(nil), identities...)
	botConfigMap = make(map[string]BotIdentity, len(identities))
	for _, identity := range botIdentities {
		botConfigMap[identity.Username] = identity
	}
}

// ProvisionBots ensures that bot accounts exist in the Nakama database and have the is_bot metadata.
func ProvisionBots(ctx context.Context, nk runtime.NakamaModule, logger runtime.Logger) {
	provisionOnce.Do(func() {
		mu.RLock()
		identities := append([]BotIdentity(nil), botIdentities...)
		mu.RUnlock()

		ready := make([]BotIdentity, 0, len(identities))
		for _, identity := range identities {
			if identity.DeviceID == "" {
				ready = append(ready, identity)
				continue
			}

			userID, username, _, err := nk.AuthenticateDevice(ctx, identity.DeviceID, identity.Username, true)
			if err != nil {
				logger.Error("ProvisionBots: Failed to authenticate bot %s: %v", identity.Username, err)
				ready = append(ready, identity)
				continue
			}
			if username != identity.Username {
				logger.Warn("ProvisionBots: Bot %s exists as %s", identity.Username, username)
			}
			identity.UserID = userID
			identity.Username = username

			metadata := map[string]interface{}{
				"is_bot":       true,
				"difficulty":   identity.Difficulty,
				"avatar_index": identity.AvatarIndex,
			}
			if err := nk.AccountUpdateId(ctx, userID, identity.Username, metadata, identity.DisplayName, "", "", "", ""); err != nil {
				logger.Warn("ProvisionBots: Failed to update bot account %s: %v", userID, err)
			}
			ready = append(ready, identity)

			logger.Info("ProvisionBots: Bot %s (%s) is ready. Difficulty: %s", identity.DisplayName, userID, identity.Difficulty)
		}
		setIdentities(ready)
	})
}

// GetBotConfig returns the identity of the bot with the given username.
func GetBotConfig(username string) (BotIdentity, bool) {
	mu.RLock()
	defer mu.RUnlock()
	config, ok := botConfigMap[username]
	return config, ok
}

// GetBotIdentity returns an identity for a bot by index (mod pool size).
func GetBotIdentity(index int) BotIdentity {
	mu.RLock()
	defer mu.RUnlock()
	if len(botIdentities) == 0 {
		return BotIdentity{
			Username:    fmt.Sprintf("bot_%d", index),
			DisplayName: fmt.Sprintf("AI Player %d", index),
		}
	}
	return botIdentities[index%len(botIdentities)]
}

// IsBot reports whether username belongs to the bot pool.
func IsBot(username string) bool {
	_, ok := GetBotConfig(username)
	return ok
}

// Usernames returns the bot usernames in pool order.
func Usernames() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(botIdentities))
	for _, identity := range botIdentities {
		names = append(names, identity.Username)
	}
	return names
}
