package bot

import (
	"testing"
)

func TestDefaultIdentities(t *testing.T) {
	names := Usernames()
	if len(names) != 3 {
		t.Fatalf("usernames = %v", names)
	}
	for _, n := range names {
		if !IsBot(n) {
			t.Fatalf("IsBot(%q) = false", n)
		}
	}
	if IsBot("ana") || IsBot("") {
		t.Fatal("humans must not be bots")
	}
	if GetBotIdentity(4).Username != names[1] {
		t.Fatalf("GetBotIdentity wraps around the pool, got %+v", GetBotIdentity(4))
	}
	if id, ok := GetBotConfig("bot_cleo"); !ok || LevelOf(id.Difficulty) != BotLevelEasy {
		t.Fatalf("bot_cleo = %+v, %v", id, ok)
	}
}

func TestParseIdentities(t *testing.T) {
	got, err := ParseIdentities([]byte(`[{"username":"x","difficulty":"easy"},{"username":"y"}]`))
	if err != nil {
		t.Fatalf("ParseIdentities: %v", err)
	}
	if len(got) != 2 || got[0].Difficulty != "easy" {
		t.Fatalf("identities = %+v", got)
	}

	for name, raw := range map[string]string{
		"malformed": `{`,
		"anonymous": `[{"display_name":"x"}]`,
		"duplicate": `[{"username":"x"},{"username":"x"}]`,
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseIdentities([]byte(raw)); err == nil {
				t.Fatalf("expected error for %s", raw)
			}
		})
	}
}

func TestShippedIdentities(t *testing.T) {
	if err := LoadIdentities("../../data/bot_identities.json"); err != nil {
		t.Fatalf("LoadIdentities: %v", err)
	}
	if !IsBot("bot_ada") || len(Usernames()) != 3 {
		t.Fatalf("usernames = %v", Usernames())
	}
}
