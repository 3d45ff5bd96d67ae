// Command seed loads board templates into a colonos database and prints
// development tokens for the given usernames.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"colonos/internal/app"
	"colonos/internal/config"
	"colonos/internal/ports/jwtauth"
	"colonos/internal/ports/sqlite"
)

func main() {
	dbPath := flag.String("db", "colonos.db", "sqlite database path")
	boardsPath := flag.String("boards", "data/boards.yaml", "board templates to load")
	generate := flag.Int("generate", 0, "number of random boards to add")
	users := flag.String("users", "", "comma separated usernames to issue tokens for")
	secret := flag.String("secret", os.Getenv("COLONOS_JWT_SECRET"), "token signing secret")
	issuer := flag.String("issuer", "colonos", "token issuer")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil)).With("cmd", "seed")
	if err := run(context.Background(), logger, *dbPath, *boardsPath, *generate); err != nil {
		logger.Error("seed failed", "err", err)
		os.Exit(1)
	}
	if *users == "" {
		return
	}
	auth, err := jwtauth.New(*secret, *issuer, *ttl)
	if err != nil {
		logger.Error("token authority", "err", err)
		os.Exit(1)
	}
	for _, u := range strings.Split(*users, ",") {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		token, err := auth.Issue(u)
		if err != nil {
			logger.Error("issue token", "username", u, "err", err)
			os.Exit(1)
		}
		fmt.Printf("%s\t%s\n", u, token)
	}
}

func run(ctx context.Context, logger *slog.Logger, dbPath, boardsPath string, generate int) error {
	store, err := sqlite.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	svc := app.NewService(store, app.DefaultRules(), nil)
	boards, err := config.LoadBoards(boardsPath)
	if err != nil {
		return err
	}
	n, err := svc.SeedBoards(ctx, boards)
	if err != nil {
		return err
	}
	logger.Info("loaded board templates", "loaded", n, "total", len(boards))

	for i := 0; i < generate; i++ {
		b, err := svc.GenerateBoard(ctx, fmt.Sprintf("random-%d", time.Now().UnixNano()))
		if err != nil {
			return err
		}
		logger.Info("generated board", "id", b.ID, "name", b.Name)
	}
	return nil
}
