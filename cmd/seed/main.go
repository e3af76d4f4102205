// Package main provides a tool to seed the database with demo accounts.
//
// Each demo account gets a profile, a saved card with a few marks and
// crests, and a share token, so the editor and public share pages have
// something to show during development.
//
// Usage:
//
//	DB_PATH=~/CureCircle/data/db go run ./cmd/seed
//	DB_PATH=~/CureCircle/data/db go run ./cmd/seed --accounts 10
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/curecircle/curecircle-server/internal/auth"
	"github.com/curecircle/curecircle-server/internal/domain"
	"github.com/curecircle/curecircle-server/internal/id"
	"github.com/curecircle/curecircle-server/internal/registry"
	"github.com/curecircle/curecircle-server/internal/store"
)

var accounts = flag.Int("accounts", 5, "Number of demo accounts to create")

// Demo identities. Password is "precure-demo" for all of them.
var demoNames = []string{
	"Nagisa", "Honoka", "Hikari", "Saki", "Mai",
	"Nozomi", "Rin", "Urara", "Komachi", "Karen",
}

const demoPassword = "precure-demo"

func main() {
	flag.Parse()

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/CureCircle/data/db")
	}

	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := store.New(dbPath, slog.New(slog.DiscardHandler))
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	hash, err := auth.HashPassword(demoPassword)
	if err != nil {
		log.Fatalf("Failed to hash demo password: %v", err)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	gradients := registry.Gradients()
	crests := registry.Crests()

	n := min(*accounts, len(demoNames))
	created := 0

	for i := range n {
		name := demoNames[i]
		email := fmt.Sprintf("%s@example.com", strings.ToLower(name))

		now := time.Now()
		user := &domain.User{
			ID:           id.MustGenerate("user"),
			Email:        email,
			PasswordHash: hash,
			Provider:     domain.ProviderEmail,
			DisplayName:  name,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		if err := s.CreateUser(user); err != nil {
			fmt.Printf("  Skipping %s: %v\n", email, err)
			continue
		}

		profile := domain.NewProfile(user.ID, name)
		profile.Bio = fmt.Sprintf("Hi, I'm %s! Spreading sparkles since forever.", name)
		profile.FavoriteSeries = crests[rng.Intn(len(crests))].DisplayName
		profile.ShareToken = id.MustGenerate("share")
		if err := s.SaveProfile(profile); err != nil {
			log.Fatalf("Failed to save profile for %s: %v", email, err)
		}

		card := domain.NewDefaultCard(user.ID, profile.CardHints())
		card.Title = fmt.Sprintf("%s's Cure Card", name)
		card.Background = domain.BackgroundSpec{
			Mode:     domain.BackgroundGradient,
			PresetID: gradients[rng.Intn(len(gradients))].ID,
		}

		// A couple of extra marks and one random crest per card.
		kinds := []domain.MarkKind{domain.MarkHeart, domain.MarkStar, domain.MarkSparkle}
		for range 2 {
			mark := card.AddMark(kinds[rng.Intn(len(kinds))])
			card.Reposition(mark.ID, float64(10+rng.Intn(80)), float64(10+rng.Intn(80)))
		}
		card.AddCrest(crests[rng.Intn(len(crests))].ID)

		if err := s.SaveCard(user.ID, card); err != nil {
			log.Fatalf("Failed to save card for %s: %v", email, err)
		}

		fmt.Printf("  Created %s (%s), share token %s\n", name, email, profile.ShareToken)
		created++
	}

	fmt.Printf("\nDone. Created %d accounts (password %q).\n", created, demoPassword)
}
