// Package main provides a read-only inspection tool for the CureCircle database.
package main

import (
	"encoding/json/v2"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/curecircle/curecircle-server/internal/domain"
)

func main() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/CureCircle/data/db")
	}

	opts := badger.DefaultOptions(dbPath).
		WithReadOnly(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	fmt.Println("=== Database Inspection ===")
	fmt.Println()

	counts := map[string]int{}
	cardsShown := 0

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key := string(item.Key())

			prefix, rest, _ := strings.Cut(key, ":")
			// Skip index keys like profile:idx:share:<token>.
			if strings.HasPrefix(rest, "idx:") {
				continue
			}
			counts[prefix]++

			if prefix != "card" || cardsShown >= 3 {
				continue
			}

			err := item.Value(func(val []byte) error {
				var card domain.CardDocument
				if err := json.Unmarshal(val, &card); err != nil {
					return err
				}

				fmt.Printf("Card: %s\n", card.OwnerID)
				fmt.Printf("  Title: %s\n", card.Title)
				fmt.Printf("  Background: %s\n", card.Background.Mode)
				fmt.Printf("  Marks: %d, Crests: %d\n", len(card.Marks), len(card.Crests))
				for i, crest := range card.Crests {
					if i < 5 {
						fmt.Printf("    [%d] %s (%.0f%%, %.0f%%)\n",
							i, crest.CrestID, crest.XPercent, crest.YPercent)
					}
				}
				fmt.Println()
				return nil
			})
			if err != nil {
				log.Printf("Error reading card %s: %v", key, err)
			}
			cardsShown++
		}
		return nil
	})

	if err != nil {
		log.Fatalf("Error iterating database: %v", err)
	}

	fmt.Println("=== Summary ===")
	for _, prefix := range []string{"user", "profile", "card", "session", "playlist"} {
		fmt.Printf("%-10s %d\n", prefix+"s:", counts[prefix])
	}
}
