package store

import (
	"encoding/json/v2"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/curecircle/curecircle-server/internal/domain"
)

func cardKey(ownerID string) []byte {
	return fmt.Appendf(nil, "card:%s", ownerID)
}

// GetCard loads the card document owned by ownerID. Records written by
// older builds are normalized on the way out. Returns ErrNotFound when the
// user has never saved a card.
func (s *Store) GetCard(ownerID string) (*domain.CardDocument, error) {
	raw, err := s.getRaw(cardKey(ownerID))
	if err != nil {
		return nil, err
	}

	card, err := normalizeCardRecord(raw)
	if err != nil {
		return nil, err
	}
	if card.OwnerID == "" {
		card.OwnerID = ownerID
	}
	return card, nil
}

// SaveCard upserts the card document for its owner. actorID is the
// authenticated user performing the write; writing someone else's card is a
// permission error. The owner must exist as a user record.
func (s *Store) SaveCard(actorID string, card *domain.CardDocument) error {
	if card.OwnerID == "" {
		return ErrMissingColumn.WithMessage("card record has no owner id")
	}
	if actorID != card.OwnerID {
		return ErrPermissionDenied.WithMessage("cannot save another user's card")
	}

	card.UpdatedAt = time.Now()
	if card.CreatedAt.IsZero() {
		card.CreatedAt = card.UpdatedAt
	}

	data, err := json.Marshal(card)
	if err != nil {
		return ErrInternal.WithMessage("failed to marshal card").WithCause(err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := checkCollection(txn, collectionCards); err != nil {
			return err
		}

		ok, err := userExists(txn, card.OwnerID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrForeignKey.WithMessage(
				fmt.Sprintf("card owner %q does not exist", card.OwnerID))
		}

		return txn.Set(cardKey(card.OwnerID), data)
	})

	var serr *Error
	if errors.As(err, &serr) {
		return serr
	}
	if err != nil {
		return ErrInternal.WithCause(err)
	}

	if s.logger != nil {
		s.logger.Debug("card saved", "owner_id", card.OwnerID)
	}
	return nil
}

// DeleteCard removes the card owned by ownerID. Missing cards are a no-op.
func (s *Store) DeleteCard(ownerID string) error {
	return s.delete(cardKey(ownerID))
}
