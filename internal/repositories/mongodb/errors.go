package mongodb

import (
	"errors"
	"fmt"

	"ridedeck/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/mongo"
)

// translateError maps driver errors onto the repository sentinels.
func translateError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("%s: %w", op, interfaces.ErrNotFound)
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w: %v", op, interfaces.ErrDuplicateKey, err)
	default:
		return fmt.Errorf("failed to %s: %w", op, err)
	}
}
