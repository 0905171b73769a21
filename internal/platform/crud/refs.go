package crud

import (
	"context"
	"errors"

	"github.com/Lucklimp/eva-2/internal/platform/db"
	"github.com/Lucklimp/eva-2/internal/platform/validation"
)

// CheckRef reports a field error when id names no record that get can find.
func CheckRef[U any](ctx context.Context, field string, id int64, get func(context.Context, int64) (*U, error)) error {
	if _, err := get(ctx, id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return validation.Field(field, "does not exist")
		}
		return err
	}
	return nil
}
