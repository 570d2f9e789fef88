package ports

import (
	"context"

	"opinionmap/domain/opinion"
)

// StatementSource loads statement metadata (text and moderation flags)
type StatementSource interface {
	LoadStatements(ctx context.Context) ([]opinion.Statement, error)
}
