package repomanager

import (
	"context"
	"database/sql"

	"github.com/burleshivajishivajiburle-ops/finalproject-is-601/internal/dbx"
	"github.com/burleshivajishivajiburle-ops/finalproject-is-601/internal/server/repositories/calculations"
	"github.com/burleshivajishivajiburle-ops/finalproject-is-601/internal/server/repositories/refreshtokens"
	"github.com/burleshivajishivajiburle-ops/finalproject-is-601/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Calculations(db dbx.DBTX) calculations.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}
