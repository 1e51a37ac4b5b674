package db

import (
	"context"
	"database/sql"

	"github.com/reachhk/engage/internal/ctxutil"
	"github.com/reachhk/engage/internal/models"
)

// UpsertUser: справочник имён для лидерборда и списка на проверку.
func UpsertUser(ctx context.Context, database *sql.DB, u models.User) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	role := u.Role
	if role == "" {
		role = models.Student
	}
	_, err := database.ExecContext(ctx, `
		INSERT INTO users (id, full_name, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET full_name = EXCLUDED.full_name, role = EXCLUDED.role`,
		u.ID, u.FullName, string(role))
	return err
}
