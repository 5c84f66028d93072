package migration

import (
	"io/fs"
	"testing"

	"github.com/smallbiznis/innledger/pkg/db"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	require.NoError(t, err)

	ups, err := fs.Glob(sub, "*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(sub, "*.down.sql")
	require.NoError(t, err)

	require.NotEmpty(t, ups)
	require.Len(t, downs, len(ups))
}

func TestApplyAutoMigratesNonPostgres(t *testing.T) {
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, Apply(conn))

	for _, table := range []string{
		"users", "hotels", "hotel_code_sequences", "rooms", "invoices",
		"invoice_room_stays", "invoice_room_night_rates", "invoice_food_charges",
		"invoice_sequences", "audit_logs",
	} {
		require.True(t, conn.Migrator().HasTable(table), table)
	}

	// idempotent
	require.NoError(t, Apply(conn))
}
