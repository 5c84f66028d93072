package main

import (
	"os"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/innledger/internal/clock"
	"github.com/smallbiznis/innledger/internal/config"
	"github.com/smallbiznis/innledger/internal/migration"
	"github.com/smallbiznis/innledger/internal/observability"
	"github.com/smallbiznis/innledger/internal/server"
	"github.com/smallbiznis/innledger/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		clock.Module,
		db.Module,

		// Functional Domains
		server.Module,
		migration.Module,
	)
	app.Run()
}

// RegisterSnowflake builds the id node. SNOWFLAKE_NODE must differ between
// replicas sharing a database.
func RegisterSnowflake() (*snowflake.Node, error) {
	nodeID := int64(1)
	if raw := os.Getenv("SNOWFLAKE_NODE"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, err
		}
		nodeID = parsed
	}
	return snowflake.NewNode(nodeID)
}
