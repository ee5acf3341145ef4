package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/hearback/hearback/internal/migration"
	"github.com/hearback/hearback/internal/server"
	"github.com/hearback/hearback/pkg/db"
	"github.com/hearback/hearback/pkg/log"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		log.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
