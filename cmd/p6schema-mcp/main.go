// p6schema-mcp exposes the schema query operations as MCP tools over
// stdio, for use by LLM clients.
package main

import (
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/p6tools/p6schema"
	"github.com/p6tools/p6schema/internal/registry"
)

func init() {
	// A local .env can set P6SCHEMA_DIR and P6SCHEMA_CONFIG.
	_ = godotenv.Load()
}

func main() {
	// Stdout carries the protocol, so logs go to stderr.
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)
	sugar := logger.Sugar()

	s := server.NewMCPServer(
		"p6schema",
		p6schema.Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	registerTools(s)

	sugar.Infow("starting p6schema MCP server",
		"version", p6schema.Version,
		"schema_dir", registry.DefaultDir(),
	)
	if err := server.ServeStdio(s); err != nil {
		sugar.Fatalf("server error: %v", err)
	}
}
