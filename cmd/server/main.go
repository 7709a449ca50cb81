package main

import (
	"github.com/chrisjgf/ez-stablecoin/internal/server"
)

// @title ez-stablecoin status API
// @version 1.0
// @description Workflow status service for the GBP to USDC transfer pipeline.

// @BasePath /
func main() {
	server.Init()
}
