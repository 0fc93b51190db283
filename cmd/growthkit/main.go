package main

import (
	"growthkit/cmd/cmd"
	"growthkit/internal/logger"
)

func main() {
	logger.Init()
	cmd.Execute()
}
