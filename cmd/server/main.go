package main

import (
	"github.com/OFFIS-RIT/plotline/backend/internal/server"
	"github.com/OFFIS-RIT/plotline/backend/internal/util"
)

func main() {
	util.LoadEnv()
	util.InitLogger()

	server.Init()
}
