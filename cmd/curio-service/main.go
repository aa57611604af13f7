package main

import (
	"os"

	"github.com/curiohq/curio/server/curioservice"
)

func main() {
	if err := curioservice.Run(); err != nil {
		os.Exit(1)
	}
}
