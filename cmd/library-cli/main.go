package main

import (
	"scpbot-backend/cmd/library-cli/cmd"
)

func main() {
	cmd.Execute()
}
