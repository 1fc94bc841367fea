package main

import (
	"context"

	"ppeagent/cmd/energa-cli/commands"
	"ppeagent/lib/telemetry"
)

func main() {
	telemetry.InitSlog(true)
	commands.ExecuteContext(context.Background())
}
