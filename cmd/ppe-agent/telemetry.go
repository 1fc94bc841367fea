package main

import (
	"context"

	"ppeagent/lib/serviceutil"
	"ppeagent/lib/telemetry"
)

func InitTelemetry(ctx context.Context, verbose bool) {
	telemetry.InitSlog(verbose)

	tel, err := telemetry.SetupFromEnv(ctx, "ppe-agent")
	if err != nil {
		serviceutil.Fatal("setup telemetry", err)
	}
	go func() {
		<-ctx.Done()
		tel.Shutdown(context.Background())
	}()
}
