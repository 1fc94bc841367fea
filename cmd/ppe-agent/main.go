package main

import (
	"flag"
	"log/slog"
	"net/http"

	"ppeagent/lib/configutil"
	"ppeagent/lib/scrapers/energa"
	"ppeagent/lib/serviceutil"
	"ppeagent/services/measurements"
)

func main() {
	verbose := flag.Bool("v", false, "Enable verbose logging/instrumentation.")
	configPath := flag.String("config", "config.json5", "Path to the agent configuration file.")
	flag.Parse()

	ctx := serviceutil.SignalContext()

	InitTelemetry(ctx, *verbose)

	cfg, err := configutil.ReadConfig[Config](*configPath)
	if err != nil {
		serviceutil.Fatal("read config", err)
	}
	if err := cfg.normalize(); err != nil {
		serviceutil.Fatal("validate config", err)
	}

	creds, err := energa.NewCredentials(cfg.Credentials.Email, cfg.Credentials.Password)
	if err != nil {
		serviceutil.Fatal("validate credentials", err)
	}
	client, err := energa.NewClient(ctx, energa.ClientOptions{
		Credentials: creds,
		MaxAttempts: cfg.MaxRetries,
		Timeout:     cfg.timeout(),
	})
	if err != nil {
		serviceutil.Fatal("init energa client", err)
	}

	// the inbound surface must not come up unless login succeeded
	if err := client.Login(ctx); err != nil {
		serviceutil.Fatal("login to energa", err)
	}

	service := measurements.NewService(client, cfg.timeout())
	mux := http.NewServeMux()
	service.RegisterRoutes(mux, cfg.AssetsPath)

	go serviceutil.StartHttpServer(cfg.Port, mux)
	<-ctx.Done()

	// the signal context is already canceled here, the logout policy
	// tolerates that so repeated interrupts cannot abort the teardown
	if err := client.Logout(ctx); err != nil {
		slog.Error("logout from energa", "err", err)
	}
}
