package main

import (
	"context"
	"flag"
	"sync"
	"time"

	"cso2web/pkg/cache"
	"cso2web/pkg/config"
	"cso2web/pkg/inventory"
	"cso2web/pkg/log"
	"cso2web/pkg/maps"
	"cso2web/pkg/ping"
	"cso2web/pkg/users"
	"cso2web/pkg/web"
)

const (
	serviceProbeInterval = 5 * time.Second
	mapImageDir          = "public/maps"
)

func main() {
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	if *debug {
		log.SetDebugMode()
		log.Debug().Msg("Debug mode enabled")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	userGate := ping.New("userservice", cfg.UserSvcAuthority)
	inventoryGate := ping.New("inventoryservice", cfg.InventorySvcAuthority)

	waitForServices(userGate, inventoryGate)

	log.Info().Str("host", userGate.Host()).Msg("Connected to the user service")
	log.Info().Str("host", inventoryGate.Host()).Msg("Connected to the inventory service")

	userCache := cache.New()
	usersSvc := users.New(cfg.UserSvcAuthority, userGate, userCache)
	// Inventory bootstrap endpoints are hosted by the user service; the
	// inventory service authority is only a startup liveness dependency.
	inventorySvc := inventory.New(cfg.UserSvcAuthority, userGate)

	mapImages := maps.Build(mapImageDir)
	log.Info().Int("count", mapImages.Count()).Msg("Found map images")

	userGate.Monitor(serviceProbeInterval)
	inventoryGate.Monitor(serviceProbeInterval)
	defer userGate.Stop()
	defer inventoryGate.Stop()

	server, err := web.NewServer(usersSvc, inventorySvc, userGate, mapImages)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build server")
	}

	if err := server.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("Server failed to start")
	}
}

// waitForServices blocks until every required dependency reports alive,
// probing all of them concurrently every 5 seconds.
func waitForServices(gates ...*ping.Service) {
	probe := func() bool {
		ctx, cancel := context.WithTimeout(context.Background(), serviceProbeInterval)
		defer cancel()

		var waitGroup sync.WaitGroup
		for _, gate := range gates {
			waitGroup.Add(1)
			go func(g *ping.Service) {
				defer waitGroup.Done()
				g.CheckNow(ctx)
			}(gate)
		}
		waitGroup.Wait()

		for _, gate := range gates {
			if !gate.IsAlive() {
				return false
			}
		}
		return true
	}

	if probe() {
		return
	}

	ticker := time.NewTicker(serviceProbeInterval)
	defer ticker.Stop()

	for range ticker.C {
		for _, gate := range gates {
			log.Warn().
				Str("service", gate.Name()).
				Str("host", gate.Host()).
				Bool("online", gate.IsAlive()).
				Msg("Waiting for required service")
		}

		if probe() {
			return
		}
	}
}
