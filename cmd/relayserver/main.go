// Command relayserver boots the LAN relay: the WebSocket signaling/relay
// hub plus the REST asset store. It holds no gameplay authority itself —
// the host simulation loop (internal/simhost) runs inside whichever
// browser peer is the room's host.
package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/lanarena/relay/internal/assets"
	"github.com/lanarena/relay/internal/config"
	"github.com/lanarena/relay/internal/observability"
	"github.com/lanarena/relay/internal/relay"
	"github.com/lanarena/relay/internal/room"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables only")
	} else {
		log.Println("loaded environment from .env")
	}

	log.Println("================================")
	log.Println(" LAN ARENA RELAY")
	log.Println("================================")

	cfg := config.Load()
	log.Printf("sim: %d Hz tick, %d Hz snapshot, %dms max dt", cfg.Simulation.TickRate, cfg.Simulation.SnapshotHz, cfg.Simulation.MaxDtMs)
	log.Printf("rooms: default %d players, %d rounds to win, %d kill limit", cfg.Rooms.DefaultMaxPlayers, cfg.Rooms.DefaultRoundsToWin, cfg.Rooms.DefaultKillLimit)

	store := assets.NewStore(cfg.Server.AssetsDir)
	if err := assets.SeedDefaultHeroes(store); err != nil {
		log.Printf("hero seeding failed: %v", err)
	} else {
		log.Printf("assets: seeded default heroes under %s/heroes", cfg.Server.AssetsDir)
	}

	events := relay.NewEventLog()
	if err := events.Start(cfg.Server.EventLogPath); err != nil {
		log.Printf("event log disabled: %v", err)
	} else {
		log.Printf("event log: %s", cfg.Server.EventLogPath)
	}
	defer events.Stop()

	rooms := room.NewManager(nil)
	hub := relay.NewHub(rooms, events)
	rooms.Broadcaster = hub
	hub.SetGameStartHook(func(roomID string, peers []string) {
		log.Printf("room %s: game started with %d peers, host=%s", roomID, len(peers), peers[0])
	})

	presets, err := config.LoadRoomPresets(os.Getenv("ROOM_PRESETS_FILE"))
	if err != nil {
		log.Printf("room presets disabled: %v", err)
	} else {
		log.Printf("room presets: %d loaded", len(presets))
	}

	rateLimiter := relay.NewIPRateLimiter(relay.DefaultRateLimitConfig)
	assetRouter := assets.NewRouter(assets.RouterConfig{
		Store:       store,
		RateLimiter: rateLimiter,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/api/presets", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(presets)
	})
	mux.Handle("/api/", assetRouter)
	mux.Handle("/health", assetRouter)
	mux.HandleFunc("/ws", hub.ServeWS)

	if cfg.Observability.Enabled {
		observability.StartDebugServer(observability.Config{Enabled: true, ListenAddr: cfg.Observability.ListenAddr})
	}

	addr := ":" + strconv.Itoa(cfg.Server.Port)
	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		log.Printf("relay listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("relay server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Println("shutting down")
	server.Close()
}
