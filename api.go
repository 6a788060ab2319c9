package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

// REST surface consumed by the lobby client: list joinable games,
// create a game, look one up, and a sanitized debug dump. Gameplay
// itself happens on the websocket.

func writeJSON(cfg *Config, w http.ResponseWriter, errs chan<- error, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	securityHeaders(cfg, w)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		errs <- err
	}
}

func serveGames(cfg *Config, gl *GameList, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		views := gl.getAllGames()
		writeJSON(cfg, w, errs, views)

		logf(cfg, "SERVE: Game table (%d games) to %s in %s",
			len(views),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

func serveGamesByVariant(cfg *Config, gl *GameList, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		variant, err := parseVariant(ps.ByName("variant"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(cfg, w, errs, gl.getGamesByVariant(variant))
	}
}

func serveNewGame(cfg *Config, gl *GameList, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		variant, err := parseVariant(ps.ByName("variant"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		g := gl.createGame(variant)
		logf(cfg, "GAMES: Created game %d (%s) for %s", g.ID, variant, realIP(r))

		writeJSON(cfg, w, errs, g.view())
	}
}

func serveGame(cfg *Config, gl *GameList, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		id, err := strconv.Atoi(ps.ByName("gameid"))
		if err != nil {
			http.Error(w, "invalid game id", http.StatusBadRequest)
			return
		}

		g := gl.getGameByID(id)
		if g == nil {
			http.Error(w, "game not found", http.StatusNotFound)
			return
		}

		writeJSON(cfg, w, errs, g.view())
	}
}

func serveDebug(cfg *Config, gl *GameList, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		writeJSON(cfg, w, errs, gl.debugDump())
	}
}

// qrHandler generates a PNG QR code pointing at the game URL, so a
// host can put it on a screen for others to scan.
func qrHandler(gl *GameList) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		id, err := strconv.Atoi(ps.ByName("gameid"))
		if err != nil || gl.getGameByID(id) == nil {
			http.Error(w, "game not found", http.StatusNotFound)
			return
		}

		// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}

		// We are at /game/:gameid/qr; strip trailing "/qr" to get the game URL.
		path := strings.TrimSuffix(r.URL.Path, "/qr")

		url := scheme + "://" + r.Host + path

		const qrSize = 320 // mobile-friendly size
		png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(png)
	}
}

// registerGameRoutes wires the whole game surface: the joinable game
// tables, game creation and lookup, the shareable QR code, the registry
// dump, and the gameplay socket.
func registerGameRoutes(cfg *Config, gl *GameList, mux *httprouter.Router, errs chan<- error) {
	mux.GET(cfg.prefix+"/games", serveGames(cfg, gl, errs))
	mux.GET(cfg.prefix+"/games/:variant", serveGamesByVariant(cfg, gl, errs))
	mux.GET(cfg.prefix+"/new/:variant", serveNewGame(cfg, gl, errs))
	mux.GET(cfg.prefix+"/game/:gameid", serveGame(cfg, gl, errs))
	mux.GET(cfg.prefix+"/game/:gameid/qr", qrHandler(gl))
	mux.GET(cfg.prefix+"/debug", serveDebug(cfg, gl, errs))
	mux.GET(cfg.prefix+"/ws", serveWS(cfg, gl))
}
