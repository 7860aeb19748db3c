package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/automoto/bouncerz-mp/shared/directory"
)

const maxRequestBody = 1 << 16 // 64 KB

var errBadQuery = errors.New("bad query")

// api serves the directory endpoints over one registry.
type api struct {
	reg *Registry
}

func newMux(reg *Registry) *http.ServeMux {
	a := &api{reg: reg}
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+directory.PathList, a.list)
	mux.HandleFunc("POST "+directory.PathRegister, a.register)
	mux.HandleFunc("POST "+directory.PathHeartbeat, a.heartbeat)
	mux.HandleFunc("GET /health", a.health)
	return mux
}

// list answers GET /servers?region=&version=&sort=players|rooms&limit=.
func (a *api) list(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, a.reg.List(q))
}

func (a *api) register(w http.ResponseWriter, r *http.Request) {
	var req directory.RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" || req.Address == "" {
		writeError(w, http.StatusBadRequest, "name and address required")
		return
	}
	if req.Rooms < 0 || req.Players < 0 {
		writeError(w, http.StatusBadRequest, "negative counts")
		return
	}

	id := a.reg.Register(directory.ServerInfo{
		Name:    req.Name,
		Address: req.Address,
		Rooms:   req.Rooms,
		Players: req.Players,
		Version: req.Version,
		Region:  req.Region,
	})
	log.Printf("[master] %s %q at %s joined the directory (%d rooms)", id, req.Name, req.Address, req.Rooms)
	writeJSON(w, http.StatusCreated, directory.RegisterResponse{ID: id})
}

func (a *api) heartbeat(w http.ResponseWriter, r *http.Request) {
	var req directory.HeartbeatRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Rooms < 0 || req.Players < 0 {
		writeError(w, http.StatusBadRequest, "negative counts")
		return
	}
	if !a.reg.Heartbeat(req.ID, req.Rooms, req.Players) {
		writeError(w, http.StatusNotFound, "unknown server")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *api) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.reg.Summary())
}

func parseListQuery(v url.Values) (listQuery, error) {
	q := listQuery{
		region:  v.Get(directory.QueryRegion),
		version: v.Get(directory.QueryVersion),
		sort:    v.Get(directory.QuerySort),
	}
	switch q.sort {
	case "", directory.SortPlayers, directory.SortRooms:
	default:
		return q, fmt.Errorf("%w: unknown sort %q", errBadQuery, q.sort)
	}
	if s := v.Get(directory.QueryLimit); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return q, fmt.Errorf("%w: limit %q", errBadQuery, s)
		}
		q.limit = n
	}
	return q, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[master] encode response: %v", err)
	}
}
