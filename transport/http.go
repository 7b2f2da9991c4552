package transport

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/beka-birhanu/janggi-game-server/service/i"
	general_i "github.com/beka-birhanu/vinom-common/interfaces/general"
	"github.com/gorilla/mux"
)

type roomView struct {
	Title    string `json:"title"`
	Players  int    `json:"players"`
	Capacity int    `json:"capacity"`
	InGame   bool   `json:"inGame"`
	Private  bool   `json:"private"`
}

type lobbyView struct {
	Rooms []roomView `json:"rooms"`
	Users []string   `json:"users"`
}

func toView(s i.RoomSummary) roomView {
	return roomView{
		Title:    s.Title,
		Players:  s.Players,
		Capacity: s.Capacity,
		InGame:   s.InGame,
		Private:  s.Private,
	}
}

// NewRouter mounts the WebSocket endpoint and the read-only lobby API.
func NewRouter(dir i.Directory, ws http.Handler, logger general_i.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Handle("/ws", ws).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	r.HandleFunc("/rooms", func(w http.ResponseWriter, _ *http.Request) {
		summaries := dir.RoomSummaries()
		view := lobbyView{Rooms: make([]roomView, 0, len(summaries)), Users: dir.Nicknames()}
		for _, s := range summaries {
			view.Rooms = append(view.Rooms, toView(s))
		}
		if view.Users == nil {
			view.Users = []string{}
		}
		writeJSON(w, http.StatusOK, view, logger)
	}).Methods(http.MethodGet)

	r.HandleFunc("/rooms/{title}", func(w http.ResponseWriter, req *http.Request) {
		title := mux.Vars(req)["title"]
		for _, s := range dir.RoomSummaries() {
			if s.Title == title {
				writeJSON(w, http.StatusOK, toView(s), logger)
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "room not found"}, logger)
	}).Methods(http.MethodGet)

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any, logger general_i.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error(fmt.Sprintf("encoding response: %s", err))
	}
}
