package operator

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// StationLister exposes the fleet's station ids to the operator
// channel's listChargingStations command (spec.md §6).
type StationLister interface {
	StationIDs() []string
}

// Server is the operator UI WebSocket collaborator (spec.md §6):
// `[command, payload]` JSON-array framing, grounded on the teacher
// pack's upgrader-per-connection pattern (ruslan-hut-evsys/server/server.go)
// generalized from a per-charge-point endpoint to a single fleet-wide
// control channel.
type Server struct {
	upgrader websocket.Upgrader
	lister   StationLister
	log      *logrus.Entry
}

// NewServer builds the operator channel server.
func NewServer(lister StationLister, log *logrus.Entry) *Server {
	return &Server{
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		lister:   lister,
		log:      log,
	}
}

// Handler returns the HTTP handler to mount on the fleet process's
// operator listen address.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/operator", s.handleConnection)
	return mux
}

func (s *Server) handleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("operator websocket upgrade failed")
		return
	}
	defer conn.Close()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		s.dispatch(conn, data)
	}
}

func (s *Server) dispatch(conn *websocket.Conn, data []byte) {
	var frame []json.RawMessage
	if err := json.Unmarshal(data, &frame); err != nil || len(frame) == 0 {
		s.writeError(conn, "", "malformed frame: expected a [command, payload] array")
		return
	}

	var command string
	if err := json.Unmarshal(frame[0], &command); err != nil {
		s.writeError(conn, "", "malformed command: expected a string")
		return
	}

	switch command {
	case "listChargingStations":
		s.writeResult(conn, command, s.lister.StationIDs())
	default:
		s.writeError(conn, command, "unknown command")
	}
}

func (s *Server) writeResult(conn *websocket.Conn, command string, payload interface{}) {
	if err := conn.WriteJSON([]interface{}{command, payload}); err != nil {
		s.log.WithError(err).Warn("operator websocket write failed")
	}
}

func (s *Server) writeError(conn *websocket.Conn, command, message string) {
	if err := conn.WriteJSON([]interface{}{command, map[string]string{"error": message}}); err != nil {
		s.log.WithError(err).Warn("operator websocket write failed")
	}
}
