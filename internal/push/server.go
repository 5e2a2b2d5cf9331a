package push

import (
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/giveme-app/giveme-api/internal/utils"
)

// Server exposes the realtime gateway over plain net/http. The REST API
// runs on fasthttp via Fiber; WebSocket upgrades live on their own listener.
type Server struct {
	hub        *Hub
	jwtService *utils.JWTService
	upgrader   websocket.Upgrader
}

// NewServer creates a new Server instance
func NewServer(hub *Hub, jwtService *utils.JWTService) *Server {
	return &Server{
		hub:        hub,
		jwtService: jwtService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Handler returns the HTTP handler for the realtime endpoint
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/realtime", s.handleRealtime)
	return mux
}

// Listen serves the realtime endpoint until the process exits
func (s *Server) Listen(addr string) error {
	log.Printf("✅ realtime gateway listening on %s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) handleRealtime(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	userID, err := s.jwtService.ExtractUserID(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		http.Error(w, "invalid user ID", http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("error upgrading connection: %v", err)
		return
	}

	client := NewClient(userUUID, conn, s.hub)
	client.Start()
}
