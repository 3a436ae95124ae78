// Package status exposes the session snapshot over a local HTTP endpoint,
// the read side of the presentation boundary for tooling and debugging.
package status

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-client/internal/core"
)

// StateResponse is the JSON shape of GET /state.
type StateResponse struct {
	Connection  string         `json:"connection"`
	ConnID      string         `json:"conn_id,omitempty"`
	Identity    string         `json:"identity"`
	Username    string         `json:"username,omitempty"`
	ActiveRoom  string         `json:"active_room"`
	OnlineUsers []core.User    `json:"online_users"`
	History     []core.Message `json:"history"`
	Notice      string         `json:"notice,omitempty"`
}

// SnapshotSource is the read access the endpoint needs.
type SnapshotSource interface {
	Snapshot() core.Snapshot
}

// NewServer builds the local status server. It is read-only and should be
// bound to localhost.
func NewServer(addr string, src SnapshotSource, logger *zerolog.Logger) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	router.GET("/state", func(c *gin.Context) {
		c.JSON(http.StatusOK, toResponse(src.Snapshot()))
	})

	logger.Info().Str("addr", addr).Msg("status endpoint enabled")
	return &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func toResponse(snap core.Snapshot) StateResponse {
	resp := StateResponse{
		Connection:  snap.Conn.String(),
		ConnID:      snap.ConnID,
		Identity:    snap.Identity.String(),
		Username:    snap.Username,
		ActiveRoom:  snap.ActiveRoom,
		OnlineUsers: snap.OnlineUsers,
		History:     snap.History,
		Notice:      snap.Notice,
	}
	// Render empty lists, not nulls.
	if resp.OnlineUsers == nil {
		resp.OnlineUsers = []core.User{}
	}
	if resp.History == nil {
		resp.History = []core.Message{}
	}
	return resp
}
