package stream

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"armsim/pkg/errors"
	"armsim/pkg/log"
	"armsim/pkg/sim"
)

// wsClient is one connected WebSocket consumer.
type wsClient struct {
	id      int64
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *wsClient) writeJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(v)
}

func (c *wsClient) close() {
	_ = c.conn.Close()
}

// runCommand is the message a client sends to start trajectory playback.
type runCommand struct {
	Command  string      `json:"command"`
	Request  sim.Request `json:"request"`
	Realtime bool        `json:"realtime"`
}

// playback frame types
type startFrame struct {
	Type        string  `json:"type"` // "start"
	SampleCount int     `json:"sample_count"`
	Duration    float64 `json:"duration"`
}

type sampleFrame struct {
	Type   string  `json:"type"` // "sample"
	T      float64 `json:"t"`
	Theta1 float64 `json:"theta1"`
	Theta2 float64 `json:"theta2"`
	Omega1 float64 `json:"omega1"`
	Omega2 float64 `json:"omega2"`
	Alpha1 float64 `json:"alpha1"`
	Alpha2 float64 `json:"alpha2"`

	// Arm pose for renderers: intermediate joint and end effector
	JointX float64 `json:"joint_x"`
	JointY float64 `json:"joint_y"`
	EndX   float64 `json:"end_x"`
	EndY   float64 `json:"end_y"`
}

type completeFrame struct {
	Type string `json:"type"` // "complete"
}

type errorFrame struct {
	Type    string `json:"type"` // "error"
	Code    string `json:"code"`
	Message string `json:"message"`
}

// handleWebSocket upgrades the connection and serves run commands. Each
// run replays the generated trajectory as one frame per sample so a
// renderer can animate successive arm poses; with "realtime" set the
// frames are paced by the sampling time step.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed: %v", err)
		return
	}

	s.wsClientMu.Lock()
	s.nextWSID++
	client := &wsClient{id: s.nextWSID, conn: conn}
	s.wsClients[client.id] = client
	s.wsClientMu.Unlock()

	s.logger.WithField("client", client.id).Debug("websocket client connected")
	defer func() {
		s.wsClientMu.Lock()
		delete(s.wsClients, client.id)
		s.wsClientMu.Unlock()
		client.close()
		s.logger.WithField("client", client.id).Debug("websocket client disconnected")
	}()

	for {
		var cmd runCommand
		if err := conn.ReadJSON(&cmd); err != nil {
			return
		}

		switch cmd.Command {
		case "run":
			s.streamRun(client, cmd)
		default:
			_ = client.writeJSON(errorFrame{
				Type:    "error",
				Code:    "UNKNOWN_COMMAND",
				Message: "unknown command: " + cmd.Command,
			})
		}
	}
}

// streamRun executes one request and streams the trajectory to the client.
func (s *Server) streamRun(client *wsClient, cmd runCommand) {
	result, err := s.simulator.Run(cmd.Request)
	if err != nil {
		frame := errorFrame{Type: "error", Code: "INTERNAL", Message: err.Error()}
		if simErr := errors.AsSimError(err); simErr != nil {
			frame.Code = string(simErr.Code)
			frame.Message = simErr.Message
		}
		_ = client.writeJSON(frame)
		return
	}

	tr := result.Trajectory
	if err := client.writeJSON(startFrame{
		Type:        "start",
		SampleCount: len(tr),
		Duration:    tr.Duration(),
	}); err != nil {
		return
	}

	for _, smp := range tr {
		jointX, jointY, endX, endY := result.Arm.JointPositions(smp.Theta1, smp.Theta2)
		frame := sampleFrame{
			Type:   "sample",
			T:      smp.T,
			Theta1: smp.Theta1,
			Theta2: smp.Theta2,
			Omega1: smp.Omega1,
			Omega2: smp.Omega2,
			Alpha1: smp.Alpha1,
			Alpha2: smp.Alpha2,
			JointX: jointX,
			JointY: jointY,
			EndX:   endX,
			EndY:   endY,
		}
		if err := client.writeJSON(frame); err != nil {
			return
		}
		if cmd.Realtime {
			time.Sleep(time.Duration(cmd.Request.Sampling.TimeStep * float64(time.Second)))
		}
	}

	_ = client.writeJSON(completeFrame{Type: "complete"})
	s.logger.WithFields(log.Fields{
		"client":  client.id,
		"samples": len(tr),
	}).Debug("trajectory playback complete")
}
