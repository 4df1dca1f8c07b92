package services

import "pointplay-backend/internal/models"

// Broadcaster pushes fresh session state to connected clients.
type Broadcaster interface {
	BroadcastState(snapshot models.SessionSnapshot)
	CloseSession(sessionID string)
}

type noopBroadcaster struct{}

func (noopBroadcaster) BroadcastState(models.SessionSnapshot) {}

func (noopBroadcaster) CloseSession(string) {}
