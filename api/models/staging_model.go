package models

import (
	"sync"
	"time"

	ttlworker "github.com/FloatTech/ttl"
	"github.com/moyoez/ticketpanel-go/staging"
	"github.com/moyoez/ticketpanel-go/tool"
	"github.com/moyoez/ticketpanel-go/types"
)

// StagingSessionTTL is how long an untouched staging session survives.
const StagingSessionTTL = 60 * time.Minute

var (
	stagingMu          sync.RWMutex
	stagingSessions    = ttlworker.NewCache[string, *staging.Staging](StagingSessionTTL)
	stagingConstraints = types.AttachmentConstraints{
		MaxFileSizeBytes:  10 << 20,
		MaxTotalSizeBytes: 50 << 20,
		AllowedMimeTypes:  tool.DefaultAllowedTypes,
	}
)

// SetAttachmentConstraints sets the limits used by sessions created from now on.
// Existing sessions keep the constraints they were created with.
func SetAttachmentConstraints(c types.AttachmentConstraints) {
	stagingMu.Lock()
	defer stagingMu.Unlock()
	stagingConstraints = c
}

func GetAttachmentConstraints() types.AttachmentConstraints {
	stagingMu.RLock()
	defer stagingMu.RUnlock()
	return stagingConstraints
}

// CreateStagingSession opens an empty staging set and returns its id.
func CreateStagingSession() (string, *staging.Staging) {
	st := staging.New(GetAttachmentConstraints())
	sessionId := tool.GenerateRandomUUID()

	stagingMu.Lock()
	defer stagingMu.Unlock()
	stagingSessions.Set(sessionId, st)
	return sessionId, st
}

// GetStagingSession returns the session, or nil when it is unknown or expired.
func GetStagingSession(sessionId string) *staging.Staging {
	stagingMu.RLock()
	defer stagingMu.RUnlock()
	return stagingSessions.Get(sessionId)
}

// TouchStagingSession restarts the idle timer of a session after it changed.
func TouchStagingSession(sessionId string, st *staging.Staging) {
	stagingMu.Lock()
	defer stagingMu.Unlock()
	stagingSessions.Set(sessionId, st)
}

// RemoveStagingSession clears and forgets a session, e.g. when the modal is dismissed.
func RemoveStagingSession(sessionId string) {
	stagingMu.Lock()
	defer stagingMu.Unlock()
	if st := stagingSessions.Get(sessionId); st != nil {
		st.Clear()
	}
	stagingSessions.Delete(sessionId)
}
