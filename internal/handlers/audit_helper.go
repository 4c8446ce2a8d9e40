package handlers

import (
	"github.com/BruksfildServices01/consultorio-api/internal/audit"
	"github.com/BruksfildServices01/consultorio-api/internal/auth"
)

func auditEvent(
	p auth.Principal,
	action string,
	entity string,
	entityID *uint,
	meta any,
) audit.Event {

	ev := audit.Event{
		Username: p.Username,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Metadata: meta,
	}
	if p.UserID != 0 {
		uid := p.UserID
		ev.UserID = &uid
	}
	return ev
}
