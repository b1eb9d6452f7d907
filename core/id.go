package core

import (
	"github.com/google/uuid"

	"pkt.systems/nikiai/schema"
)

func newMessageID() schema.MessageID {
	return schema.MessageID(uuid.NewString())
}
