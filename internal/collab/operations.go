package collab

import (
	"context"
	"encoding/json"
	"log/slog"
)

// handleEventSubmit applies a client's input events to the session and
// answers with an ack carrying the new revision or a nack with the reason.
// Model changes reach every client through the session's doc.change
// broadcast, not through the ack.
func (h *Hub) handleEventSubmit(ctx context.Context, sender *Client, msg *Message) {
	var submit EventSubmitPayload
	if err := json.Unmarshal(msg.Payload, &submit); err != nil {
		h.nack(sender, msg.Seq, "invalid event payload")
		return
	}
	if len(submit.Events) == 0 {
		h.nack(sender, msg.Seq, "no events")
		return
	}
	if h.dispatch == nil {
		h.nack(sender, msg.Seq, "session does not accept events")
		return
	}

	rev, err := h.dispatch(ctx, sender.SessionID, submit.Events)
	if err != nil {
		slog.Debug("event rejected", "client", sender.ClientID, "session", sender.SessionID, "error", err)
		h.nack(sender, msg.Seq, err.Error())
		return
	}

	ack, err := newMessage(TypeEventAck, EventAckPayload{Revision: rev})
	if err != nil {
		return
	}
	ack.Seq = msg.Seq
	sender.Send(ack)
	h.acknowledged(sender, rev)
}

func (h *Hub) nack(sender *Client, seq int64, reason string) {
	nack, err := newMessage(TypeEventNack, EventNackPayload{Reason: reason})
	if err != nil {
		return
	}
	nack.Seq = seq
	sender.Send(nack)
}
