package console

import (
	"context"
	"fmt"

	"matterm/internal/protocol"
)

// JoinOutcome carries the results of the awaited half of the join flow.
// VerifyErr is non-nil when device verification failed; the room is still
// entered since verification only affects encryption trust, not
// membership.
type JoinOutcome struct {
	Room      protocol.Room
	History   []protocol.TimelineEvent
	VerifyErr error
}

// RunJoin performs the awaited steps of entering a room: a join request
// when the local user is only invited, best-effort device verification,
// then a bounded initial sync. It mutates nothing; the caller commits the
// room on success. Any transport error aborts the whole transition.
func RunJoin(ctx context.Context, client protocol.Client, room protocol.Room, pageSize int) (JoinOutcome, error) {
	if room.MembershipOf(client.UserID()) == protocol.MembershipInvite {
		if err := client.JoinRoom(ctx, room.ID()); err != nil {
			return JoinOutcome{}, fmt.Errorf("join %s: %w", room.ID(), err)
		}
	}

	verifyErr := client.VerifyRoom(ctx, room.ID())

	history, err := client.InitialSync(ctx, room.ID(), pageSize)
	if err != nil {
		return JoinOutcome{}, fmt.Errorf("initial sync for %s: %w", room.ID(), err)
	}

	return JoinOutcome{Room: room, History: history, VerifyErr: verifyErr}, nil
}
