package loopback

import (
	"time"

	"matterm/internal/protocol"
)

// SeedDemo populates a fresh session with the rooms the demo binary
// starts out with: a joined room with history, an invite waiting to be
// accepted and an encrypted room.
func SeedDemo(c *Client) {
	base := time.Now().Add(-30 * time.Minute)

	general := c.AddRoom("!general:loopback.local", "general", "Team chatter", protocol.MembershipJoin, false)
	general.SetMember("@ada:loopback.local", protocol.MembershipJoin)
	general.SetMember("@lin:loopback.local", protocol.MembershipJoin)
	general.Backfill("@ada:loopback.local", "morning all", base)
	general.Backfill("@lin:loopback.local", "standup in five", base.Add(2*time.Minute))
	general.Backfill("@ada:loopback.local", "omw", base.Add(3*time.Minute))

	random := c.AddRoom("!random:loopback.local", "random", "Anything goes", protocol.MembershipInvite, false)
	random.SetMember("@ada:loopback.local", protocol.MembershipJoin)
	random.Backfill("@ada:loopback.local", "welcome, grab a seat", base.Add(5*time.Minute))

	vault := c.AddRoom("!vault:loopback.local", "vault", "Encrypted planning", protocol.MembershipJoin, true)
	vault.SetMember("@lin:loopback.local", protocol.MembershipJoin)
	vault.Backfill("@lin:loopback.local", "keys rotated last night", base.Add(10*time.Minute))
}
