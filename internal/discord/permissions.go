package discord

import (
	"github.com/bwmarrin/discordgo"
)

// IsAdministrator reports whether userID owns the guild or holds the administrator
// permission in channelID.
func (b *Bot) IsAdministrator(guildID, channelID, userID string) bool {
	guild, err := b.dg.State.Guild(guildID)
	if err != nil || guild == nil {
		guild, err = b.dg.Guild(guildID)
		if err != nil || guild == nil {
			return false
		}
	}
	if userID == guild.OwnerID {
		return true
	}

	perms, err := b.dg.UserChannelPermissions(userID, channelID)
	if err != nil {
		b.log.Debug().Err(err).Str("user", userID).Msg("failed to read channel permissions")
		return false
	}
	return perms&discordgo.PermissionAdministrator != 0
}
