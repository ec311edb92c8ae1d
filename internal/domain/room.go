package domain

type (
	RoomID  string
	Channel string
)

const (
	ChannelPublic  Channel = "public"
	ChannelPrivate Channel = "private"
)

// PublicRoom is the single implicit target of the public channel.
const PublicRoom RoomID = "public"

func (c Channel) Valid() bool {
	return c == ChannelPublic || c == ChannelPrivate
}
