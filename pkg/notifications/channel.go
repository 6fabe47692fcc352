package notifications

import (
	"fmt"
	"slices"
	"strings"
)

// Channel identifies a delivery medium. Like EventType, values come from a
// closed registry and the zero value is invalid.
type Channel struct {
	name string
}

var (
	ChannelEmail        = Channel{"email"}
	ChannelSMS          = Channel{"sms"}
	ChannelConsole      = Channel{"console"}
	ChannelTelegram     = Channel{"telegram"}
	ChannelDiscord      = Channel{"discord"}
	ChannelWhatsApp     = Channel{"whatsapp"}
	ChannelSlack        = Channel{"slack"}
	ChannelMSTeams      = Channel{"msteams"}
	ChannelWebPush      = Channel{"webpush"}
	ChannelFirebasePush = Channel{"firebasepush"}
	ChannelSignal       = Channel{"signal"}
)

var (
	allChannels = []Channel{
		ChannelEmail,
		ChannelSMS,
		ChannelConsole,
		ChannelTelegram,
		ChannelDiscord,
		ChannelWhatsApp,
		ChannelSlack,
		ChannelMSTeams,
		ChannelWebPush,
		ChannelFirebasePush,
		ChannelSignal,
	}
	channelsByName = indexByName(allChannels, Channel.String)
)

// ParseChannel resolves a channel by name. Surrounding whitespace and letter
// case are ignored.
func ParseChannel(name string) (Channel, error) {
	ch, ok := channelsByName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Channel{}, fmt.Errorf("%w: %q", ErrUnknownChannel, name)
	}
	return ch, nil
}

// MustParseChannel is like ParseChannel but panics on unknown names.
func MustParseChannel(name string) Channel {
	ch, err := ParseChannel(name)
	if err != nil {
		panic(err)
	}
	return ch
}

// AllChannels returns every registered channel in registration order.
func AllChannels() []Channel {
	return slices.Clone(allChannels)
}

// IsSupportedChannel reports whether ch is a member of the registry.
func IsSupportedChannel(ch Channel) bool {
	_, ok := channelsByName[ch.name]
	return ok
}

func (c Channel) String() string {
	return c.name
}

func (c Channel) IsZero() bool {
	return c.name == ""
}

func (c Channel) MarshalText() ([]byte, error) {
	return []byte(c.name), nil
}

func (c *Channel) UnmarshalText(text []byte) error {
	parsed, err := ParseChannel(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// CompareChannels orders channels by name. Suitable for slices.SortFunc.
func CompareChannels(a, b Channel) int {
	return strings.Compare(a.name, b.name)
}
