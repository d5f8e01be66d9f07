package osc

import (
	"fmt"
	"strings"
)

// Address builders for the Eos "get" command family. Requests go out under
// /eos/get/..., the console answers under /eos/out/get/... with the same
// tail, so the reply address is derived rather than hand-built.

// GetChannel returns the request address for channel information.
func GetChannel(channel int) string {
	return fmt.Sprintf("/eos/get/chan/%d", channel)
}

// GetGroup returns the request address for group information.
func GetGroup(group int) string {
	return fmt.Sprintf("/eos/get/group/%d", group)
}

// GetMacro returns the request address for macro information.
func GetMacro(macro int) string {
	return fmt.Sprintf("/eos/get/macro/%d", macro)
}

// GetCue returns the request address for one cue in a cue list.
func GetCue(list int, cue string) string {
	return fmt.Sprintf("/eos/get/cue/%d/%s", list, cue)
}

// GetCueList returns the request address for cue list information.
func GetCueList(list int) string {
	return fmt.Sprintf("/eos/get/cuelist/%d", list)
}

// SetChannelLevel returns the command address for setting a channel level.
func SetChannelLevel(channel int) string {
	return fmt.Sprintf("/eos/chan/%d", channel)
}

// FireMacro returns the command address for firing a macro.
func FireMacro(macro int) string {
	return fmt.Sprintf("/eos/macro/%d/fire", macro)
}

// ReplyAddress maps a request address onto the address the console will
// answer on. Requests outside /eos/ are returned unchanged.
func ReplyAddress(request string) string {
	const requestNS = "/eos/"
	if !strings.HasPrefix(request, requestNS) {
		return request
	}
	return BroadcastNamespace + strings.TrimPrefix(request, requestNS)
}
