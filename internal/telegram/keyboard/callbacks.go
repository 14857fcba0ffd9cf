package keyboard

import (
	"fmt"
	"strings"
)

const (
	ActionPrefix   = "action"
	DownloadPrefix = "dl"

	ActionStart      = "start"
	ActionRegenerate = "regenerate"
	ActionCancel     = "cancel"
)

// CallbackData is a parsed "<action>:<value>" button payload
type CallbackData struct {
	Action string
	Value  string
}

func ParseCallback(data string) (*CallbackData, error) {
	action, value, ok := strings.Cut(data, ":")
	if !ok || action == "" || value == "" {
		return nil, fmt.Errorf("invalid callback format: %s", data)
	}

	return &CallbackData{Action: action, Value: value}, nil
}

func EncodeCallback(action, value string) string {
	return action + ":" + value
}
