package proc

import "fmt"

// OSD drives the on-screen-display client for volume and brightness keys.
type OSD struct {
	Client  string
	Starter Starter
}

var osdActions = map[string]string{
	"volup":    "--volup",
	"voldown":  "--voldown",
	"mute":     "--mute",
	"dispup":   "--dispup",
	"dispdown": "--dispdown",
}

func (o OSD) Fire(action string) error {
	flag, ok := osdActions[action]
	if !ok {
		return fmt.Errorf("unknown osd action: %s", action)
	}

	client := o.Client
	if client == "" {
		client = "osd-client"
	}
	program, err := FindExecutable(client)
	if err != nil {
		program = client
	}
	return o.Starter.Start(program, []string{flag})
}
