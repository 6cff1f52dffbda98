package cli

import (
	"io"
	"os"
)

// RunOptions contains all the configuration for the Run command.
type RunOptions struct {
	Dir       string
	RulesPath string
	SessionID string
	JSON      bool
	Debug     bool
	Fresh     bool
	Version   string

	In  io.Reader
	Out io.Writer
}

func (o RunOptions) withDefaults() RunOptions {
	if o.Dir == "" {
		o.Dir = "."
	}
	if o.In == nil {
		o.In = os.Stdin
	}
	if o.Out == nil {
		o.Out = os.Stdout
	}
	return o
}
