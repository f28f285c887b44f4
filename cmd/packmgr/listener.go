package main

import (
	"fmt"
	"io"

	"github.com/spf13/viper"

	"github.com/granite-tools/packmgr/pkg/response"
)

// consoleListener echoes console command progress like the package manager
// UI does.
type consoleListener struct {
	w io.Writer
}

func (l consoleListener) OnStart(title string) {
	fmt.Fprintf(l.w, "== %s\n", title)
}

func (l consoleListener) OnLog(message string) {
	fmt.Fprintln(l.w, message)
}

func (l consoleListener) OnMessage(message string) {
	fmt.Fprintln(l.w, message)
}

func (l consoleListener) OnProgress(action, path string) {
	fmt.Fprintf(l.w, "%s %s\n", action, path)
}

func (l consoleListener) OnError(path, message string) {
	fmt.Fprintf(l.w, "E %s (%s)\n", path, message)
}

// progressListener echoes to w in table mode and always logs through zap.
func progressListener(w io.Writer) response.Listener {
	ls := response.Listeners{response.NewLoggingListener(logger)}
	if f := viper.GetString("output"); f == "table" || f == "" {
		ls = append(ls, consoleListener{w: w})
	}
	return ls
}
