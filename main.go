// Command ccmonitor watches Claude usage snapshots from the terminal.
package main

import "github.com/theirongolddev/ccmonitor/cmd"

func main() {
	cmd.Execute()
}
