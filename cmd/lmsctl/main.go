// Command lmsctl drives the LMS portal session from a terminal.
package main

import "github.com/edulearn/lms/cmd/lmsctl/cmd"

func main() {
	cmd.Execute()
}
