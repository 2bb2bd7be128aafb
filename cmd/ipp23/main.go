// Command ipp23 is the CLI entry point for the IPPcode23 interpreter.
package main

import "os"

func main() {
	os.Exit(Execute())
}
