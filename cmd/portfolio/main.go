// Command portfolio parses a resume and builds a portfolio site from the
// command line.
package main

func main() {
	Execute()
}
