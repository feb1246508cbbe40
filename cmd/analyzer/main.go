package main

// Run the reference analysis provider:
//   go run ./cmd/analyzer serve --port 5001

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
