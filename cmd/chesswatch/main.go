// Package main provides the chesswatch CLI for running rating update
// cycles, game reviews, and archive imports without the server.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
