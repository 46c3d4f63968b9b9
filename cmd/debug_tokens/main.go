package main

import (
	"fmt"
	"os"

	"lexscan/pkg/lexer"
	"lexscan/pkg/printer"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run ./cmd/debug_tokens '<code>'")
		os.Exit(1)
	}

	input := os.Args[1]
	toks := lexer.ScanString(input)

	fmt.Printf("Input: %s\n\n", input)
	fmt.Println("Tokens:")
	fmt.Println("-------")

	if err := printer.PrintTable(os.Stdout, toks); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("-------\n%d token(s)\n", len(toks))
}
