package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"salesd/internal/dashboard"
)

func main() {
	_ = godotenv.Load()
	if err := dashboard.NewRootCmd(dashboard.DefaultConfig(), os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
