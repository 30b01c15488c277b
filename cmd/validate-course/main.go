package main

import (
	"os"

	"github.com/mvp-joe/course-validator/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
