// cmd/halledit/main.go
package main

import (
	cmd "github.com/hujiayu1223/knowledge-editing/internal/commands"
)

// main starts the halledit CLI application by delegating to the cobra
// root command. It does not take any arguments and does not return a
// value.
func main() {
	cmd.Execute()
}
