// Package main - test_runner.go
// Executable to run scripted gameplay scenarios against the engine.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/MRamiBalles/ClickAndHide/server/test"
)

func main() {
	fmt.Println("CLICK & HIDE - SCENARIO TEST SUITE")
	fmt.Println("==================================")

	ctx := context.Background()

	fmt.Println("\nIniciando Test: El Primer Minuto...")
	firstMinute := test.NewFirstMinuteTest()
	firstMinute.RunTest(ctx)

	// Summary
	results := firstMinute.GetResults()
	passed := 0
	failed := 0

	for _, r := range results {
		status := "PASS"
		if r.Passed {
			passed++
		} else {
			failed++
			status = "FAIL"
		}
		fmt.Printf("  [%s] %-28s %s\n", status, r.ScenarioName, r.Detail)
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("RESUMEN DE PRUEBAS")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("   Pasadas: %d\n", passed)
	fmt.Printf("   Falladas: %d\n", failed)

	if failed > 0 {
		os.Exit(1)
	}
}
