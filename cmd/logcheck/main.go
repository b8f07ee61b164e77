// Command logcheck performs integrity checks on a microclimate CSV log:
// header layout, field parsing, timestamp ordering, plausible value
// ranges, and actuator consistency.
//
// Usage:
//
//	go run ./cmd/logcheck -log microclimate_log.csv
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

var expectedHeader = []string{
	"timestamp", "temperature", "humidity", "co2",
	"heater", "cooler", "humidifier", "fan",
}

// row is one parsed log entry.
type row struct {
	lineNum     int
	timestamp   time.Time
	temperature float64
	humidity    float64
	co2         float64
	heater      bool
	cooler      bool
	humidifier  bool
	fan         bool
}

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	logPath := flag.String("log", "microclimate_log.csv", "path to the CSV log")
	flag.Parse()

	if code := run(*logPath); code != 0 {
		os.Exit(code)
	}
}

func run(logPath string) int {
	fmt.Println("=== Microclimate Log Validation ===")
	fmt.Println()

	records, err := loadCSV(logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load log: %v\n", err)
		return 1
	}

	header := phase{name: "header layout"}
	checkHeader(&header, records[0])

	parsing := phase{name: "field parsing"}
	rows := parseRows(&parsing, records[1:])

	ordering := phase{name: "timestamp ordering"}
	checkOrdering(&ordering, rows)

	ranges := phase{name: "value ranges"}
	checkRanges(&ranges, rows)

	actuators := phase{name: "actuator consistency"}
	checkActuators(&actuators, rows)

	phases := []*phase{&header, &parsing, &ordering, &ranges, &actuators}

	allPassed := true
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = fmt.Sprintf("FAIL (%d errors)", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-28s %s\n", p.name, status)
	}
	fmt.Printf("\nRows: %d\n", len(rows))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func loadCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	all, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("empty log file %s", path)
	}
	return all, nil
}

func checkHeader(p *phase, header []string) {
	if len(header) != len(expectedHeader) {
		p.errorf("expected %d columns, got %d", len(expectedHeader), len(header))
		return
	}
	for i, want := range expectedHeader {
		if header[i] != want {
			p.errorf("column %d: expected %q, got %q", i, want, header[i])
		}
	}
}

func parseRows(p *phase, records [][]string) []row {
	rows := make([]row, 0, len(records))
	for i, rec := range records {
		lineNum := i + 2
		if len(rec) != len(expectedHeader) {
			p.errorf("line %d: expected %d fields, got %d", lineNum, len(expectedHeader), len(rec))
			continue
		}

		ts, err := time.Parse(time.RFC3339, rec[0])
		if err != nil {
			p.errorf("line %d: bad timestamp %q", lineNum, rec[0])
			continue
		}

		r := row{lineNum: lineNum, timestamp: ts}
		ok := true
		for j, dst := range []*float64{&r.temperature, &r.humidity, &r.co2} {
			v, err := strconv.ParseFloat(rec[j+1], 64)
			if err != nil {
				p.errorf("line %d: bad %s %q", lineNum, expectedHeader[j+1], rec[j+1])
				ok = false
				continue
			}
			*dst = v
		}
		for j, dst := range []*bool{&r.heater, &r.cooler, &r.humidifier, &r.fan} {
			switch rec[j+4] {
			case "0":
				*dst = false
			case "1":
				*dst = true
			default:
				p.errorf("line %d: %s must be 0 or 1, got %q", lineNum, expectedHeader[j+4], rec[j+4])
				ok = false
			}
		}
		if ok {
			rows = append(rows, r)
		}
	}
	return rows
}

func checkOrdering(p *phase, rows []row) {
	for i := 1; i < len(rows); i++ {
		if rows[i].timestamp.Before(rows[i-1].timestamp) {
			p.errorf("line %d: timestamp %s before previous %s",
				rows[i].lineNum, rows[i].timestamp.Format(time.RFC3339), rows[i-1].timestamp.Format(time.RFC3339))
		}
	}
}

// checkRanges flags physically implausible readings. The bounds are
// generous: the plant cannot leave them without a parsing bug.
func checkRanges(p *phase, rows []row) {
	for _, r := range rows {
		if r.temperature < -40 || r.temperature > 60 {
			p.errorf("line %d: temperature %.2f out of range", r.lineNum, r.temperature)
		}
		if r.humidity < -2 || r.humidity > 102 {
			p.errorf("line %d: humidity %.2f out of range", r.lineNum, r.humidity)
		}
		if r.co2 < 0 || r.co2 > 10000 {
			p.errorf("line %d: co2 %.1f out of range", r.lineNum, r.co2)
		}
	}
}

func checkActuators(p *phase, rows []row) {
	for _, r := range rows {
		if r.heater && r.cooler {
			p.errorf("line %d: heater and cooler both on", r.lineNum)
		}
	}
}
