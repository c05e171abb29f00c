package lean

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/quiverfeeds/insider-data/internal/model"
)

// ReadSymbolFile parses the per-symbol file for ticker under root. A missing
// file is not an error: sparse datasets simply have no filings for most
// symbols. Malformed lines are.
func ReadSymbolFile(root, ticker string) ([]model.InsiderTrading, error) {
	path := SymbolDataPath(root, ticker)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	canonical := strings.ToUpper(ticker)
	var records []model.InsiderTrading
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		r, err := model.ParseInsiderTrading(canonical, line)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, lineNo, err)
		}
		records = append(records, r)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return records, nil
}

// ReadUniverseFile parses the universe file for date under root. A missing
// file means no filings surfaced that day.
func ReadUniverseFile(root string, date time.Time) ([]model.InsiderTradingUniverse, error) {
	path := UniverseDataPath(root, date)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var records []model.InsiderTradingUniverse
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		u, err := model.ParseInsiderTradingUniverse(line, date)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, lineNo, err)
		}
		records = append(records, u)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return records, nil
}
