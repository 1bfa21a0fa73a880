// Package routefile reads ordered location lists from files.
//
// Two layouts are accepted: one location notation per line, or a gpsbabel
// unicsv export whose header names Latitude and Longitude columns.
package routefile

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrMissingColumn is returned when a unicsv header lacks coordinates.
var ErrMissingColumn = errors.New("route file header needs Latitude and Longitude columns")

// Entry is one route location: the notation to resolve and an optional
// display name taken from the file.
type Entry struct {
	Location string
	Name     string
}

// ReadFile reads entries from path, or standard input when path is "-".
func ReadFile(path string) ([]Entry, error) {
	if path == "-" {
		return Read(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open route file: %w", err)
	}
	defer f.Close()
	entries, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// Read parses entries from r in file order.
func Read(r io.Reader) ([]Entry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read route file: %w", err)
	}
	if isUnicsv(data) {
		return readUnicsv(bytes.NewReader(data))
	}
	return readLines(bytes.NewReader(data))
}

func isUnicsv(data []byte) bool {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		for _, field := range strings.Split(line, ",") {
			if strings.EqualFold(strings.Trim(strings.TrimSpace(field), `"`), "latitude") {
				return true
			}
		}
		return false
	}
	return false
}

func readLines(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entries = append(entries, Entry{Location: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan route file: %w", err)
	}
	return entries, nil
}

func readUnicsv(r io.Reader) ([]Entry, error) {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	latCol, lonCol, nameCol := -1, -1, -1
	for i, column := range header {
		switch strings.ToLower(strings.TrimSpace(column)) {
		case "latitude", "lat":
			latCol = i
		case "longitude", "lon":
			lonCol = i
		case "name":
			nameCol = i
		}
	}
	if latCol < 0 || lonCol < 0 {
		return nil, ErrMissingColumn
	}

	var entries []Entry
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		line, _ := reader.FieldPos(0)
		if latCol >= len(record) || lonCol >= len(record) {
			return nil, fmt.Errorf("line %d: expected at least %d fields, got %d", line, max(latCol, lonCol)+1, len(record))
		}
		entry := Entry{Location: strings.TrimSpace(record[latCol]) + ";" + strings.TrimSpace(record[lonCol])}
		if nameCol >= 0 && nameCol < len(record) {
			entry.Name = strings.TrimSpace(record[nameCol])
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
