package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"liquidityRisk/internal/model"
)

// JsonlStorage writes IL calculations to a JSONL file.
type JsonlStorage struct {
	path string
	mu   sync.Mutex
}

func NewJsonlStorage(path string) *JsonlStorage {
	return &JsonlStorage{path: path}
}

// PutCalculations appends a batch of calculations as JSON lines.
func (s *JsonlStorage) PutCalculations(_ context.Context, calcs []model.ILCalculation) error {
	if len(calcs) == 0 {
		return nil
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, calc := range calcs {
		line, err := json.Marshal(calc)
		if err != nil {
			return fmt.Errorf("marshal calculation: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write calculation: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	return nil
}

// ReadCalculations loads every calculation in a JSONL file, in file order.
// A missing file yields no calculations.
func ReadCalculations(path string) ([]model.ILCalculation, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open input file: %w", err)
	}
	defer file.Close()

	var calcs []model.ILCalculation
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var calc model.ILCalculation
		if err := json.Unmarshal(scanner.Bytes(), &calc); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		calcs = append(calcs, calc)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read input file: %w", err)
	}
	return calcs, nil
}
