package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rrtucci/ising-dbnet/condprob"
)

// EncodeRunRecord marshals a record to JSON.
func EncodeRunRecord(r RunRecord) ([]byte, error) {
	return json.Marshal(r)
}

// DecodeRunRecord unmarshals a record and checks its versions.
func DecodeRunRecord(data []byte) (RunRecord, error) {
	var rec RunRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return RunRecord{}, err
	}
	if rec.SchemaVersion != CurrentSchemaVersion || rec.CodecVersion != CurrentCodecVersion {
		return RunRecord{}, fmt.Errorf("run %s: schema %d codec %d: %w",
			rec.ID, rec.SchemaVersion, rec.CodecVersion, ErrVersionMismatch)
	}
	return rec, nil
}

// WriteSnapshot writes one "p_minus p_plus" line per site in id order, using
// the shortest representation that reads back exactly.
func WriteSnapshot(w io.Writer, pairs [][2]float64) error {
	bw := bufio.NewWriter(w)
	for _, p := range pairs {
		line := strconv.FormatFloat(p[0], 'g', -1, 64) + " " + strconv.FormatFloat(p[1], 'g', -1, 64) + "\n"
		if _, err := bw.WriteString(line); err != nil {
			return fmt.Errorf("WriteSnapshot: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("WriteSnapshot: %w", err)
	}
	return nil
}

// ReadSnapshot parses the WriteSnapshot format. Blank lines and lines
// starting with '#' are ignored; every pair must be normalized.
func ReadSnapshot(r io.Reader) ([][2]float64, error) {
	var out [][2]float64
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("ReadSnapshot: line %d: %d fields: %w", lineNo, len(fields), ErrMalformedSnapshot)
		}
		var p [2]float64
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("ReadSnapshot: line %d: %v: %w", lineNo, err, ErrMalformedSnapshot)
			}
			p[i] = v
		}
		if err := condprob.CheckPair(p[0], p[1]); err != nil {
			return nil, fmt.Errorf("ReadSnapshot: line %d: %w", lineNo, err)
		}
		out = append(out, p)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("ReadSnapshot: %w", err)
	}
	return out, nil
}
