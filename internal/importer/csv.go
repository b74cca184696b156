package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// ReadCSV reads an export into a RawTable. The first record is the header;
// ragged rows are tolerated since Normalize treats short rows as missing
// cells.
func ReadCSV(r io.Reader) (RawTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return RawTable{}, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(records) == 0 {
		return RawTable{}, nil
	}

	return RawTable{Header: records[0], Rows: records[1:]}, nil
}

// ReadCSVFile reads an export from disk.
func ReadCSVFile(path string) (RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return RawTable{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return ReadCSV(f)
}
