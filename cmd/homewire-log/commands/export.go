package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/homewire/homewire-go/pkg/log"
)

// RunExport writes matching events to w as jsonl or csv.
func RunExport(path, format string, filter log.Filter, w io.Writer) error {
	switch format {
	case "jsonl":
		enc := json.NewEncoder(w)
		return each(path, filter, func(e log.Event) error {
			if err := enc.Encode(e); err != nil {
				return fmt.Errorf("failed to encode event: %w", err)
			}
			return nil
		})
	case "csv":
		return exportCSV(path, filter, w)
	default:
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}
}

var csvHeader = []string{"timestamp", "session_id", "direction", "layer", "category", "device_id", "peer_id", "type", "counter"}

func exportCSV(path string, filter log.Filter, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	err := each(path, filter, func(e log.Event) error {
		counter := ""
		if e.Message != nil {
			counter = strconv.Itoa(int(e.Message.Counter))
		}
		return cw.Write([]string{
			e.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z"),
			e.SessionID,
			e.Direction.String(),
			e.Layer.String(),
			e.Category.String(),
			e.DeviceID,
			e.PeerID,
			typeLabel(e),
			counter,
		})
	})
	if err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}
