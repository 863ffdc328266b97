package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/homewire/homewire-go/pkg/log"
	"github.com/homewire/homewire-go/pkg/wire"
)

// Stats holds aggregate statistics about a log file.
type Stats struct {
	TotalEvents       int
	EventsByLayer     map[log.Layer]int
	EventsByCategory  map[log.Category]int
	EventsByDirection map[log.Direction]int
	MessagesByType    map[wire.MessageType]int
	Peers             map[string]int
	Sessions          map[string]int
	Errors            int
	Start, End        time.Time
}

// Collect reads path and aggregates every event.
func Collect(path string) (*Stats, error) {
	stats := &Stats{
		EventsByLayer:     make(map[log.Layer]int),
		EventsByCategory:  make(map[log.Category]int),
		EventsByDirection: make(map[log.Direction]int),
		MessagesByType:    make(map[wire.MessageType]int),
		Peers:             make(map[string]int),
		Sessions:          make(map[string]int),
	}

	err := each(path, log.Filter{}, func(e log.Event) error {
		stats.TotalEvents++
		stats.EventsByLayer[e.Layer]++
		stats.EventsByCategory[e.Category]++
		stats.EventsByDirection[e.Direction]++
		stats.Sessions[e.SessionID]++

		if stats.Start.IsZero() || e.Timestamp.Before(stats.Start) {
			stats.Start = e.Timestamp
		}
		if e.Timestamp.After(stats.End) {
			stats.End = e.Timestamp
		}
		if e.Message != nil {
			stats.MessagesByType[e.Message.Type]++
		}
		if e.PeerID != "" {
			stats.Peers[e.PeerID]++
		}
		if e.Error != nil {
			stats.Errors++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// RunStats prints statistics about the log file.
func RunStats(path string, w io.Writer) error {
	stats, err := Collect(path)
	if err != nil {
		return err
	}
	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== homewire Protocol Log Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n", stats.Start.Format(time.RFC3339), stats.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.End.Sub(stats.Start).Round(time.Second))
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintf(w, "Runs:         %d\n", len(stats.Sessions))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Layer:")
	for _, l := range []log.Layer{log.LayerRadio, log.LayerWire, log.LayerDevice} {
		if n := stats.EventsByLayer[l]; n > 0 {
			fmt.Fprintf(w, "  %-14s %d\n", l.String()+":", n)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, c := range []log.Category{log.CategoryMessage, log.CategoryState, log.CategoryError} {
		if n := stats.EventsByCategory[c]; n > 0 {
			fmt.Fprintf(w, "  %-14s %d\n", c.String()+":", n)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Direction:")
	for _, d := range []log.Direction{log.DirectionIn, log.DirectionOut} {
		if n := stats.EventsByDirection[d]; n > 0 {
			fmt.Fprintf(w, "  %-14s %d\n", d.String()+":", n)
		}
	}

	if len(stats.MessagesByType) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Messages by Type:")
		types := make([]wire.MessageType, 0, len(stats.MessagesByType))
		for t := range stats.MessagesByType {
			types = append(types, t)
		}
		sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
		for _, t := range types {
			fmt.Fprintf(w, "  %-14s %d\n", t.String()+":", stats.MessagesByType[t])
		}
	}

	if len(stats.Peers) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Peers: %d\n", len(stats.Peers))
		peers := make([]string, 0, len(stats.Peers))
		for p := range stats.Peers {
			peers = append(peers, p)
		}
		sort.Strings(peers)
		for _, p := range peers {
			fmt.Fprintf(w, "  %s  %d events\n", p, stats.Peers[p])
		}
	}

	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}
