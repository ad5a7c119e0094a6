package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/kilianknoll/kostal-modbusquery/pkg/kostal"
)

type Format string

const (
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatTable, FormatCSV, FormatJSON:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table, csv or json)", s)
	}
}

// WriteSnapshot renders a full read-out in the requested format.
func WriteSnapshot(w io.Writer, format Format, snapshot kostal.Snapshot) error {
	switch format {
	case FormatCSV:
		return writeSnapshotCSV(w, snapshot)
	case FormatJSON:
		return writeSnapshotJSON(w, snapshot)
	default:
		return writeSnapshotTable(w, snapshot)
	}
}

func writeSnapshotTable(w io.Writer, snapshot kostal.Snapshot) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ADDR\tNAME\tVALUE\tUNIT")
	for _, v := range snapshot {
		fmt.Fprintf(tw, "%d\t%s\t%v\t%s\n", v.Register.Addr, v.Register.Name, v.Value, v.Register.Unit)
	}
	return tw.Flush()
}

func writeSnapshotCSV(w io.Writer, snapshot kostal.Snapshot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"address", "name", "value", "unit"}); err != nil {
		return err
	}
	for _, v := range snapshot {
		record := []string{
			strconv.Itoa(int(v.Register.Addr)),
			v.Register.Name,
			fmt.Sprintf("%v", v.Value),
			v.Register.Unit,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type snapshotEntry struct {
	Address uint16 `json:"address"`
	Name    string `json:"name"`
	Value   any    `json:"value"`
	Unit    string `json:"unit,omitempty"`
}

func writeSnapshotJSON(w io.Writer, snapshot kostal.Snapshot) error {
	out := make([]snapshotEntry, 0, len(snapshot))
	for _, v := range snapshot {
		out = append(out, snapshotEntry{
			Address: v.Register.Addr,
			Name:    v.Register.Name,
			Value:   v.Value,
			Unit:    v.Register.Unit,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// WriteMetrics renders the derived dashboard metrics.
func WriteMetrics(w io.Writer, format Format, metrics kostal.DerivedMetrics) error {
	rows := []struct {
		name  string
		value float64
		unit  string
	}{
		{"Home consumption", metrics.HomeConsumptionWatt, "W"},
		{"Power to grid (- from grid)", metrics.PowerToGridWatt, "W"},
		{"Battery charge (-) / discharge (+)", metrics.BatteryPowerWatt, "W"},
		{"String power DC1+DC2", metrics.StringPowerWatt, "W"},
		{"Self-consumption rate", metrics.SelfConsumptionRate, "%"},
		{"Autarky rate", metrics.AutarkyRate, "%"},
	}
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(metrics)
	case FormatCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write([]string{"metric", "value", "unit"}); err != nil {
			return err
		}
		for _, r := range rows {
			if err := cw.Write([]string{r.name, strconv.FormatFloat(r.value, 'f', 1, 64), r.unit}); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	default:
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%.1f %s\n", r.name, r.value, r.unit)
		}
		return tw.Flush()
	}
}
