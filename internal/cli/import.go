package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
	"github.com/spf13/cobra"

	"github.com/arcdex/arcdex"
	"github.com/arcdex/arcdex/internal/domain"
	"github.com/arcdex/arcdex/internal/domain/geometry"
	"github.com/arcdex/arcdex/internal/schema"
)

var importDryRun bool

var importCmd = &cobra.Command{
	Use:   "import <file.parquet>",
	Short: "Bulk-load records from a parquet inventory dump",
	Long: `Import reads a flat parquet inventory dump — one row per archived
file — and upserts a record for each row.

Expected columns (missing ones are simply left unset on the record):
  path, size, format, data_type, level, location,
  start_time, end_time, min_lat, min_lon, max_lat, max_lon,
  parameters (list of strings)

Example:
  arcdexctl import eufar-inventory.parquet
  arcdexctl import eufar-inventory.parquet --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "parse and validate rows without writing to the store")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var client *arcdex.Client
	if !importDryRun {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client, err = arcdex.New(
			arcdex.WithRedis(cfg.Database.Addrs...),
			arcdex.WithAuth(cfg.Database.Username, cfg.Database.Password),
			arcdex.WithKeyPrefix(cfg.Storage.KeyPrefix),
			arcdex.WithIndexName(cfg.Index.Name),
		)
		if err != nil {
			return fmt.Errorf("cannot connect: %w", err)
		}
		defer client.Close()

		if err := client.EnsureIndex(ctx); err != nil {
			return fmt.Errorf("cannot ensure index: %w", err)
		}
	}

	imported, failed := 0, 0
	err := readInventory(args[0], func(rec domain.Record) {
		if err := importOne(ctx, client, rec); err != nil {
			failed++
			printErr("", fmt.Sprintf("%s: %v", rec.File.Path, err))
			return
		}
		imported++
	})
	if err != nil {
		return err
	}

	verb := "imported"
	if importDryRun {
		verb = "validated"
	}
	printOK("", fmt.Sprintf("%d records %s, %d failed", imported, verb, failed))
	if failed > 0 {
		return fmt.Errorf("%d rows failed", failed)
	}
	return nil
}

func importOne(ctx context.Context, client *arcdex.Client, rec domain.Record) error {
	if err := schema.ValidateRecord(&rec); err != nil {
		return err
	}
	if client == nil {
		return nil
	}
	_, _, err := client.Upsert(ctx, rec)
	return err
}

// inventoryColumns holds leaf-level column indexes, -1 when absent.
type inventoryColumns struct {
	path       int
	size       int
	format     int
	dataType   int
	level      int
	location   int
	startTime  int
	endTime    int
	minLat     int
	minLon     int
	maxLat     int
	maxLon     int
	parameters int // list column — leaf index
}

// resolveInventoryColumns finds leaf-level indexes by column name.
func resolveInventoryColumns(pf *parquet.File) inventoryColumns {
	cols := inventoryColumns{
		path: -1, size: -1, format: -1, dataType: -1, level: -1,
		location: -1, startTime: -1, endTime: -1,
		minLat: -1, minLon: -1, maxLat: -1, maxLon: -1, parameters: -1,
	}
	for i, path := range pf.Schema().Columns() {
		if len(path) == 0 {
			continue
		}
		switch path[0] {
		case "path":
			cols.path = i
		case "size":
			cols.size = i
		case "format":
			cols.format = i
		case "data_type":
			cols.dataType = i
		case "level":
			cols.level = i
		case "location":
			cols.location = i
		case "start_time":
			cols.startTime = i
		case "end_time":
			cols.endTime = i
		case "min_lat":
			cols.minLat = i
		case "min_lon":
			cols.minLon = i
		case "max_lat":
			cols.maxLat = i
		case "max_lon":
			cols.maxLon = i
		case "parameters":
			cols.parameters = i
		}
	}
	return cols
}

// readInventory streams rows from a parquet inventory dump. Rows without a
// path column value are dropped before cb sees them.
func readInventory(path string, cb func(domain.Record)) error {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat: %w", err)
	}
	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return fmt.Errorf("open parquet: %w", err)
	}

	cols := resolveInventoryColumns(pf)
	if cols.path < 0 {
		return fmt.Errorf("%s: path column not found in parquet schema", path)
	}

	for _, rg := range pf.RowGroups() {
		rows := parquet.NewRowGroupReader(rg)
		buf := make([]parquet.Row, 256)

		for {
			n, readErr := rows.ReadRows(buf)
			for i := 0; i < n; i++ {
				if rec, ok := rowToRecord(buf[i], cols); ok {
					cb(rec)
				}
			}
			if readErr != nil {
				if errors.Is(readErr, io.EOF) {
					break
				}
				return fmt.Errorf("read rows: %w", readErr)
			}
		}
	}
	return nil
}

// rowToRecord builds a record from a generic parquet row. Envelope corners
// become both bbox (lon first) and hull (lat first); partial corners are
// dropped rather than guessed.
func rowToRecord(row parquet.Row, cols inventoryColumns) (domain.Record, bool) {
	var rec domain.Record
	var start, end, level, dataType, format, location string
	var params []string
	corners := map[int]float64{}

	for _, v := range row {
		if v.IsNull() {
			continue
		}
		switch col := v.Column(); col {
		case cols.path:
			rec.File.Path = v.String()
		case cols.size:
			rec.File.Size = v.Int64()
		case cols.format:
			format = v.String()
		case cols.dataType:
			dataType = v.String()
		case cols.level:
			level = v.String()
		case cols.location:
			location = v.String()
		case cols.startTime:
			start = v.String()
		case cols.endTime:
			end = v.String()
		case cols.minLat, cols.minLon, cols.maxLat, cols.maxLon:
			corners[col] = v.Double()
		case cols.parameters:
			params = append(params, v.String())
		}
	}

	if rec.File.Path == "" {
		return domain.Record{}, false
	}
	rec.File.Filename = filepath.Base(rec.File.Path)
	rec.File.Status = domain.StatusArchived

	if format != "" {
		rec.DataFormat = &domain.DataFormat{Format: format}
	}
	if dataType != "" {
		rec.DataType = &domain.DataType{Type: dataType}
	}
	if level != "" {
		rec.Level = &domain.ProcessingLevel{Level: level}
	}
	if start != "" || end != "" {
		rec.Temporal = &domain.Temporal{StartTime: start, EndTime: end}
	}
	for _, p := range params {
		name, value, _ := strings.Cut(p, "=")
		rec.Parameters = append(rec.Parameters, domain.Parameter{Name: name, Value: value})
	}

	if len(corners) == 4 {
		env := geometry.Envelope{
			MinLat: corners[cols.minLat], MinLon: corners[cols.minLon],
			MaxLat: corners[cols.maxLat], MaxLon: corners[cols.maxLon],
		}
		rec.Spatial = &domain.Spatial{
			Geometries: geometry.Geometries{
				Type: geometry.TypeLineString,
				BBox: env.BBox(),
				Hull: env.HullBounds(),
			},
		}
	}
	if location != "" {
		if rec.Spatial == nil {
			rec.Spatial = &domain.Spatial{Geometries: geometry.Geometries{Type: geometry.TypePoint}}
		}
		rec.Spatial.Identifier = &domain.Identifier{LocationName: location}
	}

	return rec.WithID(), true
}
