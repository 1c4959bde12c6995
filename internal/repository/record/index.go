package record

import "github.com/arcdex/arcdex/internal/db"

// Index field aliases. Usecases build search conditions against these.
const (
	FieldPath       = "path"
	FieldFilename   = "filename"
	FieldSize       = "size"
	FieldStatus     = "status"
	FieldCorrupt    = "corrupt"
	FieldFormat     = "format"
	FieldDataType   = "data_type"
	FieldLevel      = "level"
	FieldLocation   = "location"
	FieldStartEpoch = "start_epoch"
	FieldEndEpoch   = "end_epoch"
	FieldMinLat     = "min_lat"
	FieldMinLon     = "min_lon"
	FieldMaxLat     = "max_lat"
	FieldMaxLon     = "max_lon"
)

// IndexDefinition builds the FT index covering record documents under the
// given key prefix. Derived numeric fields (__start_epoch and friends) are
// written by this repository alongside the wire-contract document.
func IndexDefinition(name, keyPrefix string) (*db.IndexDefinition, error) {
	return db.NewIndex(name).
		OnJSON().
		Prefix(keyPrefix + "records:").
		Tag("$.file.path", FieldPath).
		Text("$.file.filename", FieldFilename).
		Numeric("$.file.size", FieldSize).
		Tag("$.file.status", FieldStatus).
		Tag("$.file.corrupt", FieldCorrupt).
		Tag("$.data_format.format", FieldFormat).
		Tag("$.data_type.type", FieldDataType).
		Tag("$.data_processing_level.level", FieldLevel).
		Tag("$.spatial.identifier.location_name", FieldLocation).
		SortableNumeric("$.__start_epoch", FieldStartEpoch).
		SortableNumeric("$.__end_epoch", FieldEndEpoch).
		Numeric("$.__min_lat", FieldMinLat).
		Numeric("$.__min_lon", FieldMinLon).
		Numeric("$.__max_lat", FieldMaxLat).
		Numeric("$.__max_lon", FieldMaxLon).
		Build()
}
